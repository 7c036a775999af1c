package store

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/myrtlewealth/blueprint/internal/db"
	"github.com/myrtlewealth/blueprint/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const (
	pgInsertSubmission = `INSERT INTO submissions (id, full_name, email, phone, gender, date_of_birth, occupation, address,
	marital_status, dependants_count, answers, net_worth, net_worth_band, risk_score, risk_profile,
	persona, portfolio, narrative, rule_set, created_at, updated_at)
 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	pgGetSubmission = `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	pgInsertAdmin   = `INSERT INTO admins (id, username, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`
	pgFindAdmin     = `SELECT id, username, email, password_hash, created_at FROM admins WHERE username = $1 OR email = $2 LIMIT 1`
	pgSumNetWorth   = `SELECT COALESCE(SUM(net_worth), 0)::text FROM submissions`
)

// Names of the statements prepared on every connection. pgx resolves a
// query string that equals a prepared statement name to that statement.
const (
	stmtInsertSubmission = "insert_submission"
	stmtGetSubmission    = "get_submission"
	stmtFindAdmin        = "find_admin"
)

var preparedStatements = map[string]string{
	stmtInsertSubmission: pgInsertSubmission,
	stmtGetSubmission:    pgGetSubmission,
	stmtFindAdmin:        pgFindAdmin,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS submissions (
	id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	full_name        TEXT NOT NULL,
	email            TEXT NOT NULL,
	phone            TEXT NOT NULL DEFAULT '',
	gender           TEXT NOT NULL DEFAULT '',
	date_of_birth    TEXT NOT NULL DEFAULT '',
	occupation       TEXT NOT NULL DEFAULT '',
	address          TEXT NOT NULL DEFAULT '',
	marital_status   TEXT NOT NULL DEFAULT '',
	dependants_count INTEGER NOT NULL DEFAULT 0,
	answers          JSONB NOT NULL,
	net_worth        BIGINT NOT NULL,
	net_worth_band   TEXT NOT NULL,
	risk_score       INTEGER NOT NULL,
	risk_profile     TEXT NOT NULL,
	persona          TEXT NOT NULL,
	portfolio        JSONB NOT NULL,
	narrative        TEXT NOT NULL,
	rule_set         TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS admins (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_submissions_created_at ON submissions(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_submissions_email ON submissions(email);
CREATE INDEX IF NOT EXISTS idx_submissions_persona ON submissions(persona);
CREATE INDEX IF NOT EXISTS idx_submissions_risk_profile ON submissions(risk_profile);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateSubmission(ctx context.Context, sub *model.Submission) error {
	prepareSubmission(sub)

	answersJSON, portfolioJSON, err := marshalSubmission(sub)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal submission")
	}

	c, a := sub.Client, sub.Analysis
	_, err = s.pool.Exec(ctx, stmtInsertSubmission,
		sub.ID, c.FullName, c.Email, c.Phone, c.Gender, c.DateOfBirth, c.Occupation, c.Address,
		c.MaritalStatus, c.DependantsCount, answersJSON, a.NetWorth, a.NetWorthBand, a.RiskScore, a.RiskProfile,
		a.Persona, portfolioJSON, a.Narrative, a.RuleSet, sub.CreatedAt, sub.UpdatedAt,
	)
	return eris.Wrap(err, "postgres: insert submission")
}

func (s *PostgresStore) GetSubmission(ctx context.Context, id string) (*model.Submission, error) {
	sub, err := scanSubmission(s.pool.QueryRow(ctx, stmtGetSubmission, id))
	if db.IsNoRows(err) {
		return nil, eris.Wrapf(ErrNotFound, "submission %s", id)
	}
	return sub, eris.Wrapf(err, "postgres: get submission %s", id)
}

func pgPlaceholder(n int) string { return "$" + strconv.Itoa(n) }

func (s *PostgresStore) ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]model.SubmissionSummary, error) {
	where, args := filter.where(pgPlaceholder)
	n := len(args)
	query := `SELECT ` + summaryColumns + ` FROM submissions` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ` + pgPlaceholder(n+1) + ` OFFSET ` + pgPlaceholder(n+2)
	args = append(args, filter.limit(), max(filter.Offset, 0))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list submissions")
	}
	defer rows.Close()

	var out []model.SubmissionSummary
	for rows.Next() {
		var sum model.SubmissionSummary
		if err := rows.Scan(summaryDest(&sum)...); err != nil {
			return nil, eris.Wrap(err, "postgres: scan submission summary")
		}
		out = append(out, sum)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list submissions iterate")
}

func (s *PostgresStore) CountSubmissions(ctx context.Context, filter SubmissionFilter) (int, error) {
	where, args := filter.where(pgPlaceholder)
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM submissions`+where, args...).Scan(&n)
	return n, eris.Wrap(err, "postgres: count submissions")
}

func (s *PostgresStore) SumNetWorth(ctx context.Context) (decimal.Decimal, error) {
	var total string
	if err := s.pool.QueryRow(ctx, pgSumNetWorth).Scan(&total); err != nil {
		return decimal.Zero, eris.Wrap(err, "postgres: sum net worth")
	}
	d, err := decimal.NewFromString(total)
	return d, eris.Wrap(err, "postgres: parse net worth sum")
}

func (s *PostgresStore) CountByPersona(ctx context.Context) (map[string]int, error) {
	return s.countBy(ctx, "persona")
}

func (s *PostgresStore) CountByRiskProfile(ctx context.Context) (map[string]int, error) {
	return s.countBy(ctx, "risk_profile")
}

func (s *PostgresStore) countBy(ctx context.Context, column string) (map[string]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+column+`, COUNT(*) FROM submissions GROUP BY `+column,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: count by %s", column)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, eris.Wrapf(err, "postgres: scan count by %s", column)
		}
		out[key] = n
	}
	return out, eris.Wrapf(rows.Err(), "postgres: count by %s iterate", column)
}

func (s *PostgresStore) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	prepareAdmin(admin)
	_, err := s.pool.Exec(ctx, pgInsertAdmin,
		admin.ID, admin.Username, admin.Email, admin.PasswordHash, admin.CreatedAt,
	)
	if db.IsUniqueViolation(err) {
		return eris.Wrapf(ErrConflict, "admin %s", admin.Username)
	}
	return eris.Wrap(err, "postgres: insert admin")
}

func (s *PostgresStore) FindAdmin(ctx context.Context, login string) (*model.Admin, error) {
	var a model.Admin
	err := s.pool.QueryRow(ctx, stmtFindAdmin, login, strings.ToLower(login)).
		Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if db.IsNoRows(err) {
		return nil, eris.Wrapf(ErrNotFound, "admin %s", login)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: find admin")
	}
	return &a, nil
}

func (s *PostgresStore) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n)
	return n, eris.Wrap(err, "postgres: count admins")
}
