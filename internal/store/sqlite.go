package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/myrtlewealth/blueprint/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// sqlitePragmas run on every pooled connection, not only the first.
var sqlitePragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
}

// sqliteDSN appends the connection pragmas to dsn.
func sqliteDSN(dsn string) string {
	var b strings.Builder
	b.WriteString(dsn)
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	for _, p := range sqlitePragmas {
		b.WriteString(sep + "_pragma=" + p)
		sep = "&"
	}
	return b.String()
}

// NewSQLite opens a SQLite database at the given path in WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", sqliteDSN(dsn))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "sqlite: ping")
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS submissions (
	id               TEXT PRIMARY KEY,
	full_name        TEXT NOT NULL,
	email            TEXT NOT NULL,
	phone            TEXT NOT NULL DEFAULT '',
	gender           TEXT NOT NULL DEFAULT '',
	date_of_birth    TEXT NOT NULL DEFAULT '',
	occupation       TEXT NOT NULL DEFAULT '',
	address          TEXT NOT NULL DEFAULT '',
	marital_status   TEXT NOT NULL DEFAULT '',
	dependants_count INTEGER NOT NULL DEFAULT 0,
	answers          TEXT NOT NULL,
	net_worth        INTEGER NOT NULL,
	net_worth_band   TEXT NOT NULL,
	risk_score       INTEGER NOT NULL,
	risk_profile     TEXT NOT NULL,
	persona          TEXT NOT NULL,
	portfolio        TEXT NOT NULL,
	narrative        TEXT NOT NULL,
	rule_set         TEXT NOT NULL,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS admins (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_submissions_created_at ON submissions(created_at);
CREATE INDEX IF NOT EXISTS idx_submissions_email ON submissions(email);
CREATE INDEX IF NOT EXISTS idx_submissions_persona ON submissions(persona);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateSubmission(ctx context.Context, sub *model.Submission) error {
	prepareSubmission(sub)

	answersJSON, portfolioJSON, err := marshalSubmission(sub)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal submission")
	}

	c, a := sub.Client, sub.Analysis
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO submissions (id, full_name, email, phone, gender, date_of_birth, occupation, address,
			marital_status, dependants_count, answers, net_worth, net_worth_band, risk_score, risk_profile,
			persona, portfolio, narrative, rule_set, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, c.FullName, c.Email, c.Phone, c.Gender, c.DateOfBirth, c.Occupation, c.Address,
		c.MaritalStatus, c.DependantsCount, string(answersJSON), a.NetWorth, a.NetWorthBand, a.RiskScore, a.RiskProfile,
		a.Persona, string(portfolioJSON), a.Narrative, a.RuleSet, sub.CreatedAt, sub.UpdatedAt,
	)
	return eris.Wrap(err, "sqlite: insert submission")
}

func (s *SQLiteStore) GetSubmission(ctx context.Context, id string) (*model.Submission, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE id = ?`,
		id,
	)

	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "submission %s", id)
	}
	return sub, eris.Wrapf(err, "sqlite: get submission %s", id)
}

func (s *SQLiteStore) ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]model.SubmissionSummary, error) {
	where, args := filter.where(func(int) string { return "?" })
	query := `SELECT ` + summaryColumns + ` FROM submissions` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, filter.limit(), max(filter.Offset, 0))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list submissions")
	}
	defer rows.Close()

	var out []model.SubmissionSummary
	for rows.Next() {
		var sum model.SubmissionSummary
		if err := rows.Scan(summaryDest(&sum)...); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan submission summary")
		}
		out = append(out, sum)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list submissions iterate")
}

func (s *SQLiteStore) CountSubmissions(ctx context.Context, filter SubmissionFilter) (int, error) {
	where, args := filter.where(func(int) string { return "?" })
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions`+where, args...).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count submissions")
}

func (s *SQLiteStore) SumNetWorth(ctx context.Context) (decimal.Decimal, error) {
	var total string
	err := s.db.QueryRowContext(ctx,
		`SELECT CAST(COALESCE(SUM(net_worth), 0) AS TEXT) FROM submissions`,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, eris.Wrap(err, "sqlite: sum net worth")
	}
	d, err := decimal.NewFromString(total)
	return d, eris.Wrap(err, "sqlite: parse net worth sum")
}

func (s *SQLiteStore) CountByPersona(ctx context.Context) (map[string]int, error) {
	return s.countBy(ctx, "persona")
}

func (s *SQLiteStore) CountByRiskProfile(ctx context.Context) (map[string]int, error) {
	return s.countBy(ctx, "risk_profile")
}

// column is always a constant from this package.
func (s *SQLiteStore) countBy(ctx context.Context, column string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+column+`, COUNT(*) FROM submissions GROUP BY `+column,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: count by %s", column)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, eris.Wrapf(err, "sqlite: scan count by %s", column)
		}
		out[key] = n
	}
	return out, eris.Wrapf(rows.Err(), "sqlite: count by %s iterate", column)
}

func (s *SQLiteStore) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	prepareAdmin(admin)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO admins (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		admin.ID, admin.Username, admin.Email, admin.PasswordHash, admin.CreatedAt,
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return eris.Wrapf(ErrConflict, "admin %s", admin.Username)
	}
	return eris.Wrap(err, "sqlite: insert admin")
}

func (s *SQLiteStore) FindAdmin(ctx context.Context, login string) (*model.Admin, error) {
	var a model.Admin
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM admins WHERE username = ? OR email = ? LIMIT 1`,
		login, strings.ToLower(login),
	).Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "admin %s", login)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: find admin")
	}
	return &a, nil
}

func (s *SQLiteStore) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count admins")
}

// helpers

const submissionColumns = `id, full_name, email, phone, gender, date_of_birth, occupation, address,
	marital_status, dependants_count, answers, net_worth, net_worth_band, risk_score, risk_profile,
	persona, portfolio, narrative, rule_set, created_at, updated_at`

const summaryColumns = `id, full_name, email, phone, net_worth, net_worth_band, risk_score, risk_profile, persona, created_at`

type scannable interface {
	Scan(dest ...any) error
}

func scanSubmission(row scannable) (*model.Submission, error) {
	var sub model.Submission
	var answers, portfolio []byte
	if err := row.Scan(submissionDest(&sub, &answers, &portfolio)...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &sub.Answers); err != nil {
		return nil, eris.Wrap(err, "unmarshal answers")
	}
	if err := json.Unmarshal(portfolio, &sub.Analysis.Portfolio); err != nil {
		return nil, eris.Wrap(err, "unmarshal portfolio")
	}
	return &sub, nil
}

func submissionDest(sub *model.Submission, answers, portfolio any) []any {
	c, a := &sub.Client, &sub.Analysis
	return []any{
		&sub.ID, &c.FullName, &c.Email, &c.Phone, &c.Gender, &c.DateOfBirth, &c.Occupation, &c.Address,
		&c.MaritalStatus, &c.DependantsCount, answers, &a.NetWorth, &a.NetWorthBand, &a.RiskScore, &a.RiskProfile,
		&a.Persona, portfolio, &a.Narrative, &a.RuleSet, &sub.CreatedAt, &sub.UpdatedAt,
	}
}

func summaryDest(s *model.SubmissionSummary) []any {
	return []any{&s.ID, &s.FullName, &s.Email, &s.Phone, &s.NetWorth, &s.NetWorthBand, &s.RiskScore, &s.RiskProfile, &s.Persona, &s.CreatedAt}
}

func prepareSubmission(sub *model.Submission) {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now
	sub.Client.Email = strings.ToLower(strings.TrimSpace(sub.Client.Email))
}

func prepareAdmin(a *model.Admin) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
}

func marshalSubmission(sub *model.Submission) (answers, portfolio []byte, err error) {
	answers, err = json.Marshal(sub.Answers)
	if err != nil {
		return nil, nil, err
	}
	portfolio, err = json.Marshal(sub.Analysis.Portfolio)
	return answers, portfolio, err
}

// where builds the filter clause; ph renders the n-th (1-based) placeholder.
func (f SubmissionFilter) where(ph func(n int) string) (string, []any) {
	var conds []string
	var args []any
	add := func(col, val string) {
		args = append(args, val)
		conds = append(conds, col+" = "+ph(len(args)))
	}
	if f.Persona != "" {
		add("persona", f.Persona)
	}
	if f.RiskProfile != "" {
		add("risk_profile", f.RiskProfile)
	}
	if f.Email != "" {
		add("email", strings.ToLower(f.Email))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
