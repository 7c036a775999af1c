package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myrtlewealth/blueprint/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPreparedStatements(t *testing.T) {
	require.Len(t, preparedStatements, 3)
	assert.Contains(t, preparedStatements[stmtInsertSubmission], "INSERT INTO submissions")
	assert.Contains(t, preparedStatements[stmtGetSubmission], "FROM submissions WHERE id = $1")
	assert.Contains(t, preparedStatements[stmtFindAdmin], "FROM admins WHERE username = $1 OR email = $2")
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS submissions`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateSubmission(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	sub := sampleSubmission("Ada", "ADA@example.com", "Everyday Builder", "Moderate", 27_500_000)
	sub.ID = "sub-1"

	mock.ExpectExec(`^insert_submission$`).
		WithArgs("sub-1", "Ada", "ada@example.com",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), 2, pgxmock.AnyArg(), int64(27_500_000), "NW2-Mass Affluent", 17, "Moderate",
			"Everyday Builder", pgxmock.AnyArg(), "narrative text", "standard", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.CreateSubmission(context.Background(), sub))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetSubmission(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	answers, err := json.Marshal(model.AnswerSet{"Q1": model.Single("A"), "Q8": model.Multi("T2")})
	require.NoError(t, err)
	portfolio, err := json.Marshal(model.Allocation{Cash: 60, Income: 30, Growth: 10})
	require.NoError(t, err)

	rows := pgxmock.NewRows([]string{
		"id", "full_name", "email", "phone", "gender", "date_of_birth", "occupation", "address",
		"marital_status", "dependants_count", "answers", "net_worth", "net_worth_band", "risk_score", "risk_profile",
		"persona", "portfolio", "narrative", "rule_set", "created_at", "updated_at",
	}).AddRow(
		"sub-1", "Ada", "ada@example.com", "", "", "", "", "",
		"", 0, answers, int64(100), "NW1-Emerging", 10, "Conservative",
		"Everyday Builder", portfolio, "text", "standard", now, now,
	)
	mock.ExpectQuery(`^get_submission$`).
		WithArgs("sub-1").
		WillReturnRows(rows)

	got, err := s.GetSubmission(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Client.FullName)
	assert.Equal(t, "A", got.Answers.Get("Q1").Code())
	assert.Equal(t, 60, got.Analysis.Portfolio.Cash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetSubmission_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`^get_submission$`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetSubmission(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListSubmissions_Filtered(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{
		"id", "full_name", "email", "phone", "net_worth", "net_worth_band", "risk_score", "risk_profile", "persona", "created_at",
	}).AddRow("sub-1", "Ada", "ada@example.com", "", int64(5), "NW1-Emerging", 24, "Growth", "Strategic Achiever", now)

	mock.ExpectQuery(`FROM submissions WHERE persona = \$1 ORDER BY created_at DESC, id DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("Strategic Achiever", 10, 20).
		WillReturnRows(rows)

	out, err := s.ListSubmissions(context.Background(), SubmissionFilter{Persona: "Strategic Achiever", Limit: 10, Offset: 20})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Ada", out[0].FullName)
	assert.Equal(t, 24, out[0].RiskScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SumNetWorth(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(net_worth\), 0\)::text FROM submissions`).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow("3750000000"))

	total, err := s.SumNetWorth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "3750000000", total.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CountByPersona(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT persona, COUNT\(\*\) FROM submissions GROUP BY persona`).
		WillReturnRows(pgxmock.NewRows([]string{"persona", "count"}).
			AddRow("Everyday Builder", 4).
			AddRow("Private Wealth Niche", 1))

	got, err := s.CountByPersona(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Everyday Builder": 4, "Private Wealth Niche": 1}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateAdmin_Conflict(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO admins`).
		WithArgs(pgxmock.AnyArg(), "admin", "admin@myrtle.com", "hash", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

	err := s.CreateAdmin(context.Background(), &model.Admin{Username: "admin", Email: "Admin@Myrtle.com", PasswordHash: "hash"})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindAdmin_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`^find_admin$`).
		WithArgs("Nobody", "nobody").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.FindAdmin(context.Background(), "Nobody")
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Close(t *testing.T) {
	closed := false
	s := &PostgresStore{closeFn: func() { closed = true }}
	require.NoError(t, s.Close())
	assert.True(t, closed)
}
