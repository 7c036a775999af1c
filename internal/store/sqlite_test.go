package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myrtlewealth/blueprint/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
	require.NoError(t, st.Ping(context.Background()))
}

func TestSQLite_PragmasOnEveryConnection(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	c1, err := st.db.Conn(ctx)
	require.NoError(t, err)
	defer c1.Close() //nolint:errcheck
	c2, err := st.db.Conn(ctx)
	require.NoError(t, err)
	defer c2.Close() //nolint:errcheck

	for _, c := range []*sql.Conn{c1, c2} {
		var timeout int
		require.NoError(t, c.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout))
		assert.Equal(t, 5000, timeout)

		var mode string
		require.NoError(t, c.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
		assert.Equal(t, "wal", mode)
	}
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "a.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", sqliteDSN("a.db"))
	assert.Contains(t, sqliteDSN("a.db?mode=ro"), "a.db?mode=ro&_pragma=journal_mode(WAL)")
}

func TestSQLite_SubmissionRoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	sub := sampleSubmission("Ada Obi", "Ada@Example.com", "Everyday Builder", "Moderate", 27_500_000)
	require.NoError(t, st.CreateSubmission(ctx, sub))
	require.NotEmpty(t, sub.ID)

	got, err := st.GetSubmission(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, got.ID)
	assert.Equal(t, "ada@example.com", got.Client.Email)
	assert.Equal(t, 2, got.Client.DependantsCount)
	assert.Equal(t, int64(27_500_000), got.Analysis.NetWorth)
	assert.Equal(t, "Moderate", got.Analysis.RiskProfile)
	assert.Equal(t, sub.Analysis.Portfolio, got.Analysis.Portfolio)
	assert.Equal(t, []string{"T1", "T3"}, got.Answers.Get("Q8").Codes())
	assert.Equal(t, "Call me after 5pm", got.Answers.Get("Q16").Code())
	assert.WithinDuration(t, sub.CreatedAt, got.CreatedAt, time.Second)
}

func TestSQLite_CustomPortfolioRoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	sub := sampleSubmission("Bola", "bola@example.com", "Strategic Achiever", "Conservative", 0)
	sub.Analysis.Portfolio = model.CustomAllocation()
	require.NoError(t, st.CreateSubmission(ctx, sub))

	got, err := st.GetSubmission(ctx, sub.ID)
	require.NoError(t, err)
	assert.True(t, got.Analysis.Portfolio.Custom)
	assert.Nil(t, got.Analysis.Portfolio.Buckets())
}

func TestSQLite_GetSubmission_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetSubmission(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLite_ListAndCount(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	fixtures := []*model.Submission{
		sampleSubmission("One", "one@example.com", "Everyday Builder", "Moderate", 10),
		sampleSubmission("Two", "two@example.com", "Strategic Achiever", "Growth", 20),
		sampleSubmission("Three", "three@example.com", "Everyday Builder", "Conservative", 30),
	}
	for i, sub := range fixtures {
		sub.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, st.CreateSubmission(ctx, sub))
	}

	all, err := st.ListSubmissions(ctx, SubmissionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Three", all[0].FullName, "newest first")
	assert.Equal(t, "One", all[2].FullName)

	page, err := st.ListSubmissions(ctx, SubmissionFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Two", page[0].FullName)

	builders, err := st.ListSubmissions(ctx, SubmissionFilter{Persona: "Everyday Builder"})
	require.NoError(t, err)
	assert.Len(t, builders, 2)

	n, err := st.CountSubmissions(ctx, SubmissionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = st.CountSubmissions(ctx, SubmissionFilter{Email: "TWO@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLite_DashboardAggregates(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	total, err := st.SumNetWorth(ctx)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	require.NoError(t, st.CreateSubmission(ctx, sampleSubmission("A", "a@example.com", "Everyday Builder", "Moderate", 2_500_000)))
	require.NoError(t, st.CreateSubmission(ctx, sampleSubmission("B", "b@example.com", "Everyday Builder", "Growth", 1_250_000_000)))
	require.NoError(t, st.CreateSubmission(ctx, sampleSubmission("C", "c@example.com", "Private Wealth Niche", "Growth", 625_000_000)))

	total, err = st.SumNetWorth(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1877500000", total.String())

	byPersona, err := st.CountByPersona(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Everyday Builder": 2, "Private Wealth Niche": 1}, byPersona)

	byProfile, err := st.CountByRiskProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Moderate": 1, "Growth": 2}, byProfile)
}

func TestSQLite_Admins(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	n, err := st.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	admin := &model.Admin{Username: "admin", Email: "Admin@Myrtle.com", PasswordHash: "hash"}
	require.NoError(t, st.CreateAdmin(ctx, admin))
	assert.NotEmpty(t, admin.ID)

	byName, err := st.FindAdmin(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, byName.ID)
	assert.Equal(t, "hash", byName.PasswordHash)

	byEmail, err := st.FindAdmin(ctx, "ADMIN@myrtle.com")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, byEmail.ID)

	_, err = st.FindAdmin(ctx, "nobody")
	assert.True(t, eris.Is(err, ErrNotFound))

	err = st.CreateAdmin(ctx, &model.Admin{Username: "admin", Email: "other@myrtle.com", PasswordHash: "x"})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrConflict))

	n, err = st.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
