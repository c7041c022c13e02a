package store

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/ccdaniele/name-finder/internal/core"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewWithDB(db, driverLibsql)
	s.clock = func() time.Time { return fixedNow }
	return s, mock
}

func TestCachedCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("Hit", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT payload FROM check_cache WHERE name = ? AND check_type = ? AND variant = ? AND expires_at > ?`)).
			WithArgs("zenvox", "domain", ".com", fixedNow.Unix()).
			WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(`{"available":true,"domain":"zenvox.com","source":"rdap"}`))

		var got core.DomainResult
		ok, err := s.GetCachedCheck(ctx, " Zenvox ", core.CheckTypeDomain, ".com", &got)
		require.NoError(t, err)
		require.True(t, ok)
		require.True(t, got.Available)
		require.Equal(t, "zenvox.com", got.Domain)
		require.Equal(t, core.DomainSourceRDAP, got.Source)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Miss", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT payload FROM check_cache`).
			WillReturnRows(sqlmock.NewRows([]string{"payload"}))

		var got core.WebSearchResult
		ok, err := s.GetCachedCheck(ctx, "zenvox", core.CheckTypeWebSearch, "fintech", &got)
		require.NoError(t, err)
		require.False(t, ok)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Set", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO check_cache (name, check_type, variant, passed, payload, checked_at, expires_at)`)).
			WithArgs("zenvox", "trademark", "9,42", 1, sqlmock.AnyArg(), fixedNow.Unix(), fixedNow.Add(time.Hour).Unix()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		result := core.TrademarkResult{Passed: true, Score: 100, RiskLevel: core.RiskLow}
		require.NoError(t, s.SetCachedCheck(ctx, "Zenvox", core.CheckTypeTrademark, "9,42", true, result, time.Hour))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("SetZeroTTLIsNoop", func(t *testing.T) {
		s, mock := newMockStore(t)
		require.NoError(t, s.SetCachedCheck(ctx, "zenvox", core.CheckTypeDomain, ".com", true, core.DomainResult{}, 0))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("EmptyName", func(t *testing.T) {
		s, _ := newMockStore(t)
		_, err := s.GetCachedCheck(ctx, "  ", core.CheckTypeDomain, "", &core.DomainResult{})
		require.Error(t, err)
	})
}

func TestPurgeCache(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM check_cache WHERE expires_at <= ?`)).
		WithArgs(fixedNow.Unix()).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM check_cache`).
		WillReturnResult(sqlmock.NewResult(0, 5))

	n, err := s.PurgeCache(context.Background(), false)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	n, err = s.PurgeCache(context.Background(), true)
	require.NoError(t, err)
	require.EqualValues(t, 5, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimitRoundTrip(t *testing.T) {
	ctx := context.Background()
	window := fixedNow.Add(-30 * time.Second)
	backoff := fixedNow.Add(time.Minute)

	t.Run("Get", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT request_count, window_start, backoff_until, last_429_at FROM rate_limits WHERE endpoint = \?`).
			WithArgs("serper").
			WillReturnRows(sqlmock.NewRows([]string{"request_count", "window_start", "backoff_until", "last_429_at"}).
				AddRow(7, window.Unix(), backoff.Unix(), nil))

		state, err := s.GetRateLimit(ctx, "serper")
		require.NoError(t, err)
		require.NotNil(t, state)
		require.Equal(t, 7, state.RequestCount)
		require.True(t, state.WindowStart.Equal(window))
		require.NotNil(t, state.BackoffUntil)
		require.True(t, state.BackoffUntil.Equal(backoff))
		require.Nil(t, state.Last429At)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Update", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`INSERT INTO rate_limits`).
			WithArgs("serper", 8, window.Unix(), backoff.Unix(), nil).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := s.UpdateRateLimit(ctx, "serper", &core.RateLimitState{
			RequestCount: 8,
			WindowStart:  window,
			BackoffUntil: &backoff,
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListByPrefix", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`FROM rate_limits WHERE endpoint LIKE \? ORDER BY endpoint`).
			WithArgs("godaddy%").
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "request_count", "window_start", "backoff_until", "last_429_at"}).
				AddRow("godaddy", 2, window.Unix(), nil, nil))

		entries, err := s.ListRateLimits(ctx, RateLimitQuery{Prefix: "godaddy"})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, "godaddy", entries[0].Endpoint)
		require.Equal(t, 2, entries[0].State.RequestCount)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ResetRequiresSelector", func(t *testing.T) {
		s, _ := newMockStore(t)
		_, err := s.ResetRateLimits(ctx, RateLimitQuery{})
		require.Error(t, err)
	})
}

func TestRuns(t *testing.T) {
	ctx := context.Background()
	run := core.RunResult{
		RunID:     "run-1",
		Requested: 2,
		Rounds:    1,
		Passed: []core.ValidatedName{{
			Generated:  core.GeneratedName{Name: "Zenvox", DistinctivenessCategory: core.DistinctivenessFanciful},
			Validation: core.ValidationResult{Name: "Zenvox", OverallPass: true},
		}},
	}

	t.Run("Save", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`INSERT INTO runs`).
			WithArgs("run-1", "fintech", 2, 1, 0, 1, 0, sqlmock.AnyArg(), fixedNow.Unix()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.SaveRun(ctx, "fintech", run))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetUnknown", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT result_json FROM runs WHERE id = \?`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"result_json"}))

		got, err := s.GetRun(ctx, "missing")
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("List", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`FROM runs ORDER BY created_at DESC, id LIMIT \?`).
			WithArgs(20).
			WillReturnRows(sqlmock.NewRows([]string{"id", "industry", "requested", "passed_count", "failed_count", "rounds", "cancelled", "created_at"}).
				AddRow("run-1", "fintech", 2, 1, 0, 1, 1, fixedNow.Unix()))

		runs, err := s.ListRuns(ctx, 0)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		require.True(t, runs[0].Cancelled)
		require.Equal(t, "fintech", runs[0].Industry)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMigrateAddsMissingColumn(t *testing.T) {
	s, mock := newMockStore(t)
	for range schemaStatements {
		mock.ExpectExec(`CREATE`).WillReturnResult(driver.ResultNoRows)
	}
	mock.ExpectQuery(regexp.QuoteMeta(`PRAGMA table_info(runs)`)).
		WillReturnRows(sqlmock.NewRows([]string{"cid", "name", "type", "notnull", "dflt_value", "pk"}).
			AddRow(0, "id", "TEXT", 0, nil, 1))
	mock.ExpectExec(regexp.QuoteMeta(`ALTER TABLE runs ADD COLUMN industry TEXT`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
