package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ccdaniele/name-finder/internal/core"
)

// CacheEntry is a cached check payload with its bookkeeping.
type CacheEntry struct {
	Name      string
	CheckType core.CheckType
	Variant   string
	Passed    bool
	Payload   json.RawMessage
	CheckedAt time.Time
	ExpiresAt time.Time
}

// CacheKey normalizes a name for cache lookups. Lookups are case-insensitive.
func CacheKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// GetCachedCheck decodes a cached, unexpired check result into out.
// It reports false when nothing usable is cached.
func (s *Store) GetCachedCheck(ctx context.Context, name string, checkType core.CheckType, variant string, out any) (bool, error) {
	ctx, err := s.ready(ctx)
	if err != nil {
		return false, err
	}

	keyName := CacheKey(name)
	if keyName == "" {
		return false, errors.New("cache name is required")
	}

	var payload string
	row := s.DB.QueryRowContext(ctx, `
		SELECT payload
		FROM check_cache
		WHERE name = ? AND check_type = ? AND variant = ? AND expires_at > ?
	`, keyName, string(checkType), variant, s.now().Unix())

	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("fetch cached check: %w", err)
	}

	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return false, fmt.Errorf("decode cached check: %w", err)
	}
	return true, nil
}

// SetCachedCheck stores a check result with a TTL. A non-positive TTL is a no-op.
func (s *Store) SetCachedCheck(ctx context.Context, name string, checkType core.CheckType, variant string, passed bool, value any, ttl time.Duration) error {
	ctx, err := s.ready(ctx)
	if err != nil {
		return err
	}
	if ttl <= 0 || value == nil {
		return nil
	}

	keyName := CacheKey(name)
	if keyName == "" {
		return errors.New("cache name is required")
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cached check: %w", err)
	}

	now := s.now()
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO check_cache (name, check_type, variant, passed, payload, checked_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name, check_type, variant) DO UPDATE SET
			passed = excluded.passed,
			payload = excluded.payload,
			checked_at = excluded.checked_at,
			expires_at = excluded.expires_at
	`, keyName, string(checkType), variant, boolToInt(passed), string(payload), now.Unix(), now.Add(ttl).Unix())
	if err != nil {
		return fmt.Errorf("store cached check: %w", err)
	}

	return nil
}

// ListCachedChecks returns unexpired entries, optionally filtered by name.
func (s *Store) ListCachedChecks(ctx context.Context, name string) ([]CacheEntry, error) {
	ctx, err := s.ready(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT name, check_type, variant, passed, payload, checked_at, expires_at
		FROM check_cache
		WHERE expires_at > ?`
	args := []any{s.now().Unix()}
	if keyName := CacheKey(name); keyName != "" {
		query += ` AND name = ?`
		args = append(args, keyName)
	}
	query += ` ORDER BY name, check_type, variant`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cached checks: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	entries := []CacheEntry{}
	for rows.Next() {
		var (
			entry     CacheEntry
			checkType string
			passed    int
			payload   string
			checkedAt int64
			expiresAt int64
		)
		if err := rows.Scan(&entry.Name, &checkType, &entry.Variant, &passed, &payload, &checkedAt, &expiresAt); err != nil {
			return nil, fmt.Errorf("scan cached checks: %w", err)
		}
		entry.CheckType = core.CheckType(checkType)
		entry.Passed = passed != 0
		entry.Payload = json.RawMessage(payload)
		entry.CheckedAt = time.Unix(checkedAt, 0).UTC()
		entry.ExpiresAt = time.Unix(expiresAt, 0).UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cached checks: %w", err)
	}
	return entries, nil
}

// PurgeCache deletes expired entries, or every entry when all is set.
func (s *Store) PurgeCache(ctx context.Context, all bool) (int64, error) {
	ctx, err := s.ready(ctx)
	if err != nil {
		return 0, err
	}

	var result sql.Result
	if all {
		result, err = s.DB.ExecContext(ctx, `DELETE FROM check_cache`)
	} else {
		result, err = s.DB.ExecContext(ctx, `DELETE FROM check_cache WHERE expires_at <= ?`, s.now().Unix())
	}
	if err != nil {
		return 0, fmt.Errorf("purge cache: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge cache: %w", err)
	}
	return affected, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
