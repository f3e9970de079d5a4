package checks

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// PGRepo implements Repo using Postgres. The resume_checks table carries a
// UNIQUE(user_id, check_date) constraint, so the one-check-per-day invariant
// holds even across multiple API instances.
type PGRepo struct {
	DB *sql.DB
	// Boundary is the day-boundary timezone used to derive check_date.
	// Defaults to UTC when nil.
	Boundary *time.Location
}

// Append inserts a completed check in a single atomic statement.
func (r *PGRepo) Append(ctx context.Context, check ResumeCheck) error {
	const query = `
INSERT INTO resume_checks (
    id,
    user_id,
    checked_at,
    check_date,
    raw_file_ref,
    score,
    strong_keywords,
    missing_keywords,
    suggestions
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	strong, err := marshalStrings(check.StrongKeywords)
	if err != nil {
		return err
	}
	missing, err := marshalStrings(check.MissingKeywords)
	if err != nil {
		return err
	}
	suggestions, err := marshalStrings(check.Suggestions)
	if err != nil {
		return err
	}

	checkDate := check.CheckedAt.In(r.location()).Format("2006-01-02")

	_, err = r.DB.ExecContext(ctx, query,
		check.ID,
		check.UserID,
		check.CheckedAt,
		checkDate,
		check.RawFileRef,
		check.Score,
		strong,
		missing,
		suggestions,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateDay
		}
		return err
	}
	return nil
}

// ListByUser lists checks newest-first with a stable id tie-break.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]ResumeCheck, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, checked_at, raw_file_ref, score, strong_keywords, missing_keywords, suggestions
FROM resume_checks
WHERE user_id = $1
ORDER BY checked_at DESC, id DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ResumeCheck
	for rows.Next() {
		check, err := scanCheck(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, check)
	}
	return out, rows.Err()
}

// LatestByUser returns the most recent check for a user.
func (r *PGRepo) LatestByUser(ctx context.Context, userID string) (ResumeCheck, error) {
	const query = `
SELECT id, user_id, checked_at, raw_file_ref, score, strong_keywords, missing_keywords, suggestions
FROM resume_checks
WHERE user_id = $1
ORDER BY checked_at DESC, id DESC
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, userID)
	check, err := scanCheck(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ResumeCheck{}, ErrNotFound
		}
		return ResumeCheck{}, err
	}
	return check, nil
}

// LastCheckedAt reports the most recent check time for a user.
func (r *PGRepo) LastCheckedAt(ctx context.Context, userID string) (time.Time, bool, error) {
	const query = `
SELECT checked_at
FROM resume_checks
WHERE user_id = $1
ORDER BY checked_at DESC
LIMIT 1`
	var checkedAt time.Time
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&checkedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return checkedAt, true, nil
}

func (r *PGRepo) location() *time.Location {
	if r.Boundary != nil {
		return r.Boundary
	}
	return time.UTC
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCheck(row rowScanner) (ResumeCheck, error) {
	var check ResumeCheck
	var strong, missing, suggestions []byte
	if err := row.Scan(
		&check.ID,
		&check.UserID,
		&check.CheckedAt,
		&check.RawFileRef,
		&check.Score,
		&strong,
		&missing,
		&suggestions,
	); err != nil {
		return ResumeCheck{}, err
	}
	var err error
	if check.StrongKeywords, err = unmarshalStrings(strong); err != nil {
		return ResumeCheck{}, err
	}
	if check.MissingKeywords, err = unmarshalStrings(missing); err != nil {
		return ResumeCheck{}, err
	}
	if check.Suggestions, err = unmarshalStrings(suggestions); err != nil {
		return ResumeCheck{}, err
	}
	return check, nil
}

func marshalStrings(values []string) ([]byte, error) {
	if values == nil {
		values = []string{}
	}
	return json.Marshal(values)
}

func unmarshalStrings(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

var _ Repo = (*PGRepo)(nil)
