package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"legalconnect-engine/internal/domain"
)

// HistoryLimit caps how many searches ListHistory returns.
const HistoryLimit = 50

func SaveHistory(ctx context.Context, db *sql.DB, rec domain.SearchRecord) (domain.SearchRecord, error) {
	if rec.MinExperience < 0 {
		rec.MinExperience = 0
	}
	if rec.ResultCount < 0 {
		rec.ResultCount = 0
	}
	var maxRate any
	if rec.MaxRate != nil {
		maxRate = *rec.MaxRate
	}
	created := time.Now().UTC()
	res, err := db.ExecContext(ctx, `
INSERT INTO search_history
  (user_id, practice_area, state, location, min_experience, max_rate, response_guarantee, query, result_count, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		rec.UserID, rec.PracticeArea, rec.State, rec.Location, rec.MinExperience, maxRate,
		boolInt(rec.ResponseGuarantee), rec.Query, rec.ResultCount, formatTime(created))
	if err != nil {
		return domain.SearchRecord{}, fmt.Errorf("save history: %w", err)
	}
	rec.ID, _ = res.LastInsertId()
	rec.CreatedAt = created
	return rec, nil
}

// ListHistory returns up to HistoryLimit searches, newest first.
func ListHistory(ctx context.Context, db *sql.DB, userID int64) ([]domain.SearchRecord, error) {
	rows, err := db.QueryContext(ctx, `
SELECT id, user_id, practice_area, state, location, min_experience, max_rate,
  response_guarantee, query, result_count, created_at
FROM search_history
WHERE user_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?;
`, userID, HistoryLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.SearchRecord{}
	for rows.Next() {
		var (
			r         domain.SearchRecord
			maxRate   sql.NullFloat64
			guarantee int
			createdAt string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.PracticeArea, &r.State, &r.Location, &r.MinExperience,
			&maxRate, &guarantee, &r.Query, &r.ResultCount, &createdAt); err != nil {
			return nil, err
		}
		if maxRate.Valid {
			v := maxRate.Float64
			r.MaxRate = &v
		}
		r.ResponseGuarantee = guarantee != 0
		r.CreatedAt = parseTime(createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// PruneHistory deletes searches older than the retention window.
func PruneHistory(ctx context.Context, db *sql.DB, olderThan time.Duration) (deleted int64, err error) {
	cutoff := formatTime(time.Now().Add(-olderThan))
	res, err := db.ExecContext(ctx, `DELETE FROM search_history WHERE created_at < ?;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
