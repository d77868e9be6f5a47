package store

import (
	"context"
	"database/sql"
	"fmt"

	"legalconnect-engine/internal/domain"
)

// ListComparison returns the user's compared lawyers, newest first.
func ListComparison(ctx context.Context, db *sql.DB, userID int64) ([]domain.Lawyer, error) {
	rows, err := db.QueryContext(ctx, `
SELECT l.id, l.external_id, l.name, l.firm, l.tier, l.practice_area, l.specialties,
  l.location, l.state, l.experience_years, l.case_count, l.success_rate, l.hourly_rate,
  l.hourly_rate_max, l.verified, l.mediation_certified, l.response_guarantee, l.languages,
  l.mara_number, l.bio, l.avatar_color, l.phone, l.email, l.website, l.lat, l.lng, l.created_at
FROM lawyers l
INNER JOIN comparisons c ON l.id = c.lawyer_id
WHERE c.user_id = ?
ORDER BY c.created_at DESC, c.id DESC
LIMIT ?;
`, userID, MaxComparison)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Lawyer{}
	for rows.Next() {
		l, err := scanLawyer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// AddComparison adds a lawyer to the user's comparison. It fails with
// ErrComparisonFull at MaxComparison entries, ErrNotFound for an unknown
// lawyer and ErrExists when already present.
func AddComparison(ctx context.Context, db *sql.DB, userID, lawyerID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comparisons WHERE user_id = ?;`, userID).Scan(&count); err != nil {
		return err
	}
	if count >= MaxComparison {
		return ErrComparisonFull
	}

	var one int
	if err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM lawyers WHERE id = ? LIMIT 1;`, lawyerID).Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO comparisons(user_id, lawyer_id, created_at)
VALUES(?,?,?);`, userID, lawyerID, nowText())
	if isUniqueViolation(err) {
		return ErrExists
	}
	if err != nil {
		return fmt.Errorf("add comparison: %w", err)
	}
	return tx.Commit()
}

func RemoveComparison(ctx context.Context, db *sql.DB, userID, lawyerID int64) error {
	res, err := db.ExecContext(ctx,
		`DELETE FROM comparisons WHERE user_id = ? AND lawyer_id = ?;`, userID, lawyerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func ClearComparison(ctx context.Context, db *sql.DB, userID int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM comparisons WHERE user_id = ?;`, userID)
	return err
}
