package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"legalconnect-engine/internal/domain"
)

const lawyerColumns = `id, external_id, name, firm, tier, practice_area, specialties,
  location, state, experience_years, case_count, success_rate, hourly_rate,
  hourly_rate_max, verified, mediation_certified, response_guarantee, languages,
  mara_number, bio, avatar_color, phone, email, website, lat, lng, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLawyer(s rowScanner) (domain.Lawyer, error) {
	var (
		l                   domain.Lawyer
		specialties, langs  string
		verified, mediation int
		guarantee           int
		lat, lng            sql.NullFloat64
		createdAt           string
	)
	if err := s.Scan(
		&l.ID, &l.ExternalID, &l.Name, &l.Firm, &l.Tier, &l.PracticeArea, &specialties,
		&l.Location, &l.State, &l.ExperienceYears, &l.CaseCount, &l.SuccessRate, &l.HourlyRate,
		&l.HourlyRateMax, &verified, &mediation, &guarantee, &langs,
		&l.MaraNumber, &l.Bio, &l.AvatarColor, &l.Phone, &l.Email, &l.Website, &lat, &lng, &createdAt,
	); err != nil {
		return domain.Lawyer{}, err
	}
	_ = json.Unmarshal([]byte(specialties), &l.Specialties)
	_ = json.Unmarshal([]byte(langs), &l.Languages)
	l.Verified = verified != 0
	l.MediationCertified = mediation != 0
	l.ResponseGuarantee = guarantee != 0
	if lat.Valid && lng.Valid {
		l.Coordinates = &domain.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
	}
	l.CreatedAt = parseTime(createdAt)
	return domain.Normalize(l), nil
}

func lawyerArgs(l domain.Lawyer) []any {
	specialties, _ := json.Marshal(l.Specialties)
	langs, _ := json.Marshal(l.Languages)
	var lat, lng any
	if l.Coordinates != nil {
		lat, lng = l.Coordinates.Lat, l.Coordinates.Lng
	}
	return []any{
		l.ExternalID, l.Name, l.Firm, l.Tier, l.PracticeArea, string(specialties),
		l.Location, l.State, l.ExperienceYears, l.CaseCount, l.SuccessRate, l.HourlyRate,
		l.HourlyRateMax, boolInt(l.Verified), boolInt(l.MediationCertified), boolInt(l.ResponseGuarantee), string(langs),
		l.MaraNumber, l.Bio, l.AvatarColor, l.Phone, l.Email, l.Website, lat, lng,
	}
}

// ListLawyers returns the whole roster in id order.
func ListLawyers(ctx context.Context, db *sql.DB) ([]domain.Lawyer, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+lawyerColumns+` FROM lawyers ORDER BY id ASC;`)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func GetLawyer(ctx context.Context, db *sql.DB, id int64) (domain.Lawyer, error) {
	row := db.QueryRowContext(ctx, `SELECT `+lawyerColumns+` FROM lawyers WHERE id = ? LIMIT 1;`, id)
	l, err := scanLawyer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Lawyer{}, ErrNotFound
	}
	return l, err
}

func CountLawyers(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lawyers;`).Scan(&n)
	return n, err
}

const insertLawyerSQL = `(external_id, name, firm, tier, practice_area, specialties,
  location, state, experience_years, case_count, success_rate, hourly_rate,
  hourly_rate_max, verified, mediation_certified, response_guarantee, languages,
  mara_number, bio, avatar_color, phone, email, website, lat, lng, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

// CreateLawyer normalizes and inserts l. A duplicate external id is ErrExists.
func CreateLawyer(ctx context.Context, db *sql.DB, l domain.Lawyer) (domain.Lawyer, error) {
	l = domain.Normalize(l)
	if l.Name == "" || l.PracticeArea == "" {
		return domain.Lawyer{}, fmt.Errorf("create lawyer: name and practice area are required")
	}
	args := append(lawyerArgs(l), nowText())
	res, err := db.ExecContext(ctx, `INSERT INTO lawyers `+insertLawyerSQL, args...)
	if isUniqueViolation(err) {
		return domain.Lawyer{}, ErrExists
	}
	if err != nil {
		return domain.Lawyer{}, fmt.Errorf("create lawyer: %w", err)
	}
	id, _ := res.LastInsertId()
	return GetLawyer(ctx, db, id)
}

// InsertLawyerIgnore inserts l unless its external id is already present.
func InsertLawyerIgnore(ctx context.Context, db *sql.DB, l domain.Lawyer) (added bool, err error) {
	l = domain.Normalize(l)
	args := append(lawyerArgs(l), nowText())

	// relies on unique index on external_id WHERE external_id != ''
	if _, err = db.ExecContext(ctx, `INSERT OR IGNORE INTO lawyers `+insertLawyerSQL, args...); err != nil {
		return false, fmt.Errorf("insert lawyer: %w", err)
	}

	var changes int
	if e := db.QueryRowContext(ctx, `SELECT changes();`).Scan(&changes); e == nil {
		return changes > 0, nil
	}
	return true, nil
}

// LawyerPatch is a partial update; nil fields are left alone. The validate
// tags apply only to fields that are present.
type LawyerPatch struct {
	Name               *string             `json:"name" validate:"omitempty,min=1,max=200"`
	Firm               *string             `json:"firm" validate:"omitempty,max=200"`
	Tier               *string             `json:"tier"`
	PracticeArea       *string             `json:"practiceArea"`
	Specialties        *[]string           `json:"specialties"`
	Location           *string             `json:"location"`
	State              *string             `json:"state" validate:"omitempty,max=3"`
	ExperienceYears    *int                `json:"experienceYears" validate:"omitempty,gte=0"`
	CaseCount          *int                `json:"caseCount" validate:"omitempty,gte=0"`
	SuccessRate        *int                `json:"successRate" validate:"omitempty,gte=0,lte=100"`
	HourlyRate         *float64            `json:"hourlyRate" validate:"omitempty,gte=0"`
	HourlyRateMax      *float64            `json:"hourlyRateMax" validate:"omitempty,gte=0"`
	Verified           *bool               `json:"verified"`
	MediationCertified *bool               `json:"mediationCertified"`
	ResponseGuarantee  *bool               `json:"responseGuarantee"`
	Languages          *[]string           `json:"languages"`
	MaraNumber         *string             `json:"maraNumber"`
	Bio                *string             `json:"bio" validate:"omitempty,max=4000"`
	AvatarColor        *string             `json:"avatarColor"`
	Phone              *string             `json:"phone"`
	Email              *string             `json:"email" validate:"omitempty,email"`
	Website            *string             `json:"website" validate:"omitempty,url"`
	Coordinates        *domain.Coordinates `json:"coordinates"`
}

// Apply copies the set fields onto l and reports whether any were set.
func (p LawyerPatch) Apply(l *domain.Lawyer) bool {
	n := 0
	setStr := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
			n++
		}
	}
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
			n++
		}
	}
	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
			n++
		}
	}
	setFloat := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
			n++
		}
	}
	setList := func(dst *[]string, v *[]string) {
		if v != nil {
			*dst = *v
			n++
		}
	}

	setStr(&l.Name, p.Name)
	setStr(&l.Firm, p.Firm)
	setStr(&l.Tier, p.Tier)
	setStr(&l.PracticeArea, p.PracticeArea)
	setList(&l.Specialties, p.Specialties)
	setStr(&l.Location, p.Location)
	setStr(&l.State, p.State)
	setInt(&l.ExperienceYears, p.ExperienceYears)
	setInt(&l.CaseCount, p.CaseCount)
	setInt(&l.SuccessRate, p.SuccessRate)
	setFloat(&l.HourlyRate, p.HourlyRate)
	setFloat(&l.HourlyRateMax, p.HourlyRateMax)
	setBool(&l.Verified, p.Verified)
	setBool(&l.MediationCertified, p.MediationCertified)
	setBool(&l.ResponseGuarantee, p.ResponseGuarantee)
	setList(&l.Languages, p.Languages)
	setStr(&l.MaraNumber, p.MaraNumber)
	setStr(&l.Bio, p.Bio)
	setStr(&l.AvatarColor, p.AvatarColor)
	setStr(&l.Phone, p.Phone)
	setStr(&l.Email, p.Email)
	setStr(&l.Website, p.Website)
	if p.Coordinates != nil {
		c := *p.Coordinates
		l.Coordinates = &c
		n++
	}
	return n > 0
}

// UpdateLawyer applies patch to the stored lawyer. An empty patch is
// ErrNoChanges; a missing lawyer is ErrNotFound.
func UpdateLawyer(ctx context.Context, db *sql.DB, id int64, patch LawyerPatch) (domain.Lawyer, error) {
	cur, err := GetLawyer(ctx, db, id)
	if err != nil {
		return domain.Lawyer{}, err
	}
	if !patch.Apply(&cur) {
		return domain.Lawyer{}, ErrNoChanges
	}
	cur = domain.Normalize(cur)

	cols := strings.Fields(`external_id name firm tier practice_area specialties
  location state experience_years case_count success_rate hourly_rate
  hourly_rate_max verified mediation_certified response_guarantee languages
  mara_number bio avatar_color phone email website lat lng`)
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = ?"
	}
	args := append(lawyerArgs(cur), id)
	if _, err := db.ExecContext(ctx,
		`UPDATE lawyers SET `+strings.Join(sets, ", ")+` WHERE id = ?;`, args...); err != nil {
		return domain.Lawyer{}, fmt.Errorf("update lawyer %d: %w", id, err)
	}
	return GetLawyer(ctx, db, id)
}

func DeleteLawyer(ctx context.Context, db *sql.DB, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM lawyers WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete lawyer %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
