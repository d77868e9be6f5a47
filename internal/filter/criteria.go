// Package filter narrows a lawyer roster by a set of independent predicates
// and derives the option lists used to populate filter controls.
package filter

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Criteria is the value object driving Apply. The zero value constrains
// nothing; every field has a neutral value.
type Criteria struct {
	PracticeArea  string   `json:"practiceArea"`
	Location      string   `json:"location"`
	MinExperience int      `json:"minExperience"`
	MaxRate       *float64 `json:"maxRate"` // nil = unbounded
	VerifiedOnly  bool     `json:"verified"`
	MediationOnly bool     `json:"mediationCertified"`
	Language      string   `json:"language"`
	Query         string   `json:"searchQuery"`
}

type Field string

const (
	FieldPracticeArea  Field = "practiceArea"
	FieldLocation      Field = "location"
	FieldMinExperience Field = "minExperience"
	FieldMaxRate       Field = "maxRate"
	FieldVerified      Field = "verified"
	FieldMediation     Field = "mediationCertified"
	FieldLanguage      Field = "language"
	FieldQuery         Field = "searchQuery"
)

var Fields = []Field{
	FieldPracticeArea,
	FieldLocation,
	FieldMinExperience,
	FieldMaxRate,
	FieldVerified,
	FieldMediation,
	FieldLanguage,
	FieldQuery,
}

// Reset returns the all-neutral criteria.
func Reset() Criteria { return Criteria{} }

// Active reports whether any field constrains the result.
func (c Criteria) Active() bool {
	return c.PracticeArea != "" ||
		c.Location != "" ||
		c.MinExperience > 0 ||
		c.MaxRate != nil ||
		c.VerifiedOnly ||
		c.MediationOnly ||
		c.Language != "" ||
		c.Query != ""
}

// Update returns a copy of c with one field replaced. An empty raw value
// restores that field's neutral value. The receiver is never modified.
func (c Criteria) Update(f Field, raw string) (Criteria, error) {
	raw = strings.TrimSpace(raw)
	next := c

	switch f {
	case FieldPracticeArea:
		next.PracticeArea = raw
	case FieldLocation:
		next.Location = raw
	case FieldLanguage:
		next.Language = raw
	case FieldQuery:
		next.Query = raw
	case FieldMinExperience:
		if raw == "" {
			next.MinExperience = 0
			break
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c, fmt.Errorf("%s must be a non-negative integer", f)
		}
		next.MinExperience = n
	case FieldMaxRate:
		if raw == "" || strings.EqualFold(raw, "inf") || strings.EqualFold(raw, "infinity") {
			next.MaxRate = nil
			break
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c, fmt.Errorf("%s must be a non-negative number", f)
		}
		if next.MaxRate, err = checkMaxRate(&v); err != nil {
			return c, err
		}
	case FieldVerified:
		b, err := parseFlag(raw)
		if err != nil {
			return c, fmt.Errorf("%s: %w", f, err)
		}
		next.VerifiedOnly = b
	case FieldMediation:
		b, err := parseFlag(raw)
		if err != nil {
			return c, fmt.Errorf("%s: %w", f, err)
		}
		next.MediationOnly = b
	default:
		return c, fmt.Errorf("unknown filter field %q", f)
	}
	return next, nil
}

// FromQuery builds criteria from URL query parameters named after Fields.
func FromQuery(q url.Values) (Criteria, error) {
	c := Reset()
	for _, f := range Fields {
		if !q.Has(string(f)) {
			continue
		}
		var err error
		c, err = c.Update(f, q.Get(string(f)))
		if err != nil {
			return Reset(), err
		}
	}
	return c.Normalized()
}

// Normalized returns c with text fields trimmed, or an error when a numeric
// field is out of range. Criteria decoded from JSON bypass Update and must
// pass through here before use. A +Inf max rate means unbounded.
func (c Criteria) Normalized() (Criteria, error) {
	out := c
	out.PracticeArea = strings.TrimSpace(out.PracticeArea)
	out.Location = strings.TrimSpace(out.Location)
	out.Language = strings.TrimSpace(out.Language)
	out.Query = strings.TrimSpace(out.Query)
	if out.MinExperience < 0 {
		return c, fmt.Errorf("%s must be a non-negative integer", FieldMinExperience)
	}
	var err error
	if out.MaxRate, err = checkMaxRate(out.MaxRate); err != nil {
		return c, err
	}
	return out, nil
}

func checkMaxRate(v *float64) (*float64, error) {
	switch {
	case v == nil || math.IsInf(*v, 1):
		return nil, nil
	case math.IsNaN(*v) || *v < 0:
		return nil, fmt.Errorf("%s must be a non-negative number", FieldMaxRate)
	}
	cp := *v
	return &cp, nil
}

func parseFlag(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", raw)
	}
	return b, nil
}
