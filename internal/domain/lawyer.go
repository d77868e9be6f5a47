package domain

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Practice areas offered by the directory. The roster may carry others.
const (
	PracticeFamily       = "family"
	PracticeConveyancing = "conveyancing"
	PracticeImmigration  = "immigration"
)

type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

type Lawyer struct {
	ID                 int64        `json:"id" yaml:"id"`
	ExternalID         string       `json:"externalId,omitempty" yaml:"external_id"`
	Name               string       `json:"name" yaml:"name"`
	Firm               string       `json:"firm" yaml:"firm"`
	Tier               string       `json:"tier,omitempty" yaml:"tier"`
	PracticeArea       string       `json:"practiceArea" yaml:"practice_area"`
	Specialties        []string     `json:"specialties" yaml:"specialties"`
	Location           string       `json:"location" yaml:"location"`
	State              string       `json:"state" yaml:"state"`
	ExperienceYears    int          `json:"experienceYears" yaml:"experience_years"`
	CaseCount          int          `json:"caseCount" yaml:"case_count"`
	SuccessRate        int          `json:"successRate" yaml:"success_rate"`
	HourlyRate         float64      `json:"hourlyRate" yaml:"hourly_rate"`
	HourlyRateMax      float64      `json:"hourlyRateMax,omitempty" yaml:"hourly_rate_max"`
	Verified           bool         `json:"verified" yaml:"verified"`
	MediationCertified bool         `json:"mediationCertified" yaml:"mediation_certified"`
	ResponseGuarantee  bool         `json:"responseGuarantee" yaml:"response_guarantee"`
	Languages          []string     `json:"languages" yaml:"languages"`
	MaraNumber         string       `json:"maraNumber,omitempty" yaml:"mara_number"`
	Bio                string       `json:"bio,omitempty" yaml:"bio"`
	AvatarColor        string       `json:"avatarColor,omitempty" yaml:"avatar_color"`
	Phone              string       `json:"phone,omitempty" yaml:"phone"`
	Email              string       `json:"email,omitempty" yaml:"email"`
	Website            string       `json:"website,omitempty" yaml:"website"`
	Coordinates        *Coordinates `json:"coordinates,omitempty" yaml:"coordinates"`
	CreatedAt          time.Time    `json:"createdAt,omitempty" yaml:"-"`
}

// Normalize returns a copy of l in which every optional field holds its
// neutral value: strings are NFKC-normalized and trimmed, nil or blank list
// entries are dropped, negative numbers are clamped to zero.
func Normalize(l Lawyer) Lawyer {
	out := l
	out.ExternalID = cleanString(l.ExternalID)
	out.Name = cleanString(l.Name)
	out.Firm = cleanString(l.Firm)
	out.Tier = cleanString(l.Tier)
	out.PracticeArea = cleanString(l.PracticeArea)
	out.Location = cleanString(l.Location)
	out.State = strings.ToUpper(cleanString(l.State))
	out.MaraNumber = cleanString(l.MaraNumber)
	out.Bio = cleanString(l.Bio)
	out.AvatarColor = cleanString(l.AvatarColor)
	out.Phone = cleanString(l.Phone)
	out.Email = cleanString(l.Email)
	out.Website = cleanString(l.Website)
	out.Specialties = cleanList(l.Specialties)
	out.Languages = cleanList(l.Languages)

	if out.ExperienceYears < 0 {
		out.ExperienceYears = 0
	}
	if out.CaseCount < 0 {
		out.CaseCount = 0
	}
	if out.SuccessRate < 0 {
		out.SuccessRate = 0
	}
	if out.HourlyRate < 0 {
		out.HourlyRate = 0
	}
	if out.HourlyRateMax < out.HourlyRate {
		out.HourlyRateMax = out.HourlyRate
	}
	if l.Coordinates != nil {
		c := *l.Coordinates
		out.Coordinates = &c
	}
	return out
}

// NormalizeAll normalizes a slice into a fresh slice.
func NormalizeAll(in []Lawyer) []Lawyer {
	out := make([]Lawyer, len(in))
	for i, l := range in {
		out[i] = Normalize(l)
	}
	return out
}

func cleanString(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func cleanList(xs []string) []string {
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		x = cleanString(x)
		if x == "" {
			continue
		}
		out = append(out, x)
	}
	return out
}
