package roster

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"legalconnect-engine/internal/domain"
)

// parseHTML reads the first table whose header row names a "Name" column.
// Column headers are matched case-insensitively; unknown columns are
// ignored.
func parseHTML(r io.Reader) ([]domain.Lawyer, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var out []domain.Lawyer
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		cols := headerColumns(table)
		if _, ok := cols["name"]; !ok {
			return true
		}
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("td")
			if cells.Length() == 0 {
				return
			}
			vals := make([]string, cells.Length())
			cells.Each(func(i int, td *goquery.Selection) {
				vals[i] = CleanText(td.Text())
			})
			if l, ok := rowToLawyer(cols, vals); ok {
				out = append(out, l)
			}
		})
		return false
	})
	return out, nil
}

func headerColumns(table *goquery.Selection) map[string]int {
	cols := map[string]int{}
	table.Find("tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
		key := strings.ToLower(CleanText(th.Text()))
		if key != "" {
			cols[key] = i
		}
	})
	return cols
}

func rowToLawyer(cols map[string]int, vals []string) (domain.Lawyer, bool) {
	get := func(names ...string) string {
		for _, n := range names {
			if i, ok := cols[n]; ok && i < len(vals) {
				return vals[i]
			}
		}
		return ""
	}

	l := domain.Lawyer{
		ExternalID:   get("id", "external id"),
		Name:         get("name"),
		Firm:         get("firm"),
		Tier:         get("tier"),
		PracticeArea: strings.ToLower(get("practice area", "practice")),
		Specialties:  SplitList(get("specialties")),
		Languages:    SplitList(get("languages")),
		MaraNumber:   get("mara", "mara number"),
		Phone:        get("phone"),
		Email:        get("email"),
		Website:      get("website"),
		Bio:          get("bio"),
	}
	if l.Name == "" {
		return domain.Lawyer{}, false
	}

	l.Location, l.State = SplitLocation(get("location"))
	if s := get("state"); s != "" {
		l.State = s
	}
	l.ExperienceYears = leadingInt(get("experience", "experience years"))
	l.CaseCount = leadingInt(get("cases", "case count"))
	l.SuccessRate = leadingInt(get("success rate"))
	l.HourlyRate, l.HourlyRateMax = ParseRate(get("rate", "hourly rate"))
	l.Verified = truthy(get("verified"))
	l.MediationCertified = truthy(get("mediation", "mediation certified"))
	l.ResponseGuarantee = truthy(get("response guarantee"))

	lat, errLat := strconv.ParseFloat(get("lat", "latitude"), 64)
	lng, errLng := strconv.ParseFloat(get("lng", "longitude"), 64)
	if errLat == nil && errLng == nil {
		l.Coordinates = &domain.Coordinates{Lat: lat, Lng: lng}
	}
	return l, true
}

var numRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseRate reads "$350/hour" or "$350 - $600" into a min/max pair.
func ParseRate(s string) (minRate, maxRate float64) {
	nums := numRe.FindAllString(strings.ReplaceAll(s, ",", ""), 2)
	if len(nums) == 0 {
		return 0, 0
	}
	minRate, _ = strconv.ParseFloat(nums[0], 64)
	maxRate = minRate
	if len(nums) > 1 {
		maxRate, _ = strconv.ParseFloat(nums[1], 64)
	}
	return minRate, maxRate
}

func leadingInt(s string) int {
	m := numRe.FindString(s)
	if m == "" {
		return 0
	}
	f, _ := strconv.ParseFloat(m, 64)
	return int(f)
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1", "✓", "✔":
		return true
	}
	return false
}
