// Package export renders a shortlist as the comma-delimited download
// offered to users.
package export

import (
	"io"
	"strconv"
	"strings"
	"time"

	"legalconnect-engine/internal/shortlist"
)

// Header is written unquoted; every data cell is quoted.
var Header = []string{"ID", "Name", "Firm", "Practice Area", "Location", "Experience", "Rate", "Phone", "Email", "Website"}

const ContentType = "text/csv;charset=utf-8"

// WriteCSV writes one header line and one row per entry. Lines are joined
// with "\n" and the output has no trailing newline, so an empty shortlist
// yields the header alone.
func WriteCSV(w io.Writer, entries []shortlist.Entry) error {
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, strings.Join(Header, ","))
	for _, e := range entries {
		lines = append(lines, formatRow(Row(e)))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

// Render is WriteCSV into a string.
func Render(entries []shortlist.Entry) string {
	var sb strings.Builder
	_ = WriteCSV(&sb, entries)
	return sb.String()
}

// Row returns the unquoted cells for one entry, in Header order.
func Row(e shortlist.Entry) []string {
	loc := e.Location
	if e.State != "" {
		loc = e.Location + ", " + e.State
	}
	return []string{
		strconv.FormatInt(e.ID, 10),
		e.Name,
		e.Firm,
		e.PracticeArea,
		loc,
		strconv.Itoa(e.ExperienceYears) + " years",
		"$" + strconv.FormatFloat(e.HourlyRate, 'f', -1, 64) + "/hour",
		e.Phone,
		e.Email,
		e.Website,
	}
}

// FileName is the suggested download name for a given day.
func FileName(now time.Time) string {
	return "legalconnect-shortlist-" + now.Format("2006-01-02") + ".csv"
}

// encoding/csv only quotes when needed; this format quotes every cell.
func formatRow(cells []string) string {
	quoted := make([]string, len(cells))
	for i, c := range cells {
		quoted[i] = `"` + strings.ReplaceAll(c, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}
