package roster

import "strings"

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// SplitLocation turns "Parramatta, NSW" into its suburb and state parts. A
// value without a comma is all suburb.
func SplitLocation(loc string) (suburb, state string) {
	loc = CleanText(loc)
	loc = strings.TrimPrefix(loc, "Location:")
	loc = strings.TrimSpace(loc)

	i := strings.LastIndex(loc, ",")
	if i < 0 {
		return loc, ""
	}
	return CleanText(loc[:i]), strings.ToUpper(CleanText(loc[i+1:]))
}

// SplitList splits on commas or semicolons, dropping blanks and
// case-insensitive duplicates.
func SplitList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	seen := map[string]bool{}
	out := []string{}
	for _, p := range parts {
		p = CleanText(p)
		if p == "" {
			continue
		}
		k := strings.ToLower(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return out
}
