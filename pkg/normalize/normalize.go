// Package normalize converts the money and timestamp strings found in
// the raw auction listings into canonical, SQL-sortable forms.
package normalize

import "strings"

var months = map[string]string{
	"Jan": "01", "Feb": "02", "Mar": "03", "Apr": "04",
	"May": "05", "Jun": "06", "Jul": "07", "Aug": "08",
	"Sep": "09", "Oct": "10", "Nov": "11", "Dec": "12",
}

// Money canonicalizes a dollar amount like "$3,453.23" to "3453.23" by
// stripping every character except digits and the decimal point.
// The empty string passes through unchanged so that "missing" stays
// distinguishable from "zero".
func Money(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Month converts a three-letter month abbreviation to its two-digit
// number, e.g. "Dec" to "12". Unrecognized abbreviations are returned
// unchanged.
func Month(mon string) string {
	if m, ok := months[mon]; ok {
		return m
	}
	return mon
}

// Timestamp converts "Mon-DD-YY HH:MM:SS" to "20YY-MM-DD HH:MM:SS",
// which sorts chronologically as a string. The century is fixed to the
// 2000s; the source data carries two-digit years only.
func Timestamp(s string) string {
	parts := strings.SplitN(strings.TrimSpace(s), " ", 2)
	if len(parts) != 2 {
		return s
	}
	dt := strings.Split(parts[0], "-")
	if len(dt) != 3 {
		return s
	}
	return "20" + dt[2] + "-" + Month(dt[0]) + "-" + dt[1] + " " + parts[1]
}
