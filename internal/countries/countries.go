package countries

import (
	"errors"
	"strconv"
	"strings"

	"github.com/biter777/countries"
)

// ErrInvalidCode is returned for selection keys that are not 2-letter codes.
var ErrInvalidCode = errors.New("country code must be two letters")

// NormalizeCode trims and upper-cases an ISO 3166-1 alpha-2 code.
// Codes unknown to the ISO table (the API reports a few, like XK) are kept.
func NormalizeCode(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != 2 {
		return "", ErrInvalidCode
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", ErrInvalidCode
		}
	}
	return code, nil
}

// TopoJSONCode converts ISO 3166-1 alpha-2 to the ISO 3166-1 numeric id
// used by world-110m TopoJSON features. Unknown codes return "".
func TopoJSONCode(alpha2 string) string {
	if c, ok := lookup(alpha2); ok {
		return strconv.Itoa(int(c))
	}
	return ""
}

// Name returns the English short name for a code, falling back to the code itself.
func Name(alpha2 string) string {
	if c, ok := lookup(alpha2); ok {
		return c.String()
	}
	return alpha2
}

func lookup(alpha2 string) (countries.CountryCode, bool) {
	alpha2 = strings.ToUpper(alpha2)
	if alpha2 == "" {
		return countries.Unknown, false
	}
	for _, country := range countries.All() {
		if country.Alpha2() == alpha2 {
			return country, true
		}
	}
	return countries.Unknown, false
}
