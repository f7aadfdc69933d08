package filter

import "strings"

var countryHints = map[string][]string{
	"canada": {
		"canada",
		"toronto",
		"vancouver",
		"waterloo",
		"calgary",
		"ottawa",
		"montreal",
		"london",
		"oakville",
		"mississauga",
		"cambridge",
		"winnipeg",
		"kitchener",
		"brampton",
		"edmonton",
		"markham",
		"hamilton",
		"halifax",
		"saskatoon",
		"remote",
	},
	"usa": {
		"united states",
		"usa",
		"us ",
		"new york",
		"san francisco",
		"seattle",
		"austin",
		"boston",
		"chicago",
		"los angeles",
		"remote - us",
		"remote, us",
	},
}

var countryAliases = map[string]string{
	"ca":                       "canada",
	"can":                      "canada",
	"us":                       "usa",
	"u.s.":                     "usa",
	"united states":            "usa",
	"united states of america": "usa",
	"america":                  "usa",
}

// Countries lists the country names the region predicate knows hints for.
func Countries() []string {
	return []string{"Canada", "USA"}
}

// RegionHints returns the location hints for country, or nil when the country is unknown.
func RegionHints(country string) []string {
	key := strings.ToLower(strings.TrimSpace(country))
	if alias, ok := countryAliases[key]; ok {
		key = alias
	}
	return countryHints[key]
}

// LooksLikeLocation reports whether free text reads as a place: it has a comma or names a known
// city, country or "remote". Hints shorter than four letters are ignored here.
func LooksLikeLocation(text string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, ",") {
		return true
	}
	for _, hints := range countryHints {
		for _, hint := range hints {
			if len(hint) >= 4 && strings.Contains(lower, hint) {
				return true
			}
		}
	}
	return false
}

func regionHints(regions []string) []string {
	var hints []string
	seen := map[string]struct{}{}
	for _, region := range regions {
		for _, hint := range RegionHints(region) {
			if _, ok := seen[hint]; ok {
				continue
			}
			seen[hint] = struct{}{}
			hints = append(hints, hint)
		}
	}
	return hints
}

func matchesAny(value string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(value, needle) {
			return true
		}
	}
	return false
}
