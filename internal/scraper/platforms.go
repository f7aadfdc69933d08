package scraper

import "strings"

const (
	PlatformGreenhouse      = "Greenhouse"
	PlatformLever           = "Lever"
	PlatformAshby           = "Ashby"
	PlatformSmartRecruiters = "SmartRecruiters"
)

// KnownPlatforms lists the ATS platforms offered for selection, with or without an adapter.
var KnownPlatforms = []string{
	PlatformGreenhouse,
	PlatformLever,
	"Workday",
	PlatformSmartRecruiters,
	PlatformAshby,
	"BambooHR",
	"iCIMS",
	"Jobvite",
	"ADP Workforce Now",
	"SAP SuccessFactors",
}

// PlatformKey normalizes a platform name for lookups: "Smart Recruiters", "smart-recruiters"
// and "SmartRecruiters" share a key.
func PlatformKey(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_', '.':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
}
