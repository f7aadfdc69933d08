package filter

import (
	"strings"

	"github.com/jimezsa/atsscan/internal/models"
)

// Job type labels accepted in criteria.
const (
	JobTypeFullTime       = "Full Time"
	JobTypeContract       = "Contract"
	JobTypeFullTimeRemote = "Fulltime-Remote"
	JobTypeContractRemote = "Contract-Remote"
	JobTypePartTime       = "Part-time"
	JobTypeRemote         = "Remote"
)

type kindFacts struct {
	remote   bool
	fullTime bool
	contract bool
	partTime bool
}

type jobTypeRule func(kindFacts) bool

var jobTypeRules = map[string]jobTypeRule{
	labelKey(JobTypeFullTime):       func(f kindFacts) bool { return f.fullTime },
	labelKey(JobTypeContract):       func(f kindFacts) bool { return f.contract },
	labelKey(JobTypeFullTimeRemote): func(f kindFacts) bool { return f.fullTime && f.remote },
	labelKey(JobTypeContractRemote): func(f kindFacts) bool { return f.contract && f.remote },
	labelKey(JobTypePartTime):       func(f kindFacts) bool { return f.partTime },
	labelKey(JobTypeRemote):         func(f kindFacts) bool { return f.remote },
}

// JobTypes lists the supported job type labels in display order.
func JobTypes() []string {
	return []string{
		JobTypeFullTime,
		JobTypeContract,
		JobTypeFullTimeRemote,
		JobTypeContractRemote,
		JobTypePartTime,
		JobTypeRemote,
	}
}

// KnownJobType reports whether label maps to a job type rule.
func KnownJobType(label string) bool {
	_, ok := jobTypeRules[labelKey(label)]
	return ok
}

func labelKey(label string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(label)))
}

func factsFor(posting models.Posting) kindFacts {
	kind := strings.ToLower(posting.EmploymentKind)
	location := strings.ToLower(posting.Location)
	return kindFacts{
		remote:   posting.Remote || strings.Contains(kind, "remote") || strings.Contains(location, "remote"),
		fullTime: strings.Contains(kind, "full") || strings.Contains(kind, "permanent"),
		contract: strings.Contains(kind, "contract"),
		partTime: strings.Contains(kind, "part"),
	}
}
