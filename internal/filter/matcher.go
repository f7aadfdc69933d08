package filter

import (
	"strings"

	"github.com/jimezsa/atsscan/internal/models"
)

// Matcher holds criteria pre-processed for repeated Accept calls.
type Matcher struct {
	regionsSet bool
	hints      []string
	cities     []string
	roles      [][]string
	jobTypes   []jobTypeRule
	anyJobType bool
}

// NewMatcher compiles criteria. Unknown job type labels are kept as never-matching entries, so
// criteria made only of unknown labels reject everything.
func NewMatcher(criteria models.Criteria) *Matcher {
	m := &Matcher{
		regionsSet: len(nonEmpty(criteria.Regions)) > 0,
		hints:      regionHints(criteria.Regions),
	}
	for _, city := range nonEmpty(criteria.Cities) {
		m.cities = append(m.cities, strings.ToLower(city))
	}
	for _, role := range criteria.Roles {
		m.roles = append(m.roles, RoleTokens(role))
	}
	labels := nonEmpty(criteria.JobTypes)
	m.anyJobType = len(labels) == 0
	for _, label := range labels {
		if rule, ok := jobTypeRules[labelKey(label)]; ok {
			m.jobTypes = append(m.jobTypes, rule)
		}
	}
	return m
}

// Accept reports whether posting passes the region, city, role and job type predicates.
func (m *Matcher) Accept(posting models.Posting) bool {
	location := strings.ToLower(posting.Location)
	return m.matchRegion(location) &&
		m.matchCity(location) &&
		m.matchRole(posting.Title) &&
		m.matchJobType(posting)
}

func (m *Matcher) matchRegion(location string) bool {
	if !m.regionsSet {
		return true
	}
	return matchesAny(location, m.hints)
}

func (m *Matcher) matchCity(location string) bool {
	if len(m.cities) == 0 {
		return true
	}
	return matchesAny(location, m.cities)
}

func (m *Matcher) matchRole(title string) bool {
	for _, tokens := range m.roles {
		if MatchesRole(title, tokens) {
			return true
		}
	}
	return false
}

func (m *Matcher) matchJobType(posting models.Posting) bool {
	if m.anyJobType {
		return true
	}
	facts := factsFor(posting)
	for _, rule := range m.jobTypes {
		if rule(facts) {
			return true
		}
	}
	return false
}

// Accept is a convenience for single postings; adapters should build a Matcher once per scan.
func Accept(posting models.Posting, criteria models.Criteria) bool {
	return NewMatcher(criteria).Accept(posting)
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	return out
}
