package models

// Posting is the normalized, platform-agnostic job listing produced by adapters.
type Posting struct {
	Platform       string `json:"platform"`
	Company        string `json:"company"`
	Title          string `json:"title"`
	URL            string `json:"url"`
	Location       string `json:"location"`
	EmploymentKind string `json:"employment_kind"`
	// Remote is set when the platform flags the role as remote separately from Location.
	Remote bool `json:"remote,omitempty"`
}

// Employment kinds inferred or normalized from platform data.
const (
	KindFullTime = "Full Time"
	KindContract = "Contract"
	KindPartTime = "Part-time"
	KindRemote   = "Remote"
)
