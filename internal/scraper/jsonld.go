package scraper

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Nesting deeper than this inside one ld+json block is ignored.
const maxJSONLDDepth = 8

// ldText decodes schema.org values that may be a string, a list of strings, a number or an
// object with a "name". Anything else decodes to "".
type ldText string

func (t *ldText) UnmarshalJSON(data []byte) error {
	var s string
	if json.Unmarshal(data, &s) == nil {
		*t = ldText(strings.TrimSpace(s))
		return nil
	}
	var list []ldText
	if json.Unmarshal(data, &list) == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			if item != "" {
				parts = append(parts, string(item))
			}
		}
		*t = ldText(strings.Join(parts, ", "))
		return nil
	}
	var n json.Number
	if json.Unmarshal(data, &n) == nil {
		*t = ldText(n.String())
		return nil
	}
	var named struct {
		Name string `json:"name"`
	}
	if json.Unmarshal(data, &named) == nil {
		*t = ldText(strings.TrimSpace(named.Name))
	}
	return nil
}

type ldAddress struct {
	Locality ldText `json:"addressLocality"`
	Region   ldText `json:"addressRegion"`
	Country  ldText `json:"addressCountry"`
}

func (a ldAddress) String() string {
	var parts []string
	for _, part := range []ldText{a.Locality, a.Region, a.Country} {
		if part != "" {
			parts = append(parts, string(part))
		}
	}
	return strings.Join(parts, ", ")
}

// ldNode holds the JobPosting fields plus the containers that can wrap postings.
type ldNode struct {
	Type            ldText          `json:"@type"`
	Title           ldText          `json:"title"`
	Name            ldText          `json:"name"`
	URL             ldText          `json:"url"`
	ID              ldText          `json:"@id"`
	EmploymentType  ldText          `json:"employmentType"`
	JobLocationType ldText          `json:"jobLocationType"`
	JobLocation     json.RawMessage `json:"jobLocation"`
	Graph           json.RawMessage `json:"@graph"`
	ItemList        json.RawMessage `json:"itemListElement"`
	Item            json.RawMessage `json:"item"`
	MainEntity      json.RawMessage `json:"mainEntity"`
}

// parseJSONLDPostings extracts schema.org JobPosting entries embedded in a board page, once per
// URL (or title and location when the URL is missing).
func parseJSONLDPostings(doc *goquery.Document) []rawPosting {
	var postings []rawPosting
	keys := map[string]struct{}{}

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var found []rawPosting
		collectJSONLD(sanitizeJSONLD(s.Text()), &found, 0)
		for _, posting := range found {
			key := posting.URL
			if key == "" {
				key = strings.ToLower(posting.Title + "|" + posting.Location)
			}
			if _, dup := keys[key]; dup {
				continue
			}
			keys[key] = struct{}{}
			postings = append(postings, posting)
		}
	})
	return postings
}

func sanitizeJSONLD(raw string) []byte {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(raw, "<!--"), "-->"))
	raw = strings.NewReplacer("\u2028", "", "\u2029", "").Replace(raw)
	return []byte(raw)
}

func collectJSONLD(data json.RawMessage, out *[]rawPosting, depth int) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || depth > maxJSONLDDepth {
		return
	}

	switch data[0] {
	case '[':
		var items []json.RawMessage
		if json.Unmarshal(data, &items) != nil {
			return
		}
		for _, item := range items {
			collectJSONLD(item, out, depth+1)
		}
	case '{':
		var node ldNode
		if json.Unmarshal(data, &node) != nil {
			return
		}
		if strings.Contains(strings.ToLower(string(node.Type)), "jobposting") {
			*out = append(*out, node.posting())
			return
		}
		for _, nested := range []json.RawMessage{node.Graph, node.ItemList, node.Item, node.MainEntity} {
			collectJSONLD(nested, out, depth+1)
		}
	}
}

func (n ldNode) posting() rawPosting {
	return rawPosting{
		Title:    string(firstText(n.Title, n.Name)),
		URL:      string(firstText(n.URL, n.ID)),
		Location: jobLocation(n.JobLocation),
		Kind:     string(n.EmploymentType),
		Remote:   strings.EqualFold(string(n.JobLocationType), "TELECOMMUTE"),
	}
}

// jobLocation renders a Place, a list of Places or a plain string; lists are joined with "; ".
func jobLocation(data json.RawMessage) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ""
	}

	switch data[0] {
	case '[':
		var items []json.RawMessage
		if json.Unmarshal(data, &items) != nil {
			return ""
		}
		var parts []string
		for _, item := range items {
			if loc := jobLocation(item); loc != "" {
				parts = append(parts, loc)
			}
		}
		return strings.Join(parts, "; ")
	case '{':
		var place struct {
			ldAddress
			Address json.RawMessage `json:"address"`
		}
		if json.Unmarshal(data, &place) != nil {
			return ""
		}
		if loc := jobLocation(place.Address); loc != "" {
			return loc
		}
		return place.ldAddress.String()
	default:
		var s string
		if json.Unmarshal(data, &s) != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}
}

func firstText(values ...ldText) ldText {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
