package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	fhttp "github.com/bogdanfinn/fhttp"
)

// Response bodies beyond this are truncated before parsing.
const maxBodyBytes = 8 << 20

var errMalformed = errors.New("malformed payload")

const (
	acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptJSON = "application/json"
)

// StatusError reports a non-2xx answer from a platform endpoint.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: http %d", e.URL, e.Status)
}

func fetchDocument(ctx context.Context, client Doer, target string) (*goquery.Document, error) {
	body, err := get(ctx, client, target, acceptHTML)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return goquery.NewDocumentFromReader(io.LimitReader(body, maxBodyBytes))
}

func fetchJSON(ctx context.Context, client Doer, target string, out any) error {
	body, err := get(ctx, client, target, acceptJSON)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(io.LimitReader(body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	return nil
}

func get(ctx context.Context, client Doer, target string, accept string) (io.ReadCloser, error) {
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		resp.Body.Close()
		return nil, &StatusError{URL: target, Status: resp.StatusCode}
	}
	return resp.Body, nil
}

// cleanText unescapes HTML entities and collapses whitespace runs.
func cleanText(value string) string {
	return strings.Join(strings.Fields(html.UnescapeString(value)), " ")
}

// absoluteURL resolves href against base. Scheme-relative links get https. The result is always an
// http or https URL; other schemes (javascript:, mailto:) and an unparsable or relative base
// yield "".
func absoluteURL(base string, href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	switch {
	case ref.IsAbs():
	case strings.HasPrefix(href, "//"):
		ref.Scheme = "https"
	default:
		baseURL, err := url.Parse(base)
		if err != nil || !baseURL.IsAbs() {
			return ""
		}
		ref = baseURL.ResolveReference(ref)
	}
	if !isWebScheme(ref.Scheme) || ref.Host == "" {
		return ""
	}
	return ref.String()
}

func isWebScheme(scheme string) bool {
	return strings.EqualFold(scheme, "http") || strings.EqualFold(scheme, "https")
}

// companySlug turns a roster entry into the identifier used in board URLs.
func companySlug(company string) string {
	fields := strings.Fields(strings.ToLower(company))
	return url.PathEscape(strings.Join(fields, ""))
}

func joinURL(base string, parts ...string) string {
	segments := []string{strings.TrimRight(base, "/")}
	for _, part := range parts {
		segments = append(segments, strings.Trim(part, "/"))
	}
	return strings.Join(segments, "/")
}
