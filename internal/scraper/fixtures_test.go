package scraper

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/jimezsa/atsscan/internal/ratelimit"
	"github.com/rs/zerolog"
)

type fixture struct {
	status int
	body   string
	err    error
}

// fixtureDoer serves canned responses keyed by full request URL; unknown URLs get a 404.
type fixtureDoer struct {
	mu       sync.Mutex
	routes   map[string]fixture
	requests []string
}

func newFixtureDoer(routes map[string]fixture) *fixtureDoer {
	return &fixtureDoer{routes: routes}
}

func (f *fixtureDoer) Do(req *fhttp.Request) (*fhttp.Response, error) {
	target := req.URL.String()

	f.mu.Lock()
	f.requests = append(f.requests, target)
	fx, ok := f.routes[target]
	f.mu.Unlock()

	if !ok {
		fx = fixture{status: 404, body: `{"error":"not found"}`}
	}
	if fx.err != nil {
		return nil, fx.err
	}
	status := fx.status
	if status == 0 {
		status = 200
	}
	return &fhttp.Response{
		StatusCode: status,
		Header:     fhttp.Header{},
		Body:       io.NopCloser(strings.NewReader(fx.body)),
		Request:    req,
	}, nil
}

// stallingDoer hangs on the listed URLs until the request context ends and serves everything else
// from its fixtures.
type stallingDoer struct {
	*fixtureDoer
	stalled map[string]bool
}

func (s *stallingDoer) Do(req *fhttp.Request) (*fhttp.Response, error) {
	if s.stalled[req.URL.String()] {
		s.fixtureDoer.mu.Lock()
		s.fixtureDoer.requests = append(s.fixtureDoer.requests, req.URL.String())
		s.fixtureDoer.mu.Unlock()
		<-req.Context().Done()
		return nil, req.Context().Err()
	}
	return s.fixtureDoer.Do(req)
}

func (f *fixtureDoer) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

var errConnReset = errors.New("connection reset by peer")

func testOptions(client Doer, companies ...string) Options {
	return Options{
		Client:    client,
		Companies: companies,
		Limiter:   ratelimit.New(0, nil),
		Logger:    zerolog.Nop(),
		APIBase:   "https://api.test/boards",
		BoardBase: "https://boards.test",
	}
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse document: %v", err)
	}
	return doc
}
