package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/jimezsa/atsscan/internal/config"
	"github.com/jimezsa/atsscan/internal/network"
	"golang.org/x/sync/errgroup"
)

type ProxiesCmd struct {
	Check ProxyCheckCmd `cmd:"" help:"Validate proxies against an ATS endpoint."`
}

type ProxyCheckCmd struct {
	Proxies     string        `help:"Comma-separated proxy URLs; defaults to the proxies file." env:"ATSSCAN_PROXIES"`
	Target      string        `help:"Target URL." default:"https://boards-api.greenhouse.io/v1/boards/cohere/jobs"`
	Timeout     time.Duration `help:"Per-proxy timeout." default:"15s"`
	Concurrency int           `help:"Proxies checked at once." default:"4"`
}

type ProxyCheckResult struct {
	Proxy     string `json:"proxy"`
	Status    string `json:"status"`
	Healthy   bool   `json:"healthy"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

func (p *ProxyCheckCmd) Run(ctx *Context) error {
	proxies, err := config.LoadProxies(p.Proxies)
	if err != nil {
		return err
	}
	if len(proxies) == 0 {
		return fmt.Errorf("no proxies configured")
	}

	results := make([]ProxyCheckResult, len(proxies))
	var g errgroup.Group
	g.SetLimit(max(p.Concurrency, 1))
	for i, proxy := range proxies {
		g.Go(func() error {
			results[i] = p.check(proxy)
			return nil
		})
	}
	_ = g.Wait()

	return writeProxyResults(ctx, results)
}

func (p *ProxyCheckCmd) check(proxy string) ProxyCheckResult {
	result := ProxyCheckResult{Proxy: proxy, Status: "error"}

	rotator, err := network.NewRotator([]string{proxy}, 5*time.Minute)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	client, err := network.NewClient(network.ClientOptions{Rotator: rotator, Timeout: p.Timeout})
	if err != nil {
		result.Error = err.Error()
		return result
	}

	reqCtx, cancel := context.WithTimeout(context.Background(), p.Timeout)
	defer cancel()
	req, err := fhttp.NewRequestWithContext(reqCtx, fhttp.MethodGet, p.Target, nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	_ = resp.Body.Close()

	result.LatencyMS = time.Since(start).Milliseconds()
	result.Status = fmt.Sprintf("%d", resp.StatusCode)
	result.Healthy = resp.StatusCode >= 200 && resp.StatusCode < 400
	return result
}

func writeProxyResults(ctx *Context, results []ProxyCheckResult) error {
	if ctx.JSONOutput {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if ctx.PlainText {
		for _, res := range results {
			line := []string{res.Proxy, res.Status, healthLabel(res.Healthy), fmt.Sprintf("%d", res.LatencyMS), res.Error}
			fmt.Fprintln(ctx.Out, strings.Join(line, "\t"))
		}
		return nil
	}

	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "proxy\tstatus\thealth\tlatency_ms\terror")
	for _, res := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", res.Proxy, res.Status, healthLabel(res.Healthy), res.LatencyMS, res.Error)
	}
	return tw.Flush()
}

func healthLabel(healthy bool) string {
	if healthy {
		return "ok"
	}
	return "blocked"
}
