package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/jimezsa/atsscan/internal/filter"
	"github.com/jimezsa/atsscan/internal/roster"
	"github.com/jimezsa/atsscan/internal/scraper"
)

type PlatformsCmd struct {
	Roster string `help:"Path to companies roster (json5 or yaml)." env:"ATSSCAN_ROSTER"`
}

type platformInfo struct {
	Platform  string   `json:"platform"`
	Adapter   bool     `json:"adapter"`
	Companies []string `json:"companies"`
}

type platformListing struct {
	Platforms []platformInfo `json:"platforms"`
	Regions   []string       `json:"regions"`
	JobTypes  []string       `json:"job_types"`
}

func (p *PlatformsCmd) Run(ctx *Context) error {
	companies, _, err := roster.Resolve(firstNonEmpty(p.Roster, ctx.Config.RosterPath), ctx.ConfigDir)
	if err != nil {
		return err
	}

	registry := scraper.NewRegistry(false,
		scraper.NewGreenhouse(scraper.Options{}),
		scraper.NewLever(scraper.Options{}),
		scraper.NewAshby(scraper.Options{}),
		scraper.NewSmartRecruiters(scraper.Options{}),
	)

	listing := platformListing{
		Regions:  filter.Countries(),
		JobTypes: filter.JobTypes(),
	}
	for _, platform := range scraper.KnownPlatforms {
		_, ok := registry.Resolve(platform)
		list := companies.Companies(platform)
		if list == nil {
			list = []string{}
		}
		listing.Platforms = append(listing.Platforms, platformInfo{
			Platform:  platform,
			Adapter:   ok,
			Companies: list,
		})
	}

	if ctx.JSONOutput {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(listing)
	}

	if ctx.PlainText {
		for _, info := range listing.Platforms {
			fmt.Fprintf(ctx.Out, "%s\t%s\t%s\n", info.Platform, adapterLabel(info.Adapter), strings.Join(info.Companies, ","))
		}
		return nil
	}

	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "platform\tsource\tcompanies")
	for _, info := range listing.Platforms {
		source := adapterLabel(info.Adapter)
		if ctx.UI != nil {
			source = ctx.UI.SourceLabel(info.Adapter, source)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\n", info.Platform, source, len(info.Companies))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(ctx.Out, "\nregions: %s\njob types: %s\n", strings.Join(listing.Regions, ", "), strings.Join(listing.JobTypes, ", "))
	return err
}

func adapterLabel(ok bool) string {
	if ok {
		return "api+html"
	}
	return "stub"
}
