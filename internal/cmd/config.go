package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jimezsa/atsscan/internal/config"
	"github.com/jimezsa/atsscan/internal/roster"
)

type ConfigCmd struct {
	Init InitConfigCmd `cmd:"" help:"Write default config.json, proxies.txt and companies.json."`
	Path PathConfigCmd `cmd:"" help:"Print config directory."`
	Show ShowConfigCmd `cmd:"" help:"Print the effective configuration as JSON."`
}

type InitConfigCmd struct{}

type PathConfigCmd struct{}

type ShowConfigCmd struct{}

func (c *InitConfigCmd) Run(ctx *Context) error {
	paths, err := config.InitDir(ctx.ConfigDir)
	if err != nil {
		return err
	}

	rosterPath := filepath.Join(ctx.ConfigDir, roster.JSONFileName)
	if _, err := os.Stat(rosterPath); os.IsNotExist(err) {
		if err := roster.Default().Save(rosterPath); err != nil {
			return err
		}
		paths = append(paths, rosterPath)
	}

	if len(paths) == 0 {
		ctx.UI.Infof("Config already initialized at %s", ctx.ConfigDir)
		return nil
	}
	ctx.UI.Infof("Created: %s", strings.Join(paths, ", "))
	return nil
}

func (c *PathConfigCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintln(ctx.Out, ctx.ConfigDir)
	return err
}

func (c *ShowConfigCmd) Run(ctx *Context) error {
	if _, err := ctx.Config.ScraperConfig(); err != nil {
		return err
	}
	enc := json.NewEncoder(ctx.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(ctx.Config)
}
