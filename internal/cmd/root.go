package cmd

import (
	"fmt"
	"io"

	"github.com/alecthomas/kong"
	"github.com/jimezsa/atsscan/internal/config"
	"github.com/jimezsa/atsscan/internal/ui"
	"github.com/rs/zerolog"
)

type CLI struct {
	Color   string `help:"Color output: auto, always, never." enum:"auto,always,never" default:"auto"`
	JSON    bool   `help:"JSON output to stdout; disables colors."`
	Plain   bool   `help:"TSV output to stdout; disables colors."`
	Verbose bool   `help:"Enable debug logging."`

	VersionFlag kong.VersionFlag `help:"Print version."`

	Version   VersionCmd   `cmd:"" help:"Print version."`
	Config    ConfigCmd    `cmd:"" help:"Manage configuration."`
	Scan      ScanCmd      `cmd:"" help:"Scan ATS job boards for matching postings."`
	Platforms PlatformsCmd `cmd:"" help:"List ATS platforms, adapters and roster companies."`
	Export    ExportCmd    `cmd:"" help:"Export the postings of a stored scan."`
	Seen      SeenCmd      `cmd:"" help:"Seen postings utilities."`
	Proxies   ProxiesCmd   `cmd:"" help:"Proxy utilities."`
}

func NewCLI() *CLI {
	return &CLI{}
}

// Context carries the resolved globals into each command's Run.
type Context struct {
	Out        io.Writer
	Err        io.Writer
	UI         *ui.UI
	Config     config.Config
	ConfigDir  string
	Logger     zerolog.Logger
	Verbose    bool
	JSONOutput bool
	PlainText  bool
	Version    string
	ColorMode  ui.ColorMode
}

type VersionCmd struct{}

func (v *VersionCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintln(ctx.Out, ctx.Version)
	return err
}
