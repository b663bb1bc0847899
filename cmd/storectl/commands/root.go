// Package commands implements storectl, a terminal view over the store: each
// command activates fetch-sync hooks and renders {loading, data}.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-store/internal/app"
	"github.com/goliatone/go-store/internal/config"
)

type cli struct {
	configPath string
	baseURL    string
	engine     string
	logLevel   string
	timeout    time.Duration
	jsonOutput bool
	expression string

	app *app.App
}

// Execute runs storectl with the process arguments.
func Execute() error {
	return NewRootCmd(os.Stdout, os.Stderr).Execute()
}

// NewRootCmd builds the command tree writing results to out and logs to
// errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "storectl",
		Short:         "Fetch remote collections into the state store and inspect them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.applyFlags(cmd, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			c.app, err = app.New(cfg, app.WithLogOutput(errOut))
			return err
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "YAML config file")
	flags.StringVar(&c.baseURL, "base-url", "", "API base URL (default "+config.DefaultBaseURL+")")
	flags.StringVar(&c.engine, "engine", "", "selector engine: expr, cel or js")
	flags.StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error")
	flags.DurationVar(&c.timeout, "timeout", 0, "per-request timeout")
	flags.BoolVar(&c.jsonOutput, "json", false, "print JSON")
	flags.StringVarP(&c.expression, "select", "s", "", "selector expression evaluated against the settled tree, e.g. len(product.items) or sum(product.items, \"price\")")

	root.AddCommand(c.productsCmd(), c.provincesCmd(), c.stateCmd())
	return root
}

func (c *cli) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = c.baseURL
	}
	if flags.Changed("engine") {
		cfg.Selector.Engine = c.engine
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = c.logLevel
	}
	if flags.Changed("timeout") {
		cfg.Timeout = c.timeout
	}
}

// result is what every command renders.
type result struct {
	Loading bool   `json:"loading"`
	Data    any    `json:"data"`
	Status  string `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (c *cli) render(cmd *cobra.Command, r result, text func(io.Writer)) error {
	out := cmd.OutOrStdout()
	if c.expression != "" {
		value, err := c.app.Store.Evaluate(c.expression)
		if err != nil {
			return err
		}
		return c.print(out, value, func(w io.Writer) { fmt.Fprintln(w, value) })
	}
	if c.jsonOutput {
		return c.print(out, r, nil)
	}
	if r.Loading {
		fmt.Fprintf(out, "loading... (%s)\n", r.Status)
		if r.Error != "" {
			fmt.Fprintf(out, "error: %s\n", r.Error)
		}
		return nil
	}
	text(out)
	return nil
}

func (c *cli) print(w io.Writer, value any, text func(io.Writer)) error {
	if c.jsonOutput || text == nil {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	}
	text(w)
	return nil
}

func waitContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithCancel(ctx)
}
