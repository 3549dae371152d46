package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ironsheep/glyptodon/internal/config"
	errs "github.com/ironsheep/glyptodon/internal/errors"
	"github.com/ironsheep/glyptodon/internal/manuscript"
	"github.com/ironsheep/glyptodon/internal/server"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	root       string
	verbose    bool
}

// session is what a command needs after flags and config are resolved.
type session struct {
	cfg    *config.Config
	logger *log.Logger
	repo   *manuscript.Repository
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "glyptodon",
		Short: "Manuscript page annotation over MCP",
		Long: `glyptodon keeps a catalog of manuscripts (page scans, metadata and
per-page line and box annotations) and serves it as MCP tools over stdio.

Without a subcommand it runs the MCP server.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("glyptodon %s\n  Build time: %s\n  Git commit: %s\n", Version, BuildTime, GitCommit))

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	flags.StringVar(&opts.root, "root", "", "manuscripts root directory (overrides config and "+config.EnvRoot+")")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newListCmd(opts))
	return root
}

// newLogger writes to w, which is stderr in production: stdout carries the
// JSON-RPC stream.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          "glyptodon",
	})
}

// setup loads the config, applies flag overrides and opens the catalog.
func setup(cmd *cobra.Command, opts *globalOptions) (*session, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.root != "" {
		cfg.Root = opts.root
	}

	level := cfg.Level()
	if opts.verbose {
		level = log.DebugLevel
	}
	logger := newLogger(cmd.ErrOrStderr(), level)

	repo, err := manuscript.NewRepository(cfg.Root, manuscript.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, repo: repo}, nil
}

func newServeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Run the MCP server. Requests are read from stdin one JSON-RPC message
per line and responses written to stdout; logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *globalOptions) error {
	rt, err := setup(cmd, opts)
	if err != nil {
		return err
	}

	srv := server.New(rt.repo,
		server.WithLogger(rt.logger),
		server.WithOCRLanguage(rt.cfg.OCRLanguage),
		server.WithDefaultCenturies(rt.cfg.DefaultCenturies),
		server.WithVersion(Version),
	)
	rt.logger.Info("serving", "version", Version, "root", rt.repo.Root(), "ocr_language", rt.cfg.OCRLanguage)

	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(cmd.InOrStdin(), cmd.OutOrStdout())
	}()

	select {
	case err := <-done:
		rt.logger.Debug("input closed")
		return err
	case <-cmd.Context().Done():
		rt.logger.Info("shutting down")
		return nil
	}
}

// listEntry is one row of `glyptodon list`.
type listEntry struct {
	Name      string `json:"name"`
	Work      string `json:"work"`
	Author    string `json:"author,omitempty"`
	Centuries string `json:"centuries,omitempty"`
	Pages     int    `json:"pages"`
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func newListCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the manuscripts in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			entries, err := listEntries(rt.repo)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, dimStyle.Render("no manuscripts in "+rt.repo.Root()))
				return nil
			}
			fmt.Fprintln(out, renderTable(entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func listEntries(repo *manuscript.Repository) ([]listEntry, error) {
	list, err := repo.List()
	if err != nil {
		return nil, err
	}

	entries := make([]listEntry, 0, len(list))
	for _, m := range list {
		pages, err := manuscript.Images(m.Dir)
		if err != nil && !errs.Is(err, errs.ErrCodeNotFound) {
			return nil, err
		}
		entries = append(entries, listEntry{
			Name:      m.Name,
			Work:      m.Metadata.Value(manuscript.KeyWork),
			Author:    m.Metadata.Value(manuscript.KeyAuthor),
			Centuries: m.Metadata.Value(manuscript.KeyCenturies),
			Pages:     len(pages),
		})
	}
	return entries, nil
}

func renderTable(entries []listEntry) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers("NAME", "WORK", "AUTHOR", "CENTURIES", "PAGES").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, e := range entries {
		t.Row(e.Name, e.Work, e.Author, e.Centuries, strconv.Itoa(e.Pages))
	}
	return t.String()
}
