package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/sadopc/calgrid/internal/api"
	"github.com/sadopc/calgrid/internal/client"
	"github.com/sadopc/calgrid/internal/config"
	"github.com/sadopc/calgrid/internal/export"
	"github.com/sadopc/calgrid/internal/store"
	"github.com/sadopc/calgrid/internal/tui"
)

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "calgrid",
		Usage: "Month, week and day calendar for the terminal, with an HTTP event store.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to config.yaml", EnvVars: []string{"CALGRID_CONFIG"}},
			&cli.StringFlag{Name: "db", Usage: "SQLite database path", EnvVars: []string{"CALGRID_DB"}},
			&cli.StringFlag{Name: "api", Usage: "calgrid server URL; empty uses the local database", EnvVars: []string{"CALGRID_API_URL"}},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn or error", EnvVars: []string{"CALGRID_LOG_LEVEL"}},
		},
		Action: runTUI,
		Commands: []*cli.Command{
			tuiCommand(),
			serveCommand(),
			exportCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("calgrid failed", "error", err)
		os.Exit(1)
	}
}

func tuiCommand() *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Open the terminal calendar (default).",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-file", Usage: "debug log file; defaults to calgrid.log next to the config", EnvVars: []string{"CALGRID_LOG_FILE"}},
		},
		Action: runTUI,
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the event store over HTTP.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "listen", Usage: "listen address, e.g. 127.0.0.1:8080", EnvVars: []string{"CALGRID_LISTEN"}},
		},
		Action: func(c *cli.Context) error {
			logger := setupLogger(c.String("log-level"), os.Stderr)

			cfg, _, err := loadConfig(c)
			if err != nil {
				return err
			}
			if c.IsSet("listen") {
				cfg.Listen = c.String("listen")
			}

			s, err := store.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer s.Close()
			logger.Info("database opened", "path", cfg.DBPath)

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return api.NewServer(s, logger).ListenAndServe(ctx, cfg.Listen)
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export events as CSV, JSON or iCalendar.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "ics", Usage: "csv, json or ics"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file; - writes to stdout; default is a timestamped file in $HOME"},
			&cli.StringFlag{Name: "from", Usage: "first date to include (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "to", Usage: "last date to include (YYYY-MM-DD)"},
		},
		Action: func(c *cli.Context) error {
			logger := setupLogger(c.String("log-level"), os.Stderr)

			format, err := export.ParseFormat(c.String("format"))
			if err != nil {
				return err
			}
			filter, err := parseRange(c.String("from"), c.String("to"))
			if err != nil {
				return err
			}

			cfg, _, err := loadConfig(c)
			if err != nil {
				return err
			}
			es, closeStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			ctx, cancel := context.WithTimeout(c.Context, 30*time.Second)
			defer cancel()
			events, err := es.List(ctx, filter)
			if err != nil {
				return fmt.Errorf("list events: %w", err)
			}

			out := c.String("out")
			if out == "-" {
				return export.Write(os.Stdout, format, events)
			}
			if out == "" {
				out = export.DefaultFilename(format, time.Now())
			}
			if err := export.ToFile(format, events, out); err != nil {
				return err
			}
			logger.Info("export written", "path", out, "format", string(format), "events", len(events))
			return nil
		},
	}
}

func runTUI(c *cli.Context) error {
	cfg, cfgPath, err := loadConfig(c)
	if err != nil {
		return err
	}

	logPath := c.String("log-file")
	if logPath == "" {
		logPath = filepath.Join(filepath.Dir(cfgPath), "calgrid.log")
	}
	// The alternate screen owns stdout and stderr, so logs go to a file.
	f, err := tea.LogToFile(logPath, "calgrid")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	logger := setupLogger(c.String("log-level"), f)

	es, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	logger.Info("starting terminal client", "api", cfg.APIURL, "db", cfg.DBPath)

	app := tui.NewApp(es, *cfg, cfgPath, logger)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(c.Context))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run terminal client: %w", err)
	}
	return nil
}

// loadConfig reads the YAML config and applies flag and environment
// overrides on top of it.
func loadConfig(c *cli.Context) (*config.Config, string, error) {
	path := c.String("config")
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, "", fmt.Errorf("resolve config path: %w", err)
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("load config %s: %w", path, err)
	}

	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("api") {
		cfg.APIURL = c.String("api")
	}
	if cfg.DBPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, "", fmt.Errorf("resolve database path: %w", err)
		}
		cfg.DBPath = p
	}
	return cfg, path, nil
}

// openStore returns the HTTP client when a server URL is configured and the
// local database otherwise.
func openStore(cfg *config.Config) (store.EventStore, func(), error) {
	if cfg.APIURL != "" {
		cl, err := client.New(cfg.APIURL, nil)
		if err != nil {
			return nil, nil, err
		}
		return cl, func() {}, nil
	}

	s, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return s, func() { s.Close() }, nil
}

func parseRange(from, to string) (store.EventFilter, error) {
	var f store.EventFilter
	if from == "" && to == "" {
		return f, nil
	}
	if from == "" || to == "" {
		return f, fmt.Errorf("--from and --to must be given together")
	}
	start, err := time.Parse(store.DateLayout, from)
	if err != nil {
		return f, fmt.Errorf("--from: %w", err)
	}
	end, err := time.Parse(store.DateLayout, to)
	if err != nil {
		return f, fmt.Errorf("--to: %w", err)
	}
	f.From, f.To = &start, &end
	return f, nil
}

func setupLogger(level string, w io.Writer) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}
