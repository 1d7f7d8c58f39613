package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"

	ics "github.com/arran4/handcal"
	"github.com/arran4/handcal/internal/config"
	"github.com/arran4/handcal/internal/server"
)

// flagKeys fixes the order in which CLI flags become event properties.
var flagKeys = []ics.Key{
	ics.KeySummary,
	ics.KeyDescription,
	ics.KeyDtStart,
	ics.KeyDtEnd,
	ics.KeyLocation,
	ics.KeyUrl,
	ics.KeyOrganizer,
	ics.KeyAttendee,
	ics.KeyAlarm,
}

var flagUsage = map[ics.Key]string{
	ics.KeySummary:     "short summary, usually the title",
	ics.KeyDescription: "longer description of the event",
	ics.KeyDtStart:     `start time, e.g. "2017-02-08 10:00:00" or "now + 1 hour"`,
	ics.KeyDtEnd:       `end time, e.g. "now + 2 hours"`,
	ics.KeyLocation:    "address or description of the location",
	ics.KeyUrl:         "url to attach, including the scheme",
	ics.KeyOrganizer:   "organizer email address",
	ics.KeyAttendee:    "attendee",
	ics.KeyAlarm:       `reminder before the start, e.g. "15M" or "1H"`,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		setupLogger(slog.LevelInfo)
		slog.Error("can't load configuration", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.LogLevel())
	slog.Debug("configuration loaded", "config", cfg)

	app := &cli.App{
		Name:  "handcal",
		Usage: "Build a single calendar event as an .ics document.",
		Commands: []*cli.Command{
			renderCommand(cfg),
			serveCommand(cfg),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level slog.Level) {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func eventFlags() []cli.Flag {
	flags := make([]cli.Flag, 0, len(flagKeys)+1)
	for _, k := range flagKeys {
		flags = append(flags, &cli.StringFlag{Name: string(k), Usage: flagUsage[k]})
	}
	return flags
}

func renderCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "Write the event to stdout or a file.",
		Flags: append(eventFlags(),
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "file to write instead of stdout"},
		),
		Action: func(c *cli.Context) error {
			var props ics.Properties
			for _, k := range flagKeys {
				if c.IsSet(string(k)) {
					props = append(props, ics.P(k, c.String(string(k))))
				}
			}
			e, err := ics.NewEvent(props, cfg.EventOps()...)
			if err != nil {
				return fmt.Errorf("building event: %w", err)
			}

			var w io.Writer = c.App.Writer
			if out := c.String("output"); out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			if err := e.SerializeTo(w); err != nil {
				return fmt.Errorf("writing event: %w", err)
			}
			slog.Debug("event rendered", "properties", len(props), "output", c.String("output"))
			return nil
		},
	}
}

func serveCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve events built from query parameters as downloads.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: cfg.Addr(), Usage: "listen address"},
		},
		Action: func(c *cli.Context) error {
			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			h := server.New(server.Options{
				Filename: cfg.Filename(),
				Charset:  cfg.Charset(),
				EventOps: cfg.EventOps(),
			}, slog.Default(), server.NewMetrics(reg))
			srv := server.NewHTTPServer(c.String("addr"), server.NewRouter(h, reg))

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				slog.Info("app is now running, press Ctrl+C to exit", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("cannot start HTTP server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			slog.Info("Gracefully shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
