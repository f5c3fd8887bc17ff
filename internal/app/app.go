package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kmorrow/librarian/internal/api"
	"github.com/kmorrow/librarian/internal/audio"
	"github.com/kmorrow/librarian/internal/capture"
	"github.com/kmorrow/librarian/internal/cli"
	"github.com/kmorrow/librarian/internal/config"
	"github.com/kmorrow/librarian/internal/doctor"
	"github.com/kmorrow/librarian/internal/logging"
	"github.com/kmorrow/librarian/internal/session"
	"github.com/kmorrow/librarian/internal/tui"
	"github.com/kmorrow/librarian/internal/version"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("librarian"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("librarian"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		fmt.Fprintf(r.Stderr, "warning: %s\n", w.Message)
		logger.Warn("config warning", "key", w.Key, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	cfg := cfgLoaded.Config
	client := api.New(cfg.APIBaseURL, requestTimeout(cfg), logger)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandAsk:
		return r.commandAsk(ctx, client, parsed.Query)
	case cli.CommandReindex:
		return r.commandReindex(ctx, client)
	case cli.CommandTUI:
		return r.commandTUI(ctx, cfg, client, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func requestTimeout(cfg config.Config) time.Duration {
	return time.Duration(cfg.RequestTimeoutMS) * time.Millisecond
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		availability := "yes"
		if !device.Available {
			availability = "no"
		}
		muted := "no"
		if device.Muted {
			muted = "yes"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			device.State,
			availability,
			muted,
		)
	}

	return 0
}

func (r Runner) commandAsk(ctx context.Context, client *api.Client, query string) int {
	rec, err := client.Recommend(ctx, query)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	r.printRecommendation(rec, client)
	return 0
}

func (r Runner) printRecommendation(rec api.Recommendation, client *api.Client) {
	fmt.Fprintln(r.Stdout, rec.Title)
	if rec.Metadata != nil {
		var meta []string
		if rec.Metadata.Author != "" {
			meta = append(meta, rec.Metadata.Author)
		}
		if rec.Metadata.Year != 0 {
			meta = append(meta, fmt.Sprintf("%d", rec.Metadata.Year))
		}
		if len(rec.Metadata.Genres) > 0 {
			meta = append(meta, strings.Join(rec.Metadata.Genres, ", "))
		}
		if len(meta) > 0 {
			fmt.Fprintln(r.Stdout, strings.Join(meta, " | "))
		}
	}
	if rec.Blurb != "" {
		fmt.Fprintf(r.Stdout, "\n%s\n", rec.Blurb)
	}
	if rec.Summary != "" && rec.Summary != rec.Blurb {
		fmt.Fprintf(r.Stdout, "\n%s\n", rec.Summary)
	}
	fmt.Fprintf(r.Stdout, "\ncover: %s\n", client.CoverURL(rec.Title))
	for _, c := range rec.Candidates {
		fmt.Fprintf(r.Stdout, "  - %s (%s)\n", c.Title, c.Author)
	}
}

func (r Runner) commandReindex(ctx context.Context, client *api.Client) int {
	if err := client.Reindex(ctx); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(r.Stdout, "reindex complete")
	return 0
}

func (r Runner) commandTUI(ctx context.Context, cfg config.Config, client *api.Client, logger *slog.Logger) int {
	factory := func(ctx context.Context) (capture.Recorder, error) {
		device, err := audio.SelectDevice(ctx, cfg.Audio.Input, cfg.Audio.Fallback)
		if err != nil {
			return nil, err
		}
		return audio.StartCapture(ctx, device)
	}

	capturer := capture.NewController(logger, factory, client)
	ctrl := session.NewController(logger, client, capturer, audio.Player{}, cfg.Speech.Voice)

	program := tea.NewProgram(
		tui.New(ctx, ctrl, cfg.APIBaseURL),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("tui failed", "error", err.Error())
		return 1
	}
	return 0
}
