// Package main is the entry point for the Nightscout daily report
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mrcode/nightscout-report/internal/chart"
	"github.com/mrcode/nightscout-report/internal/logger"
	"github.com/mrcode/nightscout-report/internal/models"
	"github.com/mrcode/nightscout-report/internal/nightscout"
	"github.com/mrcode/nightscout-report/internal/notifications"
	"github.com/mrcode/nightscout-report/internal/render"
	"github.com/mrcode/nightscout-report/internal/report"
	"github.com/mrcode/nightscout-report/internal/server"
)

const usage = `Usage:
  nightscout-report [-date YYYY-MM-DD] [-out FILE] [-chart FILE] [-notify]
  nightscout-report serve
  nightscout-report check
`

func main() {
	settings, err := models.LoadSettings()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(2)
	}

	args := os.Args[1:]
	command := ""
	if len(args) > 0 && (args[0] == "serve" || args[0] == "check") {
		command, args = args[0], args[1:]
	}

	if command == "serve" {
		// fx handles signals and the graceful shutdown
		server.New(settings).Run()
		return
	}

	log, err := logger.New(settings, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger error:", err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := nightscout.NewClientFromSettings(settings)

	switch command {
	case "check":
		err = check(ctx, client, settings, log)
	default:
		err = build(ctx, args, client, settings, log)
	}
	if err != nil {
		log.Error("command failed", zap.String("command", command), zap.Error(err))
		stop()
		_ = log.Sync()
		os.Exit(1)
	}
}

func check(ctx context.Context, client *nightscout.Client, settings *models.Settings, log *zap.Logger) error {
	status, err := client.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", settings.NightscoutURL, err)
	}
	log.Info("connection ok",
		zap.String("url", settings.NightscoutURL),
		zap.String("name", status.Name),
		zap.String("version", status.Version),
		zap.String("timezone", settings.Location().String()),
	)
	return nil
}

func build(ctx context.Context, args []string, client *nightscout.Client, settings *models.Settings, log *zap.Logger) error {
	service := report.NewService(client, settings.Location(), log.Named("report"))

	fs := flag.NewFlagSet("nightscout-report", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	date := fs.String("date", service.Today(), "report date (YYYY-MM-DD) in the patient's timezone")
	out := fs.String("out", "", "HTML output file (default nightscout_report_<date>.html)")
	chartOut := fs.String("chart", "", "also write the glucose chart as PNG to this file")
	notify := fs.Bool("notify", false, "show a desktop notification with the daily summary")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	data, err := service.Report(ctx, *date)
	if err != nil {
		return err
	}

	if *out == "" {
		*out = fmt.Sprintf("nightscout_report_%s.html", data.Date)
	}
	if err := writeFile(*out, func(f *os.File) error {
		return render.WriteStaticReport(f, data, settings)
	}); err != nil {
		return err
	}
	log.Info("report written", zap.String("file", *out), zap.Int("rows", len(data.Rows)))

	if *chartOut != "" {
		png, err := chart.New(settings).Render(data)
		if err != nil {
			return fmt.Errorf("rendering chart: %w", err)
		}
		if err := os.WriteFile(*chartOut, png, 0o644); err != nil {
			return fmt.Errorf("writing chart: %w", err)
		}
		log.Info("chart written", zap.String("file", *chartOut))
	}

	if *notify {
		// A failed notification does not fail the build
		if err := notifications.NewManager(settings).NotifyReport(data); err != nil {
			log.Warn("notification failed", zap.Error(err))
		}
	}

	return nil
}

func writeFile(name string, write func(*os.File) error) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return f.Close()
}
