package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"timelapse/internal/config"
	"timelapse/internal/hardware"
	"timelapse/internal/logger"
	"timelapse/internal/repository"
	"timelapse/internal/service"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("timelapse", pflag.ContinueOnError)
	config.RegisterFlags(flags)
	if err := flags.Parse(args); err != nil {
		return 2
	}
	legacyLevel(flags)

	// load config.yml
	cfg, err := config.Load(flags)
	if err != nil {
		logger.Get(logger.ErrorLevel).Errorw("error reading config", "err", err)
		return 1
	}

	// init logger
	log := logger.Get(cfg.LogLevel())
	defer func() { _ = log.Sync() }()

	// wire dependencies
	events := hardware.NewEventQueue()
	camera := hardware.NewSimulator(events, hardware.SimulatorOptions{
		Width:  cfg.Frame.Width,
		Height: cfg.Frame.Height,
	})
	repos := repository.NewRepository(afero.NewOsFs(), cfg.Storage.Dir)
	services := service.NewService(cfg, camera, events, repos, log)

	// stop the loop on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := services.FixFocus(ctx); err != nil {
		log.Errorw("failed to focus lens", "err", err)
		_ = camera.Stop()
		return 1
	}

	log.Infow("starting capture loop",
		"end_date", cfg.EndDate.String(),
		"day_interval", cfg.Interval.Day,
		"night_interval", cfg.Interval.Night,
		"storage", cfg.Storage.Dir)

	stats := services.Run(ctx)

	log.Infow("capture loop finished",
		"iterations", stats.Iterations,
		"pictures", stats.Pictures,
		"adjustments", stats.Adjustments,
		"capture_failures", stats.CaptureFailures,
		"save_failures", stats.SaveFailures,
		"hardware_errors", stats.HardwareErrors)
	return 0
}

// legacyLevel accepts the old positional numeric level ("1" trace, "2" debug)
// when --log-level was not given.
func legacyLevel(flags *pflag.FlagSet) {
	if flags.Changed("log-level") || flags.NArg() == 0 {
		return
	}
	_ = flags.Set("log-level", string(logger.ParseLevel(flags.Arg(0))))
}
