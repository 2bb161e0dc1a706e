// Package main is the entry point for the interactive pick-alpha window.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/Faultbox/pickalpha/internal/app"
	"github.com/Faultbox/pickalpha/internal/config"
	"github.com/Faultbox/pickalpha/internal/logger"
)

func main() {
	runtime.LockOSThread()

	flags := config.RegisterFlags(flag.CommandLine)
	flags.RegisterWindowFlags(flag.CommandLine)
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pickalpha [options] [image]")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Pick Alpha ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	a, err := app.New(cfg, logger.Named("app"))
	if err != nil {
		logger.Error("failed to start", zap.Error(err))
		os.Exit(1)
	}
	defer a.Close()

	if path := flag.Arg(0); path != "" {
		if err := a.Open(path); err != nil {
			logger.Error("failed to open image", zap.String("path", path), zap.Error(err))
		}
	}

	a.Run()
	logger.Info("closed normally")
}
