// Command hullview walks a portal-connected hull scene in first person.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/hullgate/internal/config"
	"github.com/Faultbox/hullgate/internal/logger"
	"github.com/Faultbox/hullgate/internal/session"
	"github.com/Faultbox/hullgate/internal/viewer"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== hullview ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	sc, err := session.LoadScene(cfg.Scene.Path)
	if err != nil {
		logger.Error("failed to load scene", zap.String("scene", cfg.Scene.Path), zap.Error(err))
		os.Exit(1)
	}
	if err := sc.Validate(); err != nil {
		logger.Error("invalid scene", zap.Error(err))
		os.Exit(1)
	}

	sess, err := session.New(sc, session.OptionsFromConfig(cfg))
	if err != nil {
		logger.Error("failed to start session", zap.Error(err))
		os.Exit(1)
	}

	v, err := viewer.New(cfg, sess)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	if err := v.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
