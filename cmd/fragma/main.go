// Command fragma opens a window and renders the default scene: a compute pass copied into the frame
// followed by a textured quad seen through an orbit camera.
package main

import (
	"flag"
	"os"

	"github.com/Kuowrk/fragma/engine"
	"github.com/Kuowrk/fragma/engine/config"
	"github.com/Kuowrk/fragma/engine/logger"
	"github.com/pkg/profile"
)

func main() {
	var (
		configPath = flag.String("config", "", "path of a TOML configuration file")
		logLevel   = flag.String("log-level", "", "log level override (debug, info, warn, error)")
	)
	flag.Parse()

	if err := run(*configPath, *logLevel); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(configPath, logLevel string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		return err
	}

	if cfg.Profile.CPU {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	}

	e, err := engine.NewEngine(cfg, engine.WithProfiling(cfg.Profile.Stats))
	if err != nil {
		return err
	}
	defer e.Release()

	logger.Infof("rendering %dx%d, press R to toggle continuous redraw, V to toggle vsync, Esc to quit",
		cfg.Window.Width, cfg.Window.Height)
	return e.Run()
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		cfg := config.Default()
		cfg.ApplyEnv()
		return cfg, cfg.Validate()
	}
	return config.Load(path)
}
