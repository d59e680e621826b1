package cmd

import (
	"github.com/removethebg/rtbg/internal/commander"
	"github.com/removethebg/rtbg/internal/config"
	"github.com/removethebg/rtbg/internal/logger"
	"github.com/removethebg/rtbg/internal/runner"
)

// AppConfig holds all the shared configuration and dependencies
type AppConfig struct {
	Config     *config.Config
	ConfigPath string
	Logger     logger.Logger
	Commander  commander.Commander
}

// NewAppConfig creates a new configuration instance
func NewAppConfig(log logger.Logger, c commander.Commander) *AppConfig {
	return &AppConfig{
		Config:    config.DefaultConfig(),
		Logger:    log,
		Commander: c,
	}
}

// Runner returns a step runner logging through the app logger.
func (a *AppConfig) Runner() *runner.Runner {
	return runner.New(a.Commander, a.Logger)
}
