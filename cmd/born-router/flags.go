package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

var (
	configFile  string
	logLevel    string
	logFormat   string
	accelerator string
	mockDevices int
	mockLatency time.Duration
	outputMode  string
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml",
			Value:       configPath(),
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.StringFlag{
			Name:        "accelerator",
			Aliases:     []string{"a"},
			Usage:       "accelerator backend paired with the CPU (mock, webgpu)",
			Value:       "mock",
			Destination: &accelerator,
		},
		&cli.IntFlag{
			Name:        "mock-devices",
			Usage:       "number of mock accelerator devices",
			Value:       2,
			Destination: &mockDevices,
		},
		&cli.DurationFlag{
			Name:        "mock-latency",
			Usage:       "simulated latency per mock command",
			Destination: &mockLatency,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "output format (text, json)",
			Value:       "text",
			Destination: &outputMode,
		},
	}
}
