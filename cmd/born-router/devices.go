package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/born-ml/router/internal/logger"
)

func newLogger(cmd *cli.Command) (logger.Logger, error) {
	return logger.ForFormat(cmd.Root().ErrWriter, logFormat, logger.ParseLevel(logLevel))
}

func devicesCmd() *cli.Command {
	return &cli.Command{
		Name:  "devices",
		Usage: "List the devices of the CPU and accelerator backends",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := loadConfig(cmd); err != nil {
				return err
			}
			if err := checkOutputMode(outputMode); err != nil {
				return err
			}
			log, err := newLogger(cmd)
			if err != nil {
				return err
			}

			r, err := openRouter(accelerator, log)
			if err != nil {
				return err
			}
			defer r.Close()

			backends := r.Backends()
			if outputMode == "json" {
				return writeJSON(cmd.Root().Writer, backends)
			}
			printBackends(cmd.Root().Writer, r.Name(), backends)
			return nil
		},
	}
}

func printBackends(w io.Writer, name string, backends []backendInfo) {
	_, _ = fmt.Fprintf(w, "%s\n", name)
	for _, b := range backends {
		_, _ = fmt.Fprintf(w, "  %s: %s\n", b.Name, strings.Join(b.Devices, ", "))
		for _, k := range sortedKeys(b.Details) {
			_, _ = fmt.Fprintf(w, "    %-9s %s\n", k+":", b.Details[k])
		}
	}
}
