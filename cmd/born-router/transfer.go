package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/born-ml/router/internal/tensor"
)

type transferReport struct {
	RunID     string        `json:"run_id"`
	Bridge    string        `json:"bridge"`
	Kind      string        `json:"kind"`
	DType     string        `json:"dtype"`
	OutDType  string        `json:"out_dtype"`
	Shape     []int         `json:"shape"`
	Input     any           `json:"input"`
	Output    any           `json:"output"`
	Hops      []hop         `json:"hops"`
	Runs      int           `json:"runs"`
	Preserved bool          `json:"preserved"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}

func transferCmd() *cli.Command {
	var (
		kindName  string
		dtypeName string
		values    string
		shapeSpec string
		from      string
		to        string
		roundTrip bool
		runs      int
	)

	return &cli.Command{
		Name:  "transfer",
		Usage: "Upload a tensor, move it to another device and read it back",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "kind",
				Aliases:     []string{"k"},
				Usage:       "tensor kind (float, int, bool)",
				Value:       "float",
				Destination: &kindName,
			},
			&cli.StringFlag{
				Name:        "dtype",
				Usage:       "element type (float32, float64, int32, int64, uint8, bool); defaults by kind",
				Destination: &dtypeName,
			},
			&cli.StringFlag{
				Name:        "values",
				Aliases:     []string{"v"},
				Usage:       "comma separated element values",
				Destination: &values,
			},
			&cli.StringFlag{
				Name:        "shape",
				Usage:       "comma separated extents; empty for a scalar (default: vector of the values)",
				Destination: &shapeSpec,
			},
			&cli.StringFlag{
				Name:        "from",
				Usage:       "source device (e.g. cpu:0)",
				Value:       "cpu:0",
				Destination: &from,
			},
			&cli.StringFlag{
				Name:        "to",
				Usage:       "target device (e.g. mock:1)",
				Value:       "mock:0",
				Destination: &to,
			},
			&cli.BoolFlag{
				Name:        "roundtrip",
				Usage:       "move the tensor back to the source device before reading it",
				Destination: &roundTrip,
			},
			&cli.IntFlag{
				Name:        "runs",
				Usage:       "number of concurrent transfers of the same tensor",
				Value:       1,
				Destination: &runs,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyTransferConfig(cmd, cfg, &from, &to)
			if err := checkOutputMode(outputMode); err != nil {
				return err
			}
			if runs < 1 {
				return fmt.Errorf("--runs must be at least 1, got %d", runs)
			}

			kind, ok := tensor.ParseKind(kindName)
			if !ok {
				return fmt.Errorf("unknown kind %q (expected float, int or bool)", kindName)
			}
			dtype, err := parseDType(dtypeName, kind)
			if err != nil {
				return err
			}
			var shape tensor.Shape
			if cmd.IsSet("shape") {
				if shape, err = tensor.ParseShape(shapeSpec); err != nil {
					return err
				}
			}
			data, err := parseValues(dtype, values, shape)
			if err != nil {
				return err
			}
			src, err := tensor.ParseDeviceID(from)
			if err != nil {
				return err
			}
			dst, err := tensor.ParseDeviceID(to)
			if err != nil {
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

			runID := uuid.NewString()
			log = log.With("run_id", runID)

			req := transferRequest{Kind: kind, Data: data, From: src, To: dst, RoundTrip: roundTrip}
			start := time.Now()
			results, err := runTransfers(ctx, r, req, runs)
			if err != nil {
				return err
			}

			report := transferReport{
				RunID:     runID,
				Bridge:    r.Name(),
				Kind:      kind.String(),
				DType:     data.DType.String(),
				OutDType:  results[0].Data.DType.String(),
				Shape:     data.Shape,
				Input:     decodeValues(data),
				Output:    decodeValues(results[0].Data),
				Hops:      results[0].Hops,
				Runs:      runs,
				Preserved: results[0].Data.Equal(data),
				Elapsed:   time.Since(start),
			}
			log.Info("transfer complete",
				"from", src.String(), "to", dst.String(), "kind", report.Kind,
				"runs", runs, "elapsed", report.Elapsed)

			if outputMode == "json" {
				return writeJSON(cmd.Root().Writer, report)
			}
			printReport(cmd.Root().Writer, report)
			return nil
		},
	}
}

// errRunMismatch is returned when concurrent runs of one transfer disagree.
var errRunMismatch = errors.New("concurrent transfers produced different data")

// runTransfers performs n independent transfers of req concurrently and
// checks that they agree.
func runTransfers(ctx context.Context, r router, req transferRequest, n int) ([]transferResult, error) {
	results := make([]transferResult, n)
	g, ctx := errgroup.WithContext(ctx)
	for i := range n {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.Transfer(req)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := 1; i < n; i++ {
		if !results[i].Data.Equal(results[0].Data) {
			return nil, fmt.Errorf("%w: run %d", errRunMismatch, i)
		}
	}
	return results, nil
}

func printReport(w io.Writer, r transferReport) {
	_, _ = fmt.Fprintf(w, "run:     %s\n", r.RunID)
	_, _ = fmt.Fprintf(w, "bridge:  %s\n", r.Bridge)
	_, _ = fmt.Fprintf(w, "tensor:  %s %s %v\n", r.Kind, r.DType, r.Shape)
	for _, h := range r.Hops {
		_, _ = fmt.Fprintf(w, "hop:     %s -> %s (%s, %s)\n", h.From, h.To, h.Route, h.Elapsed)
	}
	_, _ = fmt.Fprintf(w, "input:   %v\n", r.Input)
	_, _ = fmt.Fprintf(w, "output:  %v (%s)\n", r.Output, r.OutDType)
	_, _ = fmt.Fprintf(w, "runs:    %d\n", r.Runs)
	_, _ = fmt.Fprintf(w, "exact:   %t\n", r.Preserved)
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
