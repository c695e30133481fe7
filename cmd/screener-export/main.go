// Command screener-export screens a 52-week-high workbook and writes the
// surviving rows to CSV or XLSX.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/han30230/Stock-filtering/internal/app"
	"github.com/han30230/Stock-filtering/internal/config"
	"github.com/han30230/Stock-filtering/internal/exporter"
	"github.com/han30230/Stock-filtering/internal/infrastructure"
	"github.com/han30230/Stock-filtering/internal/middleware"
	"github.com/han30230/Stock-filtering/internal/services"
	api "github.com/han30230/Stock-filtering/pkg/contracts/api/v1"
)

// options holds the parsed command line.
type options struct {
	in    string
	out   string
	sheet string
	req   api.ScreenRequest
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	opts, err := parseFlags(flag.CommandLine, os.Args[1:], cfg)
	if err != nil {
		logger.Error("Invalid arguments", slog.String("error", err.Error()))
		os.Exit(2)
	}

	if err := run(context.Background(), cfg, opts, logger); err != nil {
		logger.Error("Export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// parseFlags reads the command line. Range flags come in min/max pairs and
// only override the defaults when given.
func parseFlags(fs *flag.FlagSet, args []string, cfg *config.Config) (options, error) {
	opts := options{}
	fs.StringVar(&opts.in, "in", cfg.Data.File, "input workbook (.xlsx, .xlsm or .csv) or a directory of them")
	fs.StringVar(&opts.out, "out", "", "output file, .csv or .xlsx (default: timestamped xlsx in the export dir)")
	fs.StringVar(&opts.sheet, "sheet", cfg.Data.Sheet, "sheet to read (default: first sheet)")

	fs.BoolFunc("filters", "enable filtering (true|false)", boolFlag(&opts.req.FiltersEnabled))
	fs.BoolFunc("require-profit", "drop rows with EPS <= 0 (true|false)", boolFlag(&opts.req.RequirePositiveEPS))
	fs.Func("min-price", "minimum closing price", floatFlag(&opts.req.MinPrice))
	fs.Func("industry", "comma separated industries to keep", func(s string) error {
		for _, ind := range strings.Split(s, ",") {
			if ind = strings.TrimSpace(ind); ind != "" {
				opts.req.Industries = append(opts.req.Industries, ind)
			}
		}
		if opts.req.Industries == nil {
			opts.req.Industries = []string{}
		}
		return nil
	})

	ranges := []struct {
		name string
		dst  **api.BoundsRequest
	}{
		{"price", &opts.req.Price},
		{"eps", &opts.req.EPS},
		{"per", &opts.req.PER},
		{"peg", &opts.req.PEG},
	}
	for _, rg := range ranges {
		dst := rg.dst
		fs.Func(rg.name+"-min", "lower bound of the "+rg.name+" range", func(s string) error {
			return setBound(dst, s, true)
		})
		fs.Func(rg.name+"-max", "upper bound of the "+rg.name+" range", func(s string) error {
			return setBound(dst, s, false)
		})
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.in == "" {
		return opts, errors.New("-in is required")
	}
	return opts, nil
}

func run(ctx context.Context, cfg *config.Config, opts options, logger *slog.Logger) error {
	if err := middleware.NewValidator(logger).ValidateStruct(opts.req); err != nil {
		return err
	}

	svc := services.NewScreenerService(services.ScreenerOptions{
		Source:   opts.in,
		Pattern:  cfg.Data.Pattern,
		Sheet:    opts.sheet,
		Defaults: app.ScreenDefaults(cfg.Screen),
		Logger:   logger,
	})
	if _, err := svc.Reload(ctx); err != nil {
		return err
	}

	res, err := svc.Screen(ctx, opts.req.ToParams(svc.Defaults()))
	if err != nil {
		return err
	}

	out := opts.out
	if out == "" {
		out = filepath.Join(cfg.Data.ExportDir, exporter.Filename("", exporter.FormatXLSX, time.Now()))
	}
	if err := exporter.ExportFile(out, res.Table); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	logger.InfoContext(ctx, "export complete",
		slog.String("input", opts.in),
		slog.String("output", out),
		slog.Int("original_rows", res.OriginalRows),
		slog.Int("filtered_rows", res.FilteredRows))
	fmt.Printf("원본 %d개 종목 → 필터 후 %d개 종목: %s\n", res.OriginalRows, res.FilteredRows, out)
	return nil
}

func boolFlag(dst **bool) func(string) error {
	return func(s string) error {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		*dst = &b
		return nil
	}
}

func floatFlag(dst **float64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*dst = &v
		return nil
	}
}

func setBound(dst **api.BoundsRequest, s string, lower bool) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	if *dst == nil {
		*dst = &api.BoundsRequest{}
	}
	if lower {
		(*dst).Min = &v
	} else {
		(*dst).Max = &v
	}
	return nil
}
