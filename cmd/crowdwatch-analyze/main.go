// Command crowdwatch-analyze runs offline trend analysis over a
// recorded session log.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/lcalzada-xor/crowdwatch/internal/adapters/sessionlog"
	"github.com/lcalzada-xor/crowdwatch/internal/analysis"
	"github.com/lcalzada-xor/crowdwatch/internal/core/services/forecast"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	var outPath string
	flag.StringVar(&outPath, "out", "", "Write the report to this file instead of stdout")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <session-log.csv>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	rows, err := sessionlog.ReadFile(flag.Arg(0))
	if err != nil {
		slog.Error("load session log", "error", err)
		os.Exit(1)
	}

	analyzer := analysis.New(forecast.NewLinearForecaster())
	result, err := analyzer.Analyze(rows)
	if err != nil {
		slog.Error("analyze session log", "error", err)
		os.Exit(1)
	}

	report := analysis.RenderText(result)
	if outPath == "" {
		fmt.Print(report)
		return
	}

	if err := os.WriteFile(outPath, []byte(report), 0644); err != nil {
		slog.Error("write report", "error", err)
		os.Exit(1)
	}
	slog.Info("report written", "path", outPath, "samples", result.Rows)
}
