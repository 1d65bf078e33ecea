package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"golang-backtest/internal/dto"
	"golang-backtest/internal/repository"
	"golang-backtest/internal/service"
	"golang-backtest/pkg/logger"
	"golang-backtest/pkg/utils"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var backtestFlags struct {
	strategies []string
	start      string
	end        string
	compare    bool
	output     string
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a backtest from strategy YAML files and print the result as JSON",
	Example: `  golang-backtest backtest --strategy momentum.yaml --start 2023-01-01 --end 2023-12-31
  golang-backtest backtest --strategy a.yaml --strategy b.yaml --compare --start 2023-01-01 --end 2023-12-31`,
	RunE: runBacktestCmd,
}

func init() {
	backtestCmd.Flags().StringArrayVarP(&backtestFlags.strategies, "strategy", "s", nil, "strategy YAML file (repeatable)")
	backtestCmd.Flags().StringVar(&backtestFlags.start, "start", "", "first simulated date, YYYY-MM-DD")
	backtestCmd.Flags().StringVar(&backtestFlags.end, "end", "", "last simulated date, YYYY-MM-DD")
	backtestCmd.Flags().BoolVar(&backtestFlags.compare, "compare", false, "compare all strategies against a buy & hold benchmark")
	backtestCmd.Flags().StringVarP(&backtestFlags.output, "output", "o", "", "write JSON here instead of stdout")
	_ = backtestCmd.MarkFlagRequired("strategy")
	_ = backtestCmd.MarkFlagRequired("start")
	_ = backtestCmd.MarkFlagRequired("end")
}

func runBacktestCmd(cmd *cobra.Command, args []string) error {
	start, err := utils.ParseDate(backtestFlags.start)
	if err != nil {
		return err
	}
	end, err := utils.ParseDate(backtestFlags.end)
	if err != nil {
		return err
	}
	if !backtestFlags.compare && len(backtestFlags.strategies) > 1 {
		return fmt.Errorf("%d strategies given, use --compare to run more than one", len(backtestFlags.strategies))
	}

	validator := goValidator.New()
	entries := make([]dto.ComparisonEntry, 0, len(backtestFlags.strategies))
	for _, path := range backtestFlags.strategies {
		entry, err := loadStrategyFile(path, validator)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx, false)
	if err != nil {
		return err
	}
	defer func() {
		if err := appDep.Close(); err != nil {
			log.Printf("Failed to close app dependency: %v", err)
		}
	}()

	repo := repository.NewRepository(appDep.cfg, appDep.cache, nil, appDep.log, appDep.metrics)
	backtests := service.NewBacktestService(appDep.cfg, appDep.log, repo.MarketDataRepo, appDep.metrics)

	progress := func(p dto.Progress) {
		appDep.log.Info("Backtest progress",
			logger.StringField("phase", string(p.Phase)),
			logger.IntField("current", p.Current),
			logger.IntField("total", p.Total),
			logger.StringField("detail", p.Message),
		)
	}

	var result interface{}
	if backtestFlags.compare {
		result, err = backtests.RunComparison(ctx, entries, start, end, progress)
	} else {
		result, err = backtests.RunBacktest(ctx, entries[0].Config, start, end, progress)
	}
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if backtestFlags.output != "" {
		f, err := os.Create(backtestFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// loadStrategyFile reads one strategy config. The label is the strategy name,
// or the file name without extension when the name is empty.
func loadStrategyFile(path string, validator *goValidator.Validate) (dto.ComparisonEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return dto.ComparisonEntry{}, fmt.Errorf("failed to read strategy file: %w", err)
	}

	var cfg dto.StrategyConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return dto.ComparisonEntry{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return dto.ComparisonEntry{}, err
	}
	if err := validator.Struct(cfg); err != nil {
		return dto.ComparisonEntry{}, fmt.Errorf("invalid strategy %s: %w", path, err)
	}

	label := cfg.Name
	if label == "" {
		label = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		cfg.Name = label
	}
	return dto.ComparisonEntry{Label: label, Config: cfg}, nil
}
