package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/callwarden/callwarden/pkg/config"
	"github.com/callwarden/callwarden/pkg/domain"
	"github.com/callwarden/callwarden/pkg/logging"
	"github.com/callwarden/callwarden/pkg/screening"
)

// Scenario is a YAML file describing calls to screen offline.
type Scenario struct {
	Calls []ScenarioCall `yaml:"calls"`
}

// ScenarioCall is one incoming call in a scenario.
type ScenarioCall struct {
	Number     string    `yaml:"number"`
	CallerName string    `yaml:"caller_name"`
	ReceivedAt time.Time `yaml:"received_at"`
}

func newScreenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "screen [scenario file]",
		Short: "Run a scenario of calls through the screener and print verdicts",
		Args:  cobra.ExactArgs(1),
		RunE:  runScreen,
	}
}

func runScreen(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfigAndLogger(cmd)
	if err != nil {
		return err
	}

	scenario, err := loadScenario(args[0])
	if err != nil {
		return err
	}

	screener := screening.NewScreener(screening.Options{Logger: logger})
	snapshot := domain.Snapshot{Generation: 1, Screening: cfg.Screening.ToDomain()}
	if err := screener.Apply(cmd.Context(), snapshot); err != nil {
		return fmt.Errorf("apply screening config: %w", err)
	}

	for _, sc := range scenario.Calls {
		call := domain.NewIncomingCall(sc.Number, sc.CallerName)
		if !sc.ReceivedAt.IsZero() {
			call.ReceivedAt = sc.ReceivedAt
		}

		result := screener.ScreenCall(cmd.Context(), call)
		printResult(cmd, call, result)
	}

	return nil
}

func loadScenario(path string) (*Scenario, error) {
	//nolint:gosec // Scenario file path comes from the operator's CLI invocation
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file: %w", err)
	}
	if len(scenario.Calls) == 0 {
		return nil, fmt.Errorf("scenario %s contains no calls", path)
	}

	return &scenario, nil
}

func printResult(cmd *cobra.Command, call domain.Call, result screening.Result) {
	v := result.Verdict
	outcome := "allow"
	switch {
	case v.Reject:
		outcome = "reject"
	case v.Silence:
		outcome = "silence"
	}

	line := fmt.Sprintf("%s  %-8s", call.Number, outcome)
	if v.BlockReason != domain.ReasonNotBlocked {
		line += fmt.Sprintf("  reason=%s source=%s", v.BlockReason, v.SourceFilter)
	}
	if v.SuppressDoNotDisturb {
		line += "  dnd_suppressed"
	}
	if result.TimedOut {
		line += "  timed_out"
	}
	if result.Channel != "" {
		line += "  channel=" + result.Channel
	}
	cmd.Println(line)
}

func loadConfigAndLogger(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	pretty, err := cmd.Flags().GetBool("pretty")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get pretty flag: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	logger := logging.NewLogger(logging.Config{Level: level, Pretty: pretty})
	slog.SetDefault(logger)

	return cfg, logger, nil
}
