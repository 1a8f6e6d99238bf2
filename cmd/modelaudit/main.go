// Package main provides the CLI entry point for modelaudit.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/auditkit/modelaudit/pkg/modelaudit"
	"github.com/auditkit/modelaudit/pkg/modelaudit/detect"
	"github.com/auditkit/modelaudit/pkg/modelaudit/narrative"
	"github.com/auditkit/modelaudit/pkg/modelaudit/output"
)

var (
	outputPath   string
	pretty       bool
	datatapePath string
	runLogPath   string
	promptPath   string
	policyPath   string
	mode         string
	verbose      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "modelaudit [model.xlsx]",
		Short: "Structural audit of spreadsheet-based financial models",
		Long: `modelaudit reconstructs a workbook's calculation structure as a
dependency graph and runs deterministic structural checks against it:
circular references, hard-coded plugs, balance sheet imbalances, and
broken or external references.`,
		Args: cobra.ExactArgs(1),
		RunE: run,
	}

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Report JSON file path (default: stdout)")
	rootCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	rootCmd.Flags().StringVar(&datatapePath, "datatape", "", "Write the findings datatape xlsx to this path")
	rootCmd.Flags().StringVar(&runLogPath, "runlog", "", "Append run history to this CSV file")
	rootCmd.Flags().StringVar(&promptPath, "prompt", "", "Write the narrative summarizer prompt to this path")
	rootCmd.Flags().StringVar(&policyPath, "policy", "", "Label-matching policy YAML overlay")
	rootCmd.Flags().StringVar(&mode, "mode", "full", "Audit mode: full, values")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	var auditMode modelaudit.Mode
	switch mode {
	case "full":
		auditMode = modelaudit.ModeFull
	case "values":
		auditMode = modelaudit.ModeValuesOnly
	default:
		return fmt.Errorf("invalid mode: %s (must be full or values)", mode)
	}

	logger, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("logger setup failed: %w", err)
	}
	defer logger.Sync()

	opts := modelaudit.Options{
		Mode:   auditMode,
		Logger: logger,
	}
	if policyPath != "" {
		policy, err := detect.LoadPolicy(policyPath)
		if err != nil {
			return fmt.Errorf("policy load failed: %w", err)
		}
		opts.Policy = &policy
	}

	report, err := modelaudit.Run(context.Background(), inputPath, opts)
	if err != nil {
		return fmt.Errorf("audit failed: could not read file: %w", err)
	}

	jsonData, err := output.ToJSON(report, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else {
		fmt.Println(string(jsonData))
	}

	if datatapePath != "" {
		if err := output.WriteDatatape(report, datatapePath); err != nil {
			return fmt.Errorf("failed to write datatape: %w", err)
		}
	}
	if runLogPath != "" {
		if err := output.AppendRunLog(report, runLogPath); err != nil {
			return fmt.Errorf("failed to append run log: %w", err)
		}
	}
	if promptPath != "" {
		prompt := narrative.FindingsPrompt(report)
		if err := os.WriteFile(promptPath, []byte(prompt), 0644); err != nil {
			return fmt.Errorf("failed to write narrative prompt: %w", err)
		}
	}

	fmt.Fprintln(os.Stderr, output.Summary(report))
	return nil
}

// newLogger builds the CLI logger: errors only by default so the JSON
// report owns stdout, full debug output with --verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stderr"}
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	return config.Build()
}
