package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumenscan/lumenscan/config"
	"github.com/lumenscan/lumenscan/output"
	"github.com/lumenscan/lumenscan/processor"
	"github.com/lumenscan/lumenscan/rules"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a directory against a rule catalog",
	Long: `Scan walks a project directory and evaluates every applicable rule
against each file it finds, emitting matches in the requested format.

Examples:
  # Scan with a single rules file
  lumenscan scan --rules rules.json --project .

  # Scan with a directory of rule files, writing JSON to a file
  lumenscan scan --rules rules/ --project . --output json --output-file results.json

  # SARIF output for CI/CD integration
  lumenscan scan --rules rules/ --project . --output sarif --output-file results.sarif`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringP("rules", "r", "", "Path to a rule file or directory (required)")
	scanCmd.Flags().StringP("project", "p", ".", "Path to the project directory to scan")
	scanCmd.Flags().StringP("output", "o", "", "Output format: text, json, sarif, or csv (default: text)")
	scanCmd.Flags().StringP("output-file", "f", "", "Write output to file instead of stdout")
	scanCmd.Flags().BoolP("verbose", "v", false, "Show statistics and timing information")
	scanCmd.Flags().Bool("debug", false, "Show detailed debug diagnostics")
	scanCmd.Flags().String("fail-on", "", "Fail with exit code 1 if a finding matches one of these severities")
	scanCmd.Flags().String("config", "", "Path to a YAML config file (default: .lumenscan.yml if present)")
	scanCmd.Flags().Bool("unique-tags-only", false, "Report one match per rule tag instead of every occurrence")
	scanCmd.Flags().Bool("parallel", false, "Analyze files concurrently")
	scanCmd.Flags().Int("workers", 0, "Worker count when --parallel is set (0 selects a default)")
	scanCmd.Flags().Int("context-lines", 0, "Lines of excerpt context on either side of a match (0 selects a default, -1 disables)")
	scanCmd.Flags().Bool("treat-everything-as-code", false, "Ignore comment/code scoping and match everywhere")
	scanCmd.Flags().Bool("skip-tests", false, "Skip files that look like test files")
}

func runScan(cmd *cobra.Command, _ []string) error {
	startTime := time.Now()

	rulesPath, _ := cmd.Flags().GetString("rules")
	projectPath, _ := cmd.Flags().GetString("project")
	outputFormat, _ := cmd.Flags().GetString("output")
	outputFile, _ := cmd.Flags().GetString("output-file")
	verbose, _ := cmd.Flags().GetBool("verbose")
	debug, _ := cmd.Flags().GetBool("debug")
	failOnStr, _ := cmd.Flags().GetString("fail-on")
	configPath, _ := cmd.Flags().GetString("config")
	uniqueTagsOnly, _ := cmd.Flags().GetBool("unique-tags-only")
	parallel, _ := cmd.Flags().GetBool("parallel")
	workers, _ := cmd.Flags().GetInt("workers")
	contextLines, _ := cmd.Flags().GetInt("context-lines")
	treatAsCode, _ := cmd.Flags().GetBool("treat-everything-as-code")
	skipTests, _ := cmd.Flags().GetBool("skip-tests")

	if rulesPath == "" {
		return fmt.Errorf("--rules is required")
	}

	verbosity := output.VerbosityDefault
	if debug {
		verbosity = output.VerbosityDebug
	} else if verbose {
		verbosity = output.VerbosityVerbose
	}
	logger := output.NewLogger(verbosity)

	cfg, err := loadScanConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override whatever the config file set.
	if cmd.Flags().Changed("output") {
		cfg.OutputFormat = outputFormat
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "text"
	}
	if cmd.Flags().Changed("unique-tags-only") {
		cfg.UniqueTagsOnly = uniqueTagsOnly
	}
	if cmd.Flags().Changed("parallel") {
		cfg.Parallel = parallel
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("context-lines") {
		cfg.ContextLines = contextLines
	}
	if cmd.Flags().Changed("treat-everything-as-code") {
		cfg.TreatEverythingAsCode = treatAsCode
	}
	if cmd.Flags().Changed("fail-on") {
		cfg.FailOn = output.ParseFailOn(failOnStr)
	}
	if len(cfg.FailOn) > 0 {
		if err := output.ValidateSeverities(cfg.FailOn); err != nil {
			return err
		}
	}

	opts, err := cfg.ToProcessorOptions()
	if err != nil {
		return err
	}
	tagWitness := cfg.TagWitness()

	if cfg.OutputFormat != "text" && cfg.OutputFormat != "json" && cfg.OutputFormat != "sarif" && cfg.OutputFormat != "csv" {
		return fmt.Errorf("--output must be 'text', 'json', 'sarif', or 'csv'")
	}

	absProjectPath, err := filepath.Abs(projectPath)
	if err != nil {
		return fmt.Errorf("resolving project path: %w", err)
	}

	logger.Progress("Loading rules from %s...", rulesPath)
	catalog, violations, err := loadCatalog(rulesPath)
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}
	for _, v := range violations {
		logger.Warning("rule %s rejected: %s", v.RuleID, v.Reason)
	}
	logger.Statistic("Loaded %d rules", len(catalog.Rules()))

	proc := processor.New(catalog, logger)
	for _, v := range proc.Violations {
		logger.Warning("rule %s rejected during compilation: %s", v.RuleID, v.Reason)
	}

	logger.Progress("Walking %s...", absProjectPath)
	paths, err := walkFiles(absProjectPath, cfg.ExcludeDirs)
	if err != nil {
		return fmt.Errorf("walking project: %w", err)
	}

	var inputs []processor.FileInput
	hadErrors := false
	for _, path := range paths {
		if skipTests && isTest(path) {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Warning("skipping %s: %v", path, err)
			hadErrors = true
			continue
		}
		if looksBinary(content) {
			continue
		}
		rel, err := filepath.Rel(absProjectPath, path)
		if err != nil {
			rel = path
		}
		inputs = append(inputs, processor.FileInput{
			Meta:    processor.FileMetadata{Name: rel},
			Info:    resolveInfo(path),
			Content: string(content),
		})
	}
	logger.Statistic("Scanning %d files", len(inputs))

	results := proc.AnalyzeFiles(context.Background(), inputs, tagWitness, opts)

	var allMatches []rules.MatchRecord
	for _, r := range results {
		if r.Result.Code != processor.Completed {
			logger.Warning("%s: analysis %s", r.Name, r.Result.Code)
			hadErrors = hadErrors || r.Result.Code == processor.TimedOut
		}
		for _, m := range r.Result.Matches {
			logger.Finding(m)
		}
		allMatches = append(allMatches, r.Result.Matches...)
	}

	var outputWriter *os.File
	if outputFile != "" {
		outputWriter, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer outputWriter.Close()
	}

	summary := output.BuildSummary(allMatches, len(catalog.Rules()), len(inputs), time.Since(startTime))
	logger.SeverityBreakdown(summary.BySeverity)
	if err := writeReport(cfg.OutputFormat, outputWriter, allMatches, summary, absProjectPath, len(catalog.Rules())); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	exitCode := output.DetermineExitCode(allMatches, cfg.FailOn, hadErrors)
	if exitCode != output.ExitCodeSuccess {
		os.Exit(int(exitCode))
	}
	return nil
}

func loadScanConfig(explicitPath string) (config.Config, error) {
	if explicitPath != "" {
		return config.Load(explicitPath)
	}
	return config.LoadDefaultFile()
}

func loadCatalog(path string) (*rules.Catalog, []rules.Violation, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, err
	}
	if info.IsDir() {
		return rules.LoadRulesFromDirectory(path)
	}
	return rules.LoadRulesFromFile(path)
}

func writeReport(format string, file *os.File, matches []rules.MatchRecord, summary *output.Summary, target string, rulesExecuted int) error {
	var writer = os.Stdout
	if file != nil {
		writer = file
	}

	switch format {
	case "text":
		return output.NewTextFormatterWithWriter(writer).Format(matches, summary)
	case "json":
		scanInfo := output.ScanInfo{Target: target, Version: Version, Duration: summary.Duration, RulesExecuted: rulesExecuted}
		return output.NewJSONFormatterWithWriter(writer).Format(matches, summary, scanInfo)
	case "sarif":
		return output.NewSARIFFormatterWithWriter(writer).Format(matches)
	case "csv":
		return output.NewCSVFormatterWithWriter(writer).Format(matches)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
