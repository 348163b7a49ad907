// Package config loads scan defaults from a YAML file, layered beneath
// whatever a caller overrides with explicit CLI flags.
package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/lumenscan/lumenscan/processor"
	"github.com/lumenscan/lumenscan/rules"
)

// DefaultFileName is the config file lumenscan looks for in the current
// directory when none is given explicitly.
const DefaultFileName = ".lumenscan.yml"

// Config is the on-disk shape of a lumenscan config file.
type Config struct {
	RulesPath             string   `yaml:"rules_path"`
	ExcludeDirs           []string `yaml:"exclude_dirs"`
	ConfidenceFilter      []string `yaml:"confidence_filter"`
	ContextLines          int      `yaml:"context_lines"`
	Parallel              bool     `yaml:"parallel"`
	Workers               int      `yaml:"workers"`
	FileTimeoutMS         int      `yaml:"file_timeout_ms"`
	UniqueTagsOnly        bool     `yaml:"unique_tags_only"`
	UniqueTagExceptions   []string `yaml:"unique_tag_exceptions"`
	AllowAllTagsInBuild   bool     `yaml:"allow_all_tags_in_build_files"`
	TreatEverythingAsCode bool     `yaml:"treat_everything_as_code"`
	OutputFormat          string   `yaml:"output_format"`
	FailOn                []string `yaml:"fail_on"`
}

// Default returns a Config with the processor's own zero-value defaults
// (DefaultConfidenceFilter, DefaultContextLines, sequential analysis).
func Default() Config {
	return Config{
		ContextLines: processor.DefaultContextLines,
		OutputFormat: "text",
	}
}

// Load reads and parses a YAML config file.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefaultFile loads DefaultFileName from the current directory if it
// exists, returning Default() unchanged (no error) when it doesn't.
func LoadDefaultFile() (Config, error) {
	if _, err := os.Stat(DefaultFileName); err != nil {
		return Default(), nil
	}
	return Load(DefaultFileName)
}

// confidenceNameMasks mirrors rules.ConfidenceMask's string spellings.
var confidenceNameMasks = map[string]rules.ConfidenceMask{
	"low":    rules.ConfidenceMaskLow,
	"medium": rules.ConfidenceMaskMedium,
	"high":   rules.ConfidenceMaskHigh,
}

// ToProcessorOptions translates the YAML-shaped config into the engine's
// own Options type, compiling UniqueTagExceptions as regexes.
func (c Config) ToProcessorOptions() (processor.Options, error) {
	opts := processor.Options{
		ContextLines:             c.ContextLines,
		Parallel:                 c.Parallel,
		Workers:                  c.Workers,
		FileTimeoutMS:            c.FileTimeoutMS,
		AllowAllTagsInBuildFiles: c.AllowAllTagsInBuild,
		TreatEverythingAsCode:    c.TreatEverythingAsCode,
	}

	if len(c.ConfidenceFilter) > 0 {
		var mask rules.ConfidenceMask
		for _, name := range c.ConfidenceFilter {
			m, ok := confidenceNameMasks[name]
			if !ok {
				return opts, fmt.Errorf("unknown confidence filter value %q", name)
			}
			mask |= m
		}
		opts.ConfidenceFilter = mask
	}

	for _, pattern := range c.UniqueTagExceptions {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return opts, fmt.Errorf("compiling unique_tag_exceptions pattern %q: %w", pattern, err)
		}
		opts.UniqueTagExceptions = append(opts.UniqueTagExceptions, re)
	}

	return opts, nil
}

// TagWitness returns an engaged TagWitnessSet when UniqueTagsOnly is set,
// or nil otherwise (the "allow_dup_tags" mode).
func (c Config) TagWitness() *processor.TagWitnessSet {
	if !c.UniqueTagsOnly {
		return nil
	}
	return processor.NewTagWitnessSet()
}
