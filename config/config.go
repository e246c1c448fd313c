package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/joho/godotenv"
	"github.com/zclconf/go-cty/cty"
)

// Config represents the application configuration.
type Config struct {
	DMXDir     string `hcl:"dmx_dir,optional"`
	OutputPath string `hcl:"output_path,optional"`
	StageDB    string `hcl:"stage_db,optional"`
	ReportPath string `hcl:"report_path,optional"`
	Verbose    bool   `hcl:"verbose,optional"`
}

// Environment variables consulted by ApplyEnv.
const (
	EnvDMXDir  = "DMXLOAD_DMX_DIR"
	EnvOutput  = "DMXLOAD_OUTPUT"
	EnvStageDB = "DMXLOAD_STAGE_DB"
	EnvReport  = "DMXLOAD_REPORT"
	EnvVerbose = "DMXLOAD_VERBOSE"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DMXDir:     "/tmp/initial",
		OutputPath: "initial_data_inserts.sql",
	}
}

// Load reads the configuration from the given HCL file.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(content, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file: %s", diags.Error())
	}

	cfg := DefaultConfig()
	diags = gohcl.DecodeBody(file.Body, nil, cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config: %s", diags.Error())
	}

	return cfg, nil
}

// ApplyEnv loads a .env file from the working directory when present and
// overrides cfg with any DMXLOAD_* variables that are set.
func ApplyEnv(cfg *Config) error {
	_ = godotenv.Load()

	if v := strings.TrimSpace(os.Getenv(EnvDMXDir)); v != "" {
		cfg.DMXDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOutput)); v != "" {
		cfg.OutputPath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStageDB)); v != "" {
		cfg.StageDB = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvReport)); v != "" {
		cfg.ReportPath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvVerbose)); v != "" {
		verbose, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvVerbose, v, err)
		}
		cfg.Verbose = verbose
	}
	return nil
}

// Export writes the configuration to the specified file in HCL format.
func Export(path string, cfg *Config) error {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	root.SetAttributeValue("dmx_dir", cty.StringVal(cfg.DMXDir))
	root.SetAttributeValue("output_path", cty.StringVal(cfg.OutputPath))
	// Empty paths disable staging and the xlsx report.
	root.SetAttributeValue("stage_db", cty.StringVal(cfg.StageDB))
	root.SetAttributeValue("report_path", cty.StringVal(cfg.ReportPath))
	root.SetAttributeValue("verbose", cty.BoolVal(cfg.Verbose))

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	_, err = file.Write(f.Bytes())
	if err != nil {
		return fmt.Errorf("failed to write config to file: %w", err)
	}

	return nil
}
