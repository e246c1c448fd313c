package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/clarita-9850/dmxload/config"
	"github.com/clarita-9850/dmxload/converters"
	_ "github.com/clarita-9850/dmxload/converters/all"
	"github.com/clarita-9850/dmxload/converters/common"
	"github.com/clarita-9850/dmxload/converters/dmx"
	"github.com/clarita-9850/dmxload/migrate"
	"github.com/clarita-9850/dmxload/report"
)

const driverName = "dmx"

func openLegacy(inputPath string, cfg *common.ConversionConfig) (common.RowProvider, func() error, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}

	provider, err := converters.Open(driverName, file, cfg)
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("failed to initialize converter: %w", err)
	}
	return provider, file.Close, nil
}

// stageFile stages one legacy export into a SQLite database at outputPath.
func stageFile(ctx context.Context, inputPath, outputPath string, opts *converters.ImportOptions) error {
	provider, closeInput, err := openLegacy(inputPath, &common.ConversionConfig{InputPath: inputPath, Verbose: opts.Verbose})
	if err != nil {
		return err
	}
	defer closeInput()

	return stageProvider(ctx, provider, outputPath, opts)
}

// stageTables stages every table parsed during a migration run.
func stageTables(ctx context.Context, tables []*dmx.LegacyTable, outputPath string, opts *converters.ImportOptions) error {
	return stageProvider(ctx, dmx.NewConverter(tables...), outputPath, opts)
}

func stageProvider(ctx context.Context, provider common.RowProvider, outputPath string, opts *converters.ImportOptions) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	outputFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer outputFile.Close()

	return converters.ImportToSQLite(ctx, provider, outputFile, opts)
}

// exportToSQL writes one legacy export as SQL statements to writer.
func exportToSQL(ctx context.Context, inputPath string, writer io.Writer) error {
	provider, closeInput, err := openLegacy(inputPath, &common.ConversionConfig{InputPath: inputPath})
	if err != nil {
		return err
	}
	defer closeInput()

	streamConv, ok := provider.(common.StreamConverter)
	if !ok {
		return fmt.Errorf("converter for %s does not support SQL export", driverName)
	}
	return streamConv.ConvertToSQL(ctx, writer)
}

// migrateAll runs the full load and the optional staging and report steps.
func migrateAll(ctx context.Context, cfg *config.Config, progress io.Writer, logErrors bool) (*migrate.Summary, error) {
	sum, err := migrate.RunFile(ctx, migrate.Options{
		DMXDir:   cfg.DMXDir,
		Progress: progress,
		Verbose:  cfg.Verbose,
	}, cfg.OutputPath)
	if err != nil {
		return sum, err
	}

	if cfg.StageDB != "" {
		fmt.Fprintf(progress, "Staging legacy tables into %s...\n", cfg.StageDB)
		opts := &converters.ImportOptions{LogErrors: logErrors, Verbose: cfg.Verbose}
		if err := stageTables(ctx, sum.Legacy, cfg.StageDB, opts); err != nil {
			return sum, fmt.Errorf("failed to stage legacy tables: %w", err)
		}
	}

	if cfg.ReportPath != "" {
		if err := report.WriteWorkbook(cfg.ReportPath, sum); err != nil {
			return sum, err
		}
		fmt.Fprintf(progress, "Wrote run summary to %s\n", cfg.ReportPath)
	}

	return sum, nil
}

func loadConfig(path string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  dmxload [--log] [--verbose] [--config <file.hcl>]          # Generate the initial data load script")
	fmt.Println("  dmxload [--log] --stage <input.dmx> [output_db]            # Stage one legacy export into SQLite")
	fmt.Println("  dmxload --sql <input.dmx> [output_file]                    # Export one legacy export as SQL statements")
	fmt.Println("  dmxload [--config <file.hcl>] --export-config <file.hcl>   # Write the effective configuration")
}

func main() {
	args := os.Args[1:]
	logMode := false
	verbose := false
	configPath := ""

	// Filter out global flags
	var cleanArgs []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--log":
			logMode = true
		case "--verbose":
			verbose = true
		case "--config":
			if i+1 >= len(args) {
				usage()
				os.Exit(1)
			}
			i++
			configPath = args[i]
		case "-h", "--help":
			usage()
			return
		default:
			cleanArgs = append(cleanArgs, args[i])
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if verbose {
		cfg.Verbose = true
	}

	mode := ""
	if len(cleanArgs) > 0 {
		mode = cleanArgs[0]
	}

	switch mode {
	case "--sql":
		if len(cleanArgs) < 2 {
			fmt.Println("Usage: dmxload --sql <input.dmx> [output_file]")
			os.Exit(1)
		}
		inputPath := cleanArgs[1]

		var writer io.Writer = os.Stdout
		if len(cleanArgs) >= 3 {
			f, err := os.Create(cleanArgs[2])
			if err != nil {
				fmt.Printf("Error creating output file: %v\n", err)
				os.Exit(1)
			}
			defer f.Close()
			writer = f
		}

		if err := exportToSQL(ctx, inputPath, writer); err != nil {
			fmt.Printf("Error exporting SQL: %v\n", err)
			os.Exit(1)
		}

	case "--stage":
		if len(cleanArgs) < 2 {
			fmt.Println("Usage: dmxload --stage <input.dmx> [output_db]")
			os.Exit(1)
		}
		inputPath := cleanArgs[1]
		outputPath := strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".db"
		if len(cleanArgs) >= 3 {
			outputPath = cleanArgs[2]
		}

		opts := &converters.ImportOptions{LogErrors: logMode, Verbose: cfg.Verbose}
		if err := stageFile(ctx, inputPath, outputPath, opts); err != nil {
			fmt.Printf("Error staging file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Successfully staged %s to %s\n", inputPath, outputPath)

	case "--export-config":
		if len(cleanArgs) < 2 {
			fmt.Println("Usage: dmxload --export-config <file.hcl>")
			os.Exit(1)
		}
		if err := config.Export(cleanArgs[1], cfg); err != nil {
			fmt.Printf("Error exporting config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote configuration to %s\n", cleanArgs[1])

	case "":
		fmt.Println("Starting DMX to PostgreSQL INSERT generation...")
		sum, err := migrateAll(ctx, cfg, os.Stdout, logMode)
		if err != nil {
			fmt.Printf("Error generating load script: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nINSERT statements written to: %s\n", cfg.OutputPath)
		fmt.Printf("Success! %d rows, run %s\n", sum.Emitted(), sum.RunID)

	default:
		usage()
		os.Exit(1)
	}
}
