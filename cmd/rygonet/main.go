package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/klippa-app/go-pdfium/webassembly"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/aSipiere/rygonet"
)

func main() {
	cmd := &cli.Command{
		Name:  "rygonet",
		Usage: "Extract unit rosters from army book PDFs",
		Commands: []*cli.Command{
			{
				Name:  "extract",
				Usage: "Extract units from a quick unit reference PDF",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "pdf",
						Aliases:  []string{"i"},
						Usage:    "Input PDF file path",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output JSON file path (default: stdout)",
					},
					&cli.StringFlag{
						Name:     "faction-id",
						Usage:    "Faction id, e.g. fsa",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "faction-name",
						Usage:    "Faction display name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "version",
						Usage: "Source document version",
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Faction description",
					},
					&cli.IntFlag{
						Name:  "dpi",
						Usage: "Render resolution for OCR",
						Value: int64(rygonet.DefaultConfig().DPI),
					},
					&cli.BoolFlag{
						Name:  "debug",
						Usage: "Enable debug logging",
					},
				},
				Action: extractPDF,
			},
			{
				Name:  "transform",
				Usage: "Convert an armybuilder library JS file to a roster",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Library JS file path, e.g. federalLibrary.js",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output JSON file path (default: stdout)",
					},
				},
				Action: transformLibrary,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func extractPDF(_ context.Context, cmd *cli.Command) error {
	// Initialise pdfium
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to initialise pdfium: %w", err)
	}
	defer pool.Close()

	instance, err := pool.GetInstance(time.Second * 30)
	if err != nil {
		return fmt.Errorf("failed to get pdfium instance: %w", err)
	}

	config := rygonet.DefaultConfig()
	config.DPI = int(cmd.Int("dpi"))

	extractor := rygonet.NewExtractorWithConfig(instance, config)

	logger, err := buildLogger(cmd.Bool("debug"))
	if err != nil {
		return err
	}
	defer logger.Sync()
	extractor.SetLogger(logger)

	roster, err := extractor.BuildRoster(cmd.String("pdf"), rygonet.Faction{
		ID:          cmd.String("faction-id"),
		Name:        cmd.String("faction-name"),
		Version:     cmd.String("version"),
		Description: cmd.String("description"),
	})
	if err != nil {
		return err
	}

	return writeJSON(cmd.String("out"), roster)
}

func transformLibrary(_ context.Context, cmd *cli.Command) error {
	inputPath := cmd.String("input")

	faction, err := rygonet.FactionForLibrary(inputPath)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read library file: %w", err)
	}

	roster, err := rygonet.TransformLibrary(content, faction)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Transformed %d units from %s\n", len(roster.Units), faction.Name)
	return writeJSON(cmd.String("out"), roster)
}

func buildLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

func writeJSON(outputPath string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	data = append(data, '\n')

	if outputPath == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Written to %s\n", outputPath)
	return nil
}
