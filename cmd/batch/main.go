package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/panverse/rules-agent/internal/batch"
	"github.com/panverse/rules-agent/internal/setup"
	setuplog "github.com/panverse/rules-agent/internal/setup/logger"
	"github.com/rs/zerolog/log"
)

func main() {
	startTime := time.Now()

	log.Logger = setuplog.New(os.Getenv("LOG_LEVEL"), true)

	input := flag.String("input", "", "Input file relative path, or - for stdin")
	output := flag.String("output", "", "Output file relative path")
	format := flag.String("format", "jsonl", "Output file format. Supported formats: 'jsonl', 'summary'")
	workers := flag.Int("workers", 5, "Concurrent validation workers")
	dryRun := flag.Bool("dry-run", false, "Parse input without validating")

	flag.Parse()

	if *input == "" {
		log.Fatal().Msg("required flag -input not provided")
	}

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	ctx, cancel := setupGracefulShutdown()
	defer cancel()

	cfg := setup.LoadConfig()

	deps, err := setup.Wire(cfg, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	// Open input file
	var inputFile io.Reader
	if *input == "-" {
		inputFile = os.Stdin
		log.Info().Msg("Reading from stdin")
	} else {
		f, err := os.Open(*input)
		if err != nil {
			log.Fatal().Err(err).Str("file", *input).Msg("Failed to open input file")
		}
		defer f.Close()
		inputFile = f
		log.Info().Str("file", *input).Msg("Reading input file")
	}

	// Read records
	reader := batch.NewReader(inputFile, deps.Logger)
	recordsCh := reader.ReadAll(ctx)

	// Dry run validation
	if *dryRun {
		dryRunAndExit(recordsCh)
	}

	// Open output file
	var outputFile io.Writer
	if *output == "" {
		outputFile = os.Stdout
		log.Info().Msg("Writing to stdout")
	} else {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatal().Err(err).Str("file", *output).Msg("Failed to create output file")
		}
		defer f.Close()
		outputFile = f
		log.Info().Str("file", *output).Msg("Writing to output file")
	}

	// Create writer
	writer, err := batch.NewWriter(outputFile, *format, deps.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create writer")
	}

	// Process with worker pool
	processor := batch.NewProcessor(deps.Dispatcher, *workers, deps.Logger)
	results := processor.Process(ctx, recordsCh)

	threshold := deps.Dispatcher.AcceptableScore()
	writeErrors := 0
	for result := range results {
		if err := writer.Write(result, threshold); err != nil {
			log.Error().Err(err).Int("line", result.LineNumber).Msg("Failed to write result")
			writeErrors++
		}
	}

	if err := writer.Close(); err != nil {
		log.Fatal().Err(err).Msg("Failed to finish output")
	}

	total, errorCount := writer.Stats()
	log.Info().
		Int("total", total).
		Int("errors", errorCount).
		Int("write_errors", writeErrors).
		Dur("duration", time.Since(startTime)).
		Msg("Batch validation complete")
}

func setupGracefulShutdown() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Warn().Msg("Received interrupt signal, finishing current work...")
		cancel()
	}()

	return ctx, cancel
}

func dryRunAndExit(records <-chan batch.InputRecord) {
	total := 0
	errorCount := 0
	for record := range records {
		total++
		if record.Error != nil {
			log.Error().
				Int("line", record.LineNumber).
				Err(record.Error).
				Msg("Parse error")
			errorCount++
		}
	}

	if errorCount > 0 {
		log.Fatal().Int("errors", errorCount).Int("total", total).Msg("Input validation failed")
	}

	log.Info().Int("total", total).Msg("Input validation successful")
	os.Exit(0)
}
