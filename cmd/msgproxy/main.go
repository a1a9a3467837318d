// Command msgproxy runs a configurable message pipeline: a source stage,
// any number of codec/transform stages, and a sink stage, wired from
// command-line tokens or a named preset.
//
// Usage:
//
//	msgproxy [flags] <stage> [<stage> ...]
//	msgproxy [flags] -preset <name>
//
// Each <stage> is "name" or "name:options", e.g. "tcp:0.0.0.0:9000",
// "+length", "-lines". Run with -list-stages for the full stage list.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/vpbank/msgproxy/pkg/msgproxy/config"
	"github.com/vpbank/msgproxy/pkg/msgproxy/engine"
	"github.com/vpbank/msgproxy/pkg/msgproxy/factory"
	"github.com/vpbank/msgproxy/pkg/msgproxy/specparse"
	"github.com/vpbank/msgproxy/pkg/msgproxy/stage"

	// Blank imports register every transport and codec stage name with
	// the factory package at init time — this is the only place in the
	// module that needs to know every stage package exists.
	_ "github.com/vpbank/msgproxy/codec/delim"
	_ "github.com/vpbank/msgproxy/codec/escape"
	_ "github.com/vpbank/msgproxy/codec/length"
	_ "github.com/vpbank/msgproxy/codec/passthrough"
	_ "github.com/vpbank/msgproxy/codec/ratelimit"
	_ "github.com/vpbank/msgproxy/codec/urlenc"
	_ "github.com/vpbank/msgproxy/codec/xmljson"
	_ "github.com/vpbank/msgproxy/transport/file"
	_ "github.com/vpbank/msgproxy/transport/folder"
	_ "github.com/vpbank/msgproxy/transport/nats"
	_ "github.com/vpbank/msgproxy/transport/stdio"
	_ "github.com/vpbank/msgproxy/transport/tcp"
	_ "github.com/vpbank/msgproxy/transport/udp"
	_ "github.com/vpbank/msgproxy/transport/zmq"
)

func main() {
	os.Exit(run())
}

// Exit codes: 0 normal termination (source exhausted), 1 configuration
// error (bad flags, unknown stage, malformed pipeline — never started),
// 2 runtime error (a stage returned a fatal error once the pipeline was
// already running).
func run() int {
	var (
		logLevel   string
		logFmt     string
		presetFile string
		presetName string
		listFlag   bool
	)

	flag.StringVar(&logLevel, "log.level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&logFmt, "log.fmt", "json", "Log format: json, text")
	flag.StringVar(&presetFile, "config", "", "Path to a pipeline-presets YAML file")
	flag.StringVar(&presetName, "preset", "", "Named pipeline preset to run, read from -config")
	flag.BoolVar(&listFlag, "list-stages", false, "Print every registered stage name and exit")
	flag.Parse()

	if listFlag {
		for _, name := range sortedNames() {
			fmt.Println(name)
		}
		return 0
	}

	logger, err := buildLogger(logLevel, logFmt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "msgproxy: %v\n", err)
		return 1
	}

	tokens, err := resolveTokens(presetFile, presetName, flag.Args())
	if err != nil {
		logger.Error("msgproxy: configuration error", "error", err.Error())
		return 1
	}

	pipe, err := buildPipeline(tokens, logger)
	if err != nil {
		logger.Error("msgproxy: failed to build pipeline", "error", err.Error())
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("msgproxy: running", "stages", tokens)
	if err := pipe.Run(ctx); err != nil {
		logger.Error("msgproxy: fatal error — run loop terminated", "error", err.Error())
		return 2
	}
	logger.Info("msgproxy: done")
	return 0
}

func resolveTokens(presetFile, presetName string, args []string) ([]string, error) {
	if presetName == "" {
		if len(args) < 2 {
			return nil, fmt.Errorf("need at least 2 stages (a source and a sink), got %d", len(args))
		}
		return args, nil
	}
	if presetFile == "" {
		return nil, fmt.Errorf("-preset requires -config <presets.yaml>")
	}
	presets, err := config.LoadPresets(presetFile)
	if err != nil {
		return nil, err
	}
	tokens, err := presets.Lookup(presetFile, presetName)
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func buildPipeline(tokens []string, logger *slog.Logger) (*engine.Pipeline, error) {
	parsed, err := specparse.Tokenize(tokens)
	if err != nil {
		return nil, err
	}

	stages := make([]stage.Stage, 0, len(parsed))
	for i, tok := range parsed {
		s, err := factory.Build(i, tok, logger)
		if err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i, tok, err)
		}
		stages = append(stages, s)
	}

	return engine.New(stages, logger)
}

func sortedNames() []string {
	names := factory.Names()
	sort.Strings(names)
	return names
}

func buildLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q (expected debug|info|warn|error)", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler

	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q (expected json|text)", format)
	}

	return slog.New(handler), nil
}
