package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"llmgate/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd(os.LookupEnv, startGateway).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "llmgate:", err)
		os.Exit(1)
	}
}

// flagValues mirrors the command-line flags; only flags the user set
// override file and environment values.
type flagValues struct {
	configPath     string
	addr           string
	modelPath      string
	engine         string
	engineURL      string
	llamaBin       string
	llamaCtx       int
	llamaThreads   int
	llamaNGL       int
	logLevel       string
	logFormat      string
	maxBodyBytes   int64
	genTimeoutSecs int
	cors           bool
	corsOrigins    string
}

// startGateway builds the root logger from cfg and runs the gateway until
// ctx is canceled.
func startGateway(ctx context.Context, cfg config.Config) error {
	log, err := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		return err
	}
	return run(ctx, cfg, log)
}

func newRootCmd(lookup func(string) (string, bool), start func(context.Context, config.Config) error) *cobra.Command {
	var fv flagValues
	root := &cobra.Command{
		Use:           "llmgate",
		Short:         "Local LLM inference gateway",
		Long:          "llmgate loads one local model and serves /generate, /reload-model, /health and /system over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, fv, lookup)
			if err != nil {
				return err
			}
			return start(cmd.Context(), cfg)
		},
	}
	f := root.Flags()
	f.StringVarP(&fv.configPath, "config", "c", "", "Config file (.yaml, .yml, .json or .toml)")
	f.StringVar(&fv.addr, "addr", config.DefaultAddr, "HTTP listen address")
	f.StringVar(&fv.modelPath, "model-path", "", "Model file, directory of *.gguf files, or model name for --engine=server")
	f.StringVar(&fv.engine, "engine", config.DefaultEngine, "Inference engine: llama|server|spawn")
	f.StringVar(&fv.engineURL, "engine-url", "", "Base URL of an OpenAI-compatible runtime (--engine=server)")
	f.StringVar(&fv.llamaBin, "llama-bin", "", "Path to llama-server (--engine=spawn); discovered when empty")
	f.IntVar(&fv.llamaCtx, "llama-ctx", 0, "Context size (0 = engine default)")
	f.IntVar(&fv.llamaThreads, "llama-threads", 0, "CPU threads (0 = engine default)")
	f.IntVar(&fv.llamaNGL, "llama-ngl", 0, "Layers offloaded to GPU (--engine=spawn)")
	f.StringVar(&fv.logLevel, "log-level", config.DefaultLogLevel, "Log level: debug|info|warn|error")
	f.StringVar(&fv.logFormat, "log-format", config.DefaultLogFormat, "Log format: json|console")
	f.Int64Var(&fv.maxBodyBytes, "max-body-bytes", config.DefaultMaxBodyBytes, "Maximum request body size")
	f.IntVar(&fv.genTimeoutSecs, "generate-timeout", 0, "Per-generation timeout in seconds (0 disables)")
	f.BoolVar(&fv.cors, "cors", true, "Enable CORS")
	f.StringVar(&fv.corsOrigins, "cors-origins", "", "Comma-separated allowed origins (default all)")
	return root
}

// buildConfig layers defaults < config file < LLMGATE_* env < explicit flags.
func buildConfig(cmd *cobra.Command, fv flagValues, lookup func(string) (string, bool)) (config.Config, error) {
	var cfg config.Config
	if fv.configPath != "" {
		c, err := config.Load(fv.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	cfg, err := cfg.ApplyEnv(lookup)
	if err != nil {
		return cfg, err
	}

	fs := cmd.Flags()
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("addr", func() { cfg.Addr = fv.addr })
	set("model-path", func() { cfg.ModelPath = fv.modelPath })
	set("engine", func() { cfg.Engine = fv.engine })
	set("engine-url", func() { cfg.EngineURL = fv.engineURL })
	set("llama-bin", func() { cfg.LlamaBin = fv.llamaBin })
	set("llama-ctx", func() { cfg.LlamaCtx = fv.llamaCtx })
	set("llama-threads", func() { cfg.LlamaThreads = fv.llamaThreads })
	set("llama-ngl", func() { cfg.LlamaNGL = fv.llamaNGL })
	set("log-level", func() { cfg.LogLevel = fv.logLevel })
	set("log-format", func() { cfg.LogFormat = fv.logFormat })
	set("max-body-bytes", func() { cfg.MaxBodyBytes = fv.maxBodyBytes })
	set("generate-timeout", func() { cfg.GenerateTimeoutSeconds = fv.genTimeoutSecs })
	set("cors", func() { on := fv.cors; cfg.CORSEnabled = &on })
	set("cors-origins", func() { cfg.CORSOrigins = config.SplitCSV(fv.corsOrigins) })

	cfg = cfg.Default()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
