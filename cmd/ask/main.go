// Command ask sends one prompt to the local gateway and falls back to the
// cloud chat API when the gateway cannot answer.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"llmgate/internal/dispatch"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cmd := newAskCmd(os.LookupEnv, os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "ask:", err)
		os.Exit(1)
	}
}

func newAskCmd(lookup func(string) (string, bool), stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var (
		url       string
		model     string
		maxTokens int
		verbose   bool
	)
	cmd := &cobra.Command{
		Use:           "ask [prompt...]",
		Short:         "Ask the local gateway, falling back to the cloud",
		Long:          "ask reads the prompt from its arguments, or from stdin when none are given.\nOPENAI_API_KEY enables the cloud fallback.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(args, stdin)
			if err != nil {
				return err
			}
			cfg := dispatch.ConfigFromEnv(lookup)
			fs := cmd.Flags()
			if fs.Changed("url") {
				cfg.LocalURL = url
			}
			if fs.Changed("model") {
				cfg.CloudModel = model
			}
			cfg.MaxTokens = maxTokens

			lvl := zerolog.WarnLevel
			if verbose {
				lvl = zerolog.DebugLevel
			}
			log := zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: true}).Level(lvl).With().Timestamp().Logger()

			d := dispatch.New(cfg, log)
			defer d.Close()
			ans, err := d.Answer(cmd.Context(), prompt)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(stdout, "\n[%s]\n%s\n", ans.Source, ans.Text)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&url, "url", dispatch.DefaultLocalURL, "Gateway base URL (env LLMGATE_URL)")
	f.StringVar(&model, "model", dispatch.DefaultCloudModel, "Cloud chat model (env OPENAI_MODEL)")
	f.IntVar(&maxTokens, "max-tokens", dispatch.DefaultMaxTokens, "Maximum tokens to generate")
	f.BoolVarP(&verbose, "verbose", "v", false, "Log dispatcher decisions")
	return cmd
}

var errEmptyPrompt = errors.New("empty prompt: pass it as arguments or on stdin")

func readPrompt(args []string, stdin io.Reader) (string, error) {
	var p string
	if len(args) > 0 {
		p = strings.Join(args, " ")
	} else if stdin != nil {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		p = string(b)
	}
	p = strings.TrimSpace(p)
	if p == "" {
		return "", errEmptyPrompt
	}
	return p, nil
}
