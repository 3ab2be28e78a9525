package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/gauntlet/internal/config"
	"github.com/dshills/gauntlet/internal/document"
	"github.com/dshills/gauntlet/internal/identity"
	"github.com/dshills/gauntlet/internal/output"
	"github.com/dshills/gauntlet/internal/personas"
	"github.com/dshills/gauntlet/internal/providers"
	"github.com/dshills/gauntlet/internal/review"
	"github.com/dshills/gauntlet/internal/store"
)

// Shared flags
var (
	flagReviewers    string
	flagProvider     string
	flagModel        string
	flagFormat       string
	flagOut          string
	flagMaxTokens    int
	flagStageTimeout int
	flagNamespace    string
	flagStorePath    string
	flagPersonas     string
	flagNoRedact     bool
)

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagReviewers, "reviewers", "", "Reviewer ids to run, in order (comma-separated)")
	cmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (anthropic, openai, gemini, ollama)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().IntVar(&flagMaxTokens, "max-tokens", 0, "Maximum tokens per provider call")
	cmd.Flags().IntVar(&flagStageTimeout, "stage-timeout", 0, "Per-stage timeout in seconds (0 = config default)")
	cmd.Flags().StringVar(&flagNamespace, "namespace", "", "Application namespace for stored data")
	cmd.Flags().StringVar(&flagStorePath, "store", "", "Path to the gauntlet database file")
	cmd.Flags().StringVar(&flagPersonas, "personas", "", "YAML personas file merged over the built-ins")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagReviewers != "" {
		m["reviewers"] = flagReviewers
	}
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagNamespace != "" {
		m["namespace"] = flagNamespace
	}
	if flagStorePath != "" {
		m["storePath"] = flagStorePath
	}
	if flagPersonas != "" {
		m["personasFile"] = flagPersonas
	}
	if flagMaxTokens > 0 {
		m["maxTokens"] = fmt.Sprintf("%d", flagMaxTokens)
	}
	if flagStageTimeout > 0 {
		m["stageTimeoutSeconds"] = fmt.Sprintf("%d", flagStageTimeout)
	}
	return m
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// openStore opens the configured persistence gateway, mapping permission
// problems to a specific message.
func openStore(cfg config.Config, op string) (*store.Store, bool) {
	path, err := cfg.EffectiveStorePath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return nil, false
	}
	st, err := store.Open(path, cfg.Namespace)
	if err != nil {
		reportStoreError(op, err)
		return nil, false
	}
	return st, true
}

func reportStoreError(op string, err error) {
	if errors.Is(err, store.ErrPermissionDenied) {
		fmt.Fprintf(os.Stderr, "Error: permission denied while %s. Check ownership and write access on the database file.\n", op)
	} else {
		fmt.Fprintf(os.Stderr, "Error %s: %v\n", op, err)
	}
	exitCode = ExitRuntimeError
}

func loadOwner() (string, bool) {
	dir, err := config.ConfigDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return "", false
	}
	owner, err := identity.Load(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: user identity is not ready: %v\n", err)
		exitCode = ExitRuntimeError
		return "", false
	}
	return owner, true
}

var reviewCmd = &cobra.Command{
	Use:   "review [file]",
	Short: "Run a design document through the review gauntlet",
	Long:  "Run a design document through each configured reviewer persona in order. The run stops at the first FAIL; if every stage passes, an aggregate recommendation decides whether the document is recorded as passed.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		var doc string
		if len(args) == 1 {
			doc, err = document.Load(args[0])
		} else {
			doc, err = document.FromReader(os.Stdin)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitUsageError
			return nil
		}

		reg, err := personas.Load(cfg.PersonasFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		specs, err := reg.Select(cfg.Reviewers)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitUsageError
			return nil
		}

		owner, ok := loadOwner()
		if !ok {
			return nil
		}

		st, ok := openStore(cfg, "opening the review store")
		if !ok {
			return nil
		}
		defer st.Close()

		gen, err := providers.New(cfg.Provider, cfg.Model)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitAuthError
			return nil
		}

		if flagNoRedact {
			cfg.Privacy.RedactSecrets = false
			fmt.Fprintln(os.Stderr, "WARNING: secret redaction is disabled")
		}

		orch := review.NewOrchestrator(gen, st, review.Options{
			Specializations: specs,
			Owner:           owner,
			MaxTokens:       cfg.MaxTokens,
			StageTimeout:    time.Duration(cfg.StageTimeoutSeconds) * time.Second,
			RedactSecrets:   cfg.Privacy.RedactSecrets,
		})

		report, err := orch.Run(context.Background(), doc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		if err := output.WriteReport(report, cfg.Format, flagOut); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		if report.Outcome == review.OutcomeApproved {
			exitCode = ExitApproved
		} else {
			exitCode = ExitNotApproved
		}
		return nil
	},
}

func init() {
	addReviewFlags(reviewCmd)
}
