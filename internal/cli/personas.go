package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/gauntlet/internal/config"
	"github.com/dshills/gauntlet/internal/personas"
)

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List available reviewer personas",
}

var personasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reviewer personas (built-ins merged with the personas file)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		reg, err := personas.Load(cfg.PersonasFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		for _, p := range reg.All() {
			fmt.Fprintf(os.Stdout, "%-14s %s\n", p.ID, p.Label)
		}
		return nil
	},
}

func init() {
	personasCmd.AddCommand(personasListCmd)
	personasListCmd.Flags().StringVar(&flagPersonas, "personas", "", "YAML personas file merged over the built-ins")
}
