package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/gauntlet/internal/config"
	"github.com/dshills/gauntlet/internal/document"
	"github.com/dshills/gauntlet/internal/store"
)

var flagDocCategory string

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage reference documents",
	Long:  "Reference documents ground reviewer stages. A document with category \"general\" is shown to every reviewer; any other category is shown only to the matching specialization.",
}

var docsAddCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Add a reference document from a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		var text string
		if len(args) == 1 {
			text, err = document.Load(args[0])
		} else {
			text, err = document.FromReader(os.Stdin)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitUsageError
			return nil
		}

		owner, ok := loadOwner()
		if !ok {
			return nil
		}

		st, ok := openStore(cfg, "adding the reference document")
		if !ok {
			return nil
		}
		defer st.Close()

		doc, err := st.AddReferenceDocument(context.Background(), text, flagDocCategory, owner)
		if err != nil {
			if errors.Is(err, store.ErrPermissionDenied) {
				fmt.Fprintln(os.Stderr, "Error: permission denied adding the reference document.")
			} else {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			exitCode = ExitRuntimeError
			return nil
		}

		fmt.Fprintf(os.Stdout, "Added reference document %s (category: %s)\n", doc.ID, doc.Category)
		return nil
	},
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored reference documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		st, ok := openStore(cfg, "listing reference documents")
		if !ok {
			return nil
		}
		defer st.Close()

		docs, err := st.ReferenceDocuments(context.Background())
		if err != nil {
			if errors.Is(err, store.ErrPermissionDenied) {
				fmt.Fprintln(os.Stderr, "Error: permission denied reading reference documents.")
			} else {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			exitCode = ExitRuntimeError
			return nil
		}

		if len(docs) == 0 {
			fmt.Fprintln(os.Stdout, "No reference documents stored.")
			return nil
		}
		for _, d := range docs {
			fmt.Fprintf(os.Stdout, "%s  [%s]  %s  %s\n",
				d.ID, d.Category, d.CreatedAt.Format("2006-01-02"), excerpt(d.Text, 60))
		}
		return nil
	},
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a reference document by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		if _, ok := loadOwner(); !ok {
			return nil
		}

		st, ok := openStore(cfg, "deleting the reference document")
		if !ok {
			return nil
		}
		defer st.Close()

		if err := st.DeleteReferenceDocument(context.Background(), args[0]); err != nil {
			switch {
			case errors.Is(err, store.ErrPermissionDenied):
				fmt.Fprintln(os.Stderr, "Error: permission denied deleting the reference document.")
			case errors.Is(err, store.ErrNotFound):
				fmt.Fprintf(os.Stderr, "Error: no reference document with id %s\n", args[0])
			default:
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			exitCode = ExitRuntimeError
			return nil
		}

		fmt.Fprintf(os.Stdout, "Deleted reference document %s\n", args[0])
		return nil
	},
}

func excerpt(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "…"
}

func init() {
	docsCmd.AddCommand(docsAddCmd)
	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsDeleteCmd)

	docsAddCmd.Flags().StringVar(&flagDocCategory, "category", "general", "Document category: general or a reviewer id")

	for _, cmd := range []*cobra.Command{docsAddCmd, docsListCmd, docsDeleteCmd} {
		cmd.Flags().StringVar(&flagNamespace, "namespace", "", "Application namespace for stored data")
		cmd.Flags().StringVar(&flagStorePath, "store", "", "Path to the gauntlet database file")
	}
}
