package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/gauntlet/internal/config"
	"github.com/dshills/gauntlet/internal/store"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Browse passed review records",
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List approved review records, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		st, ok := openStore(cfg, "listing review records")
		if !ok {
			return nil
		}
		defer st.Close()

		recs, err := st.Records(context.Background())
		if err != nil {
			if errors.Is(err, store.ErrPermissionDenied) {
				fmt.Fprintln(os.Stderr, "Error: permission denied reading review records.")
			} else {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			exitCode = ExitRuntimeError
			return nil
		}

		if len(recs) == 0 {
			fmt.Fprintln(os.Stdout, "No passed review records yet.")
			return nil
		}
		for _, r := range recs {
			fmt.Fprintf(os.Stdout, "%s  %s  %d stages  %s\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04"), len(r.Verdicts), excerpt(r.Document, 50))
		}
		return nil
	},
}

var recordsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one review record in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		st, ok := openStore(cfg, "reading the review record")
		if !ok {
			return nil
		}
		defer st.Close()

		rec, err := st.Record(context.Background(), args[0])
		if err != nil {
			switch {
			case errors.Is(err, store.ErrPermissionDenied):
				fmt.Fprintln(os.Stderr, "Error: permission denied reading the review record.")
			case errors.Is(err, store.ErrNotFound):
				fmt.Fprintf(os.Stderr, "Error: no review record with id %s\n", args[0])
			default:
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			exitCode = ExitRuntimeError
			return nil
		}

		fmt.Fprintf(os.Stdout, "Record %s (%s)\n", rec.ID, rec.Status)
		fmt.Fprintf(os.Stdout, "Recorded: %s by %s\n", rec.CreatedAt.Format("2006-01-02 15:04"), rec.Owner)
		fmt.Fprintln(os.Stdout, strings.Repeat("─", 60))
		for _, v := range rec.Verdicts {
			fmt.Fprintf(os.Stdout, "\n[%s] %s\n%s\n", v.Verdict.Status, v.Label, v.Verdict.Feedback)
		}
		fmt.Fprintf(os.Stdout, "\nAggregate Recommendation:\n%s\n", rec.AggregateSummary)
		fmt.Fprintln(os.Stdout, strings.Repeat("─", 60))
		fmt.Fprintln(os.Stdout, "Document:")
		fmt.Fprintln(os.Stdout, rec.Document)
		return nil
	},
}

func init() {
	recordsCmd.AddCommand(recordsListCmd)
	recordsCmd.AddCommand(recordsShowCmd)

	for _, cmd := range []*cobra.Command{recordsListCmd, recordsShowCmd} {
		cmd.Flags().StringVar(&flagNamespace, "namespace", "", "Application namespace for stored data")
		cmd.Flags().StringVar(&flagStorePath, "store", "", "Path to the gauntlet database file")
	}
}
