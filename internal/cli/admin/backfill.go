package admin

import (
	"context"
	"fmt"

	"github.com/pxtester/showcase/internal/logging"
	"github.com/pxtester/showcase/internal/service"
	"github.com/spf13/cobra"
)

type backfillOutput struct {
	Total   int             `json:"total"`
	Success int             `json:"success"`
	Failed  int             `json:"failed"`
	Errors  []backfillError `json:"errors"`
}

type backfillError struct {
	SiteID string `json:"site_id"`
	Error  string `json:"error"`
}

func BackfillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Re-embed every approved site",
		Long:  "Generate and store a fresh embedding for every approved site, one at a time",
		Args:  cobra.NoArgs,
		RunE:  runBackfill,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runBackfill(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	outputFormat, _ := cmd.Flags().GetString("output")

	d, err := loadDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	if !d.cfg.HasEmbeddings() {
		return fmt.Errorf("backfill requires an embedding provider")
	}

	svc := service.NewEmbeddingService(d.embedder, d.vectors, d.sites, logging.Component(d.logger, "backfill"))
	report, err := svc.Backfill(ctx)
	if err != nil && report == nil {
		return err
	}

	out := toBackfillOutput(report)
	if outputFormat == "json" {
		if perr := printJSON(cmd.OutOrStdout(), out); perr != nil {
			return perr
		}
	} else {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Backfill: %d total, %d succeeded, %d failed\n", out.Total, out.Success, out.Failed)
		for _, e := range out.Errors {
			fmt.Fprintf(w, "  %s: %s\n", e.SiteID, e.Error)
		}
	}

	return err
}

func toBackfillOutput(r *service.BackfillReport) backfillOutput {
	out := backfillOutput{
		Total:   r.Total,
		Success: r.Success,
		Failed:  r.Failed,
		Errors:  make([]backfillError, 0, len(r.Errors)),
	}
	for _, e := range r.Errors {
		out.Errors = append(out.Errors, backfillError{SiteID: e.SiteID, Error: e.Err})
	}
	return out
}
