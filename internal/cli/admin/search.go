package admin

import (
	"context"
	"fmt"
	"io"

	"github.com/pxtester/showcase/internal/service"
	"github.com/spf13/cobra"
)

// hitOutput is the JSON shape printed for each hit.
type hitOutput struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	URL    string   `json:"url"`
	Source string   `json:"source"`
	Score  *float32 `json:"score,omitempty"`
}

func SearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a hybrid search",
		Long:  "Run the hybrid semantic and text search against the catalog and print the merged results",
		Args:  cobra.ExactArgs(1),
		RunE:  runSearch,
	}

	cmd.Flags().IntP("limit", "l", 0, "Maximum number of results (0 for no limit)")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	limit, _ := cmd.Flags().GetInt("limit")
	outputFormat, _ := cmd.Flags().GetString("output")

	d, err := loadDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	hits, err := d.searchService().Search(ctx, args[0], limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	return printHits(cmd.OutOrStdout(), hits, outputFormat)
}

func SimilarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "similar <site-id>",
		Short: "List sites similar to a site",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimilar,
	}

	cmd.Flags().IntP("limit", "l", 0, "Maximum number of results (0 for the default)")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runSimilar(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	limit, _ := cmd.Flags().GetInt("limit")
	outputFormat, _ := cmd.Flags().GetString("output")

	d, err := loadDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	similar, err := d.searchService().Similar(ctx, args[0], limit)
	if err != nil {
		return fmt.Errorf("similar lookup failed: %w", err)
	}

	hits := make([]service.SearchHit, 0, len(similar))
	for _, h := range similar {
		hits = append(hits, h)
	}
	return printHits(cmd.OutOrStdout(), hits, outputFormat)
}

func printHits(w io.Writer, hits []service.SearchHit, format string) error {
	if format == "json" {
		out := make([]hitOutput, 0, len(hits))
		for _, h := range hits {
			site := h.HitSite()
			o := hitOutput{ID: site.ID, Name: site.Name, URL: site.URL, Source: string(h.Source())}
			if score, ok := h.HitScore(); ok {
				o.Score = &score
			}
			out = append(out, o)
		}
		return printJSON(w, out)
	}

	if len(hits) == 0 {
		fmt.Fprintln(w, "No results.")
		return nil
	}
	for i, h := range hits {
		site := h.HitSite()
		if score, ok := h.HitScore(); ok {
			fmt.Fprintf(w, "%2d. %s <%s> [%s %.3f]\n", i+1, site.Name, site.URL, h.Source(), score)
		} else {
			fmt.Fprintf(w, "%2d. %s <%s> [%s]\n", i+1, site.Name, site.URL, h.Source())
		}
	}
	return nil
}
