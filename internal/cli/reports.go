package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"appraiser_directory/internal/adapters/images"
	"appraiser_directory/internal/report"
)

func newCheckImagesCmd(o *options) *cobra.Command {
	var (
		out       string
		batchSize int
		timeout   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "check-images",
		Short: "Check every appraiser image URL and write a coverage report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := o.store()
			if err != nil {
				return err
			}
			timeout = timeoutOr(timeout, 10*time.Second)
			rep, err := report.ImageCoverage(cmd.Context(), store.Locations(), report.ImageOptions{
				Prober:    images.New(timeout, o.cfg.ImageRPS),
				BatchSize: batchSize,
				Timeout:   timeout,
			})
			if err != nil {
				return err
			}
			if err := report.WriteJSON(out, rep); err != nil {
				return err
			}
			log.Info().Str("out", out).Float64("coverage", rep.Coverage).Msg("image report written")
			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d images valid (%.1f%%)\n", rep.Valid, rep.Total, rep.Coverage)
			for _, c := range rep.Cities {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-24s %3d/%-3d %5.1f%%\n", c.City, c.Valid, c.Total, c.Coverage)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", report.DefaultImageReport, "report path")
	cmd.Flags().IntVar(&batchSize, "batch-size", o.cfg.ImageBatchSize, "concurrent checks per batch")
	cmd.Flags().DurationVar(&timeout, "timeout", o.cfg.ImageTimeout, "per-image request timeout")
	return cmd
}

func newAuditContentCmd(o *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "audit-content",
		Short: "Flag templated appraiser content and duplicated reviews",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := o.store()
			if err != nil {
				return err
			}
			rep := report.AuditContent(store.Locations(), time.Now())
			if err := report.WriteJSON(out, rep); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d appraisers have issues\n", rep.AppraisersWithIssues, rep.TotalAppraisers)
			issues := make([]string, 0, len(rep.IssueCounts))
			for issue := range rep.IssueCounts {
				issues = append(issues, issue)
			}
			sort.Strings(issues)
			for _, issue := range issues {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-22s %d\n", issue, rep.IssueCounts[issue])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", report.DefaultAuditReport, "report path")
	return cmd
}
