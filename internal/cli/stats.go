package cli

import (
	"fmt"
	"io"
	"strconv"

	"veridia_hiring/internal/model"
	"veridia_hiring/internal/repository"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print application counts per status",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			pool, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			counts, err := repository.NewApplicationRepository(pool).CountByStatus(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load statistics: %w", err)
			}
			renderStats(cmd.OutOrStdout(), counts)
			return nil
		},
	}
}

func renderStats(w io.Writer, counts *model.StatusCounts) {
	color.New(color.FgYellow).Fprintln(w, "Application Statistics")

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Status", "Applications", "Share"})
	rows := []struct {
		label string
		n     int64
	}{
		{string(model.StatusSubmitted), counts.Submitted},
		{string(model.StatusUnderReview), counts.UnderReview},
		{string(model.StatusSelected), counts.Selected},
		{string(model.StatusRejected), counts.Rejected},
	}
	for _, r := range rows {
		table.Append([]string{r.label, strconv.FormatInt(r.n, 10), share(r.n, counts.TotalApplications)})
	}
	table.SetFooter([]string{"Total", strconv.FormatInt(counts.TotalApplications, 10), ""})
	table.Render()
}

func share(n, total int64) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", float64(n)/float64(total)*100)
}
