package cli

import (
	"fmt"
	"io"
	"strconv"

	"veridia_hiring/internal/model"
	"veridia_hiring/internal/repository"
	"veridia_hiring/internal/service"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newApplicationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "applications",
		Short: "Inspect submitted applications",
	}

	var (
		query       model.AdminListQuery
		page, limit int
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List applications with the admin filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("page") {
				query.Page = &page
			}
			if cmd.Flags().Changed("limit") {
				query.Limit = &limit
			}

			a := appFrom(cmd)
			pool, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := service.NewApplicationService(
				repository.NewApplicationRepository(pool),
				repository.NewUserRepository(pool),
				service.NewResumeStore(a.cfg.UploadsDir, a.cfg.MaxUploadBytes),
				a.cfg.MaxPageSize,
				a.log,
			)
			result, err := svc.ListAdmin(cmd.Context(), query)
			if err != nil {
				return err
			}
			renderApplications(cmd.OutOrStdout(), result)
			return nil
		},
	}
	listCmd.Flags().StringVar(&query.Status, "status", model.StatusFilterAll, `status filter, or "all"`)
	listCmd.Flags().StringVar(&query.Search, "search", "", "case-insensitive text matched against name, email and position")
	listCmd.Flags().IntVar(&page, "page", model.DefaultPage, "page number")
	listCmd.Flags().IntVar(&limit, "limit", model.DefaultLimit, "page size")

	cmd.AddCommand(listCmd)
	return cmd
}

var statusColors = map[model.Status]*color.Color{
	model.StatusSubmitted:   color.New(color.FgCyan),
	model.StatusUnderReview: color.New(color.FgYellow),
	model.StatusSelected:    color.New(color.FgGreen),
	model.StatusRejected:    color.New(color.FgRed),
}

func renderApplications(w io.Writer, page *model.ApplicationPage) {
	if len(page.Applications) == 0 {
		color.New(color.FgYellow).Fprintln(w, "No applications match the filters.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Candidate", "Email", "Position", "Experience", "Status", "Applied"})
	for _, a := range page.Applications {
		status := string(a.Status)
		if c, ok := statusColors[a.Status]; ok {
			status = c.Sprint(status)
		}
		table.Append([]string{
			a.ID,
			a.CandidateName,
			a.Email,
			a.Position,
			strconv.Itoa(a.Experience),
			status,
			a.AppliedDate.Format("2006-01-02 15:04"),
		})
	}
	table.Render()
	fmt.Fprintf(w, "Page %d of %d (%d applications)\n", page.CurrentPage, page.TotalPages, page.TotalApplications)
}
