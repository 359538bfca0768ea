package cli

import (
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/attendance"
	"github.com/spf13/cobra"
)

func newCalcCommand(opts *RootOptions) *cobra.Command {
	var req attendance.CalculateHoursRequest

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute net hours and overtime for one day",
		Example: `  timesheetctl calc --entry 06:30 --exit 16:00
  timesheetctl calc --date 2024-03-04 --entry 08:00 --exit 08:00 -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := req.Validate(); err != nil {
				return err
			}
			policy, err := opts.Policy()
			if err != nil {
				return err
			}
			h := policy.ComputeDayHours(req.WorkDate, req.EntryTime, req.ExitTime)
			return render(cmd.OutOrStdout(), opts.Output, attendance.NewCalculateHoursResponse(req, h, policy))
		},
	}

	cmd.Flags().StringVar(&req.Date, "date", "", "work date (YYYY-MM-DD), today when empty")
	cmd.Flags().StringVar(&req.Entry, "entry", "", "entry time (HH:MM)")
	cmd.Flags().StringVar(&req.Exit, "exit", "", "exit time (HH:MM)")
	_ = cmd.MarkFlagRequired("entry")
	_ = cmd.MarkFlagRequired("exit")
	return cmd
}
