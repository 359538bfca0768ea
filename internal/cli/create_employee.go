package cli

import (
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/spf13/cobra"
)

func newCreateEmployeeCommand(opts *RootOptions) *cobra.Command {
	var req employee.CreateProfileRequest
	var level int
	var affiliation string

	cmd := &cobra.Command{
		Use:   "create-employee",
		Short: "Create a login-capable employee profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.AccessLevel = employee.AccessLevel(level)
			if affiliation != "" {
				req.AffiliationNumber = &affiliation
			}
			return withBackend(cmd, opts, func(b *Backend) error {
				profile, err := b.Employees.Create(cmd.Context(), req)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.Output, profile)
			})
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "login name")
	cmd.Flags().StringVar(&req.Password, "password", "", "initial password (at least 8 characters)")
	cmd.Flags().StringVar(&req.FullName, "full-name", "", "display name")
	cmd.Flags().StringVar(&affiliation, "affiliation", "", "social security affiliation number printed on punch exports")
	cmd.Flags().IntVar(&level, "level", int(employee.LevelEmployee), "access level 1-5")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("full-name")
	return cmd
}
