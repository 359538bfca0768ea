package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/importer"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/service/file"
	"github.com/spf13/cobra"
)

// Backend is what the database-backed commands run against.
type Backend struct {
	Policy    attendance.Policy
	Ledger    balance.Ledger
	Imports   importer.ImportService
	Employees employee.EmployeeService
	Files     file.FileService
	Close     func()
}

// RootOptions holds global flags and the backend factory shared by all
// commands.
type RootOptions struct {
	Output string // "json" | "yaml"

	// Connect opens the backend lazily so that calc works without a database.
	Connect func(ctx context.Context) (*Backend, error)
	// Policy is used by calc when no backend is opened.
	Policy func() (attendance.Policy, error)
}

var validOutputs = []string{"json", "yaml"}

func NewRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timesheetctl",
		Short: "Operate the timesheet backend from the command line",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(validOutputs, opts.Output) {
				return fmt.Errorf("invalid output %q: must be one of %v", opts.Output, validOutputs)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", "json", "output format (json|yaml)")

	cmd.AddCommand(newImportCommand(opts))
	cmd.AddCommand(newCalcCommand(opts))
	cmd.AddCommand(newReconcileCommand(opts))
	cmd.AddCommand(newCreateEmployeeCommand(opts))

	return cmd
}

// operator is the identity CLI commands act under. Whoever can run the
// binary against the database already holds full access.
func operator() employee.Actor {
	return employee.Actor{EmployeeID: "timesheetctl", Level: employee.PrivilegedLevel, Active: true}
}

func withBackend(cmd *cobra.Command, opts *RootOptions, fn func(b *Backend) error) error {
	b, err := opts.Connect(cmd.Context())
	if err != nil {
		return err
	}
	if b.Close != nil {
		defer b.Close()
	}
	return fn(b)
}
