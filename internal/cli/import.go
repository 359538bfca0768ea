package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/importer"
	"github.com/spf13/cobra"
)

func newImportCommand(opts *RootOptions) *cobra.Command {
	var format string
	var archived bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a punch-clock export (xlsx, xls or csv)",
		Long: `Import a punch-clock export for the employee whose affiliation number
appears in it. With --archived the argument is the key of an upload already
kept in storage, which lets a failed import be replayed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, opts, func(b *Backend) error {
				data, err := readSource(cmd, b, args[0], archived)
				if err != nil {
					return err
				}

				req := importer.ImportRequest{
					File:     bytes.NewReader(data),
					Filename: filepath.Base(args[0]),
					Format:   importer.Format(format),
				}
				if archived {
					req.ArchivedAs = args[0]
				}

				report, err := b.Imports.RunImport(cmd.Context(), operator(), req)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.Output, importer.NewReportResponse(report))
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "file format (xlsx|xls|csv); guessed from the extension when empty")
	cmd.Flags().BoolVar(&archived, "archived", false, "read the file from upload storage instead of the local disk")
	return cmd
}

func readSource(cmd *cobra.Command, b *Backend, path string, archived bool) ([]byte, error) {
	if !archived {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return data, nil
	}

	rc, err := b.Files.OpenImport(cmd.Context(), path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archived import %s: %w", path, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
