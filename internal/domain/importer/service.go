package importer

import (
	"context"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
)

type ImportService interface {
	// RunImport decodes a punch-clock export and stores every day it finds
	// in a single transaction. Per-day problems come back as soft errors.
	RunImport(ctx context.Context, actor employee.Actor, req ImportRequest) (Report, error)
}
