package importer

import (
	"io"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/validator"
)

type ImportRequest struct {
	File     io.Reader
	Filename string
	Format   Format
	// ArchivedAs is the storage key when File is an upload replayed from the
	// archive. Such files are not archived again.
	ArchivedAs string
}

func (r *ImportRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.File == nil {
		errs.Add("file", "file is required")
	}
	if r.Format == "" {
		if f, ok := FormatFromFilename(r.Filename); ok {
			r.Format = f
		}
	}
	if !r.Format.Valid() {
		errs.Add("format", "format must be one of: xlsx, xls, csv")
	}

	return errs.Err()
}

type SoftErrorResponse struct {
	Date   *string `json:"date,omitempty"`
	Row    int     `json:"row"`
	Reason string  `json:"reason"`
}

type ReportResponse struct {
	EmployeeID        string              `json:"employee_id"`
	EmployeeName      string              `json:"employee_name"`
	AffiliationNumber string              `json:"affiliation_number"`
	Count             int                 `json:"count"`
	Incomplete        int                 `json:"incomplete"`
	SoftErrors        []SoftErrorResponse `json:"soft_errors"`
	Balance           balance.Amount      `json:"balance"`
	StoredFile        string              `json:"stored_file,omitempty"`
}

func NewReportResponse(r Report) ReportResponse {
	resp := ReportResponse{
		EmployeeID:        r.EmployeeID,
		EmployeeName:      r.EmployeeName,
		AffiliationNumber: r.AffiliationNumber,
		Count:             r.Completed,
		Incomplete:        r.Incomplete,
		SoftErrors:        make([]SoftErrorResponse, 0, len(r.SoftErrors)),
		Balance:           balance.NewAmount(r.Balance),
		StoredFile:        r.StoredFile,
	}
	for _, e := range r.SoftErrors {
		se := SoftErrorResponse{Row: e.Row, Reason: e.Reason}
		if e.Date != nil {
			s := e.Date.Format(time.DateOnly)
			se.Date = &s
		}
		resp.SoftErrors = append(resp.SoftErrors, se)
	}
	return resp
}
