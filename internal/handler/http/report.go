package http

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	ExportAttendance(w http.ResponseWriter, r *http.Request)
	Calendar(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// ExportAttendance implements ReportHandler.
func (h *reportHandlerImpl) ExportAttendance(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := report.ExportFilter{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}
	if employeeID := q.Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}

	// Render before writing headers so errors still come back as JSON.
	var buf bytes.Buffer
	if err := h.reportService.ExportAttendanceCSV(r.Context(), actor, filter, &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	response.CSVHeaders(w, fmt.Sprintf("attendance_%s.csv", exportSuffix(filter)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Calendar implements ReportHandler.
func (h *reportHandlerImpl) Calendar(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := report.CalendarFilter{
		Type:  report.CalendarType(q.Get("type")),
		Start: q.Get("start"),
		End:   q.Get("end"),
	}
	if employeeID := q.Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}

	events, err := h.reportService.Calendar(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, events)
}

func exportSuffix(f report.ExportFilter) string {
	if f.StartDate == "" && f.EndDate == "" {
		return "current_month"
	}
	return f.StartDate + "_" + f.EndDate
}
