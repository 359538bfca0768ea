package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	Calculate(w http.ResponseWriter, r *http.Request)
	Record(w http.ResponseWriter, r *http.Request)
	Edit(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// Calculate implements AttendanceHandler.
func (h *attendanceHandlerImpl) Calculate(w http.ResponseWriter, r *http.Request) {
	var req attendance.CalculateHoursRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Calculate decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, h.attendanceService.Calculate(req))
}

// Record implements AttendanceHandler.
func (h *attendanceHandlerImpl) Record(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req attendance.RecordDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Record attendance decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.attendanceService.RecordDay(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance recorded successfully", resp)
}

// Edit implements AttendanceHandler.
func (h *attendanceHandlerImpl) Edit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id", attendance.ErrAttendanceNotFound)
	if !ok {
		return
	}

	var req attendance.EditAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Edit attendance decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.attendanceService.Edit(r.Context(), actor, id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance updated successfully", resp)
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id", attendance.ErrAttendanceNotFound)
	if !ok {
		return
	}

	resp, err := h.attendanceService.Get(r.Context(), actor, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	var filter attendance.AttendanceFilter
	if employeeID := q.Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}
	if startDate := q.Get("start_date"); startDate != "" {
		filter.StartDate = &startDate
	}
	if endDate := q.Get("end_date"); endDate != "" {
		filter.EndDate = &endDate
	}
	if incomplete := q.Get("incomplete"); incomplete != "" {
		if v, err := strconv.ParseBool(incomplete); err == nil {
			filter.Incomplete = &v
		}
	}
	filter.Page, filter.Limit = pageParams(r)
	filter.SortOrder = q.Get("sort_order")

	resp, err := h.attendanceService.List(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, resp.Attendances, response.NewMeta(resp.Page, resp.Limit, resp.TotalCount))
}

// pageParams reads page and limit, ignoring malformed values.
func pageParams(r *http.Request) (page, limit int) {
	if p := r.URL.Query().Get("page"); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			page = n
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	return page, limit
}
