package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/handler/http/response"
)

type LeaveHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
}

type leaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &leaveHandlerImpl{
		leaveService: leaveService,
	}
}

// Submit implements LeaveHandler.
func (h *leaveHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req leave.SubmitLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Submit leave decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.leaveService.Submit(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted successfully", resp)
}

// ListMine implements LeaveHandler.
func (h *leaveHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	resp, err := h.leaveService.ListMine(r.Context(), actor, leaveFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, resp.LeaveRequests, response.NewMeta(resp.Page, resp.Limit, resp.TotalCount))
}

// List implements LeaveHandler.
func (h *leaveHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	resp, err := h.leaveService.List(r.Context(), actor, leaveFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, resp.LeaveRequests, response.NewMeta(resp.Page, resp.Limit, resp.TotalCount))
}

// Get implements LeaveHandler.
func (h *leaveHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id", leave.ErrLeaveRequestNotFound)
	if !ok {
		return
	}

	resp, err := h.leaveService.Get(r.Context(), actor, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// Approve implements LeaveHandler.
func (h *leaveHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.DecisionApprove, "Leave request approved")
}

// Reject implements LeaveHandler.
func (h *leaveHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.DecisionReject, "Leave request rejected")
}

func (h *leaveHandlerImpl) decide(w http.ResponseWriter, r *http.Request, decision leave.Decision, message string) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id", leave.ErrLeaveRequestNotFound)
	if !ok {
		return
	}

	resp, err := h.leaveService.Decide(r.Context(), actor, id, decision)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, message, resp)
}

// Cancel implements LeaveHandler.
func (h *leaveHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id", leave.ErrLeaveRequestNotFound)
	if !ok {
		return
	}

	resp, err := h.leaveService.Cancel(r.Context(), actor, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request cancelled", resp)
}

func leaveFilter(r *http.Request) leave.LeaveRequestFilter {
	q := r.URL.Query()
	var filter leave.LeaveRequestFilter
	if employeeID := q.Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}
	if status := q.Get("status"); status != "" {
		filter.Status = &status
	}
	if startDate := q.Get("start_date"); startDate != "" {
		filter.StartDate = &startDate
	}
	if endDate := q.Get("end_date"); endDate != "" {
		filter.EndDate = &endDate
	}
	filter.Page, filter.Limit = pageParams(r)
	return filter
}
