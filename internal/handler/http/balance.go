package http

import (
	"net/http"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/validator"
)

type BalanceHandler interface {
	Me(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	Monthly(w http.ResponseWriter, r *http.Request)
}

type balanceHandlerImpl struct {
	ledger balance.Ledger
	now    func() time.Time
}

func NewBalanceHandler(ledger balance.Ledger) BalanceHandler {
	return &balanceHandlerImpl{
		ledger: ledger,
		now:    time.Now,
	}
}

// Me implements BalanceHandler.
func (h *balanceHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	resp, err := h.ledger.Summary(r.Context(), actor, actor.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// Summary implements BalanceHandler.
func (h *balanceHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	employeeID, ok := pathID(w, r, "employeeID", employee.ErrEmployeeNotFound)
	if !ok {
		return
	}

	resp, err := h.ledger.Summary(r.Context(), actor, employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// Monthly implements BalanceHandler. Year and month default to the current
// month.
func (h *balanceHandlerImpl) Monthly(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	year, month, errs := validator.ParseYearMonth(q.Get("year"), q.Get("month"), h.now().UTC())
	if len(errs) > 0 {
		response.ValidationError(w, errs.ToMap())
		return
	}

	employeeID, ok := pathID(w, r, "employeeID", employee.ErrEmployeeNotFound)
	if !ok {
		return
	}

	resp, err := h.ledger.Monthly(r.Context(), actor, employeeID, year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}
