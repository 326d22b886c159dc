package http

import (
	"log"
	"net/http"

	"cpa-savings/domain"
	"cpa-savings/service"
)

type LeadRequest struct {
	FirstName string                 `json:"firstName"`
	LastName  string                 `json:"lastName"`
	Email     string                 `json:"email"`
	Input     domain.CalculatorInput `json:"input"`
}

type LeadResponse struct {
	LeadID string                   `json:"leadId,omitempty"`
	Status domain.DeliveryStatus    `json:"status,omitempty"`
	Error  string                   `json:"error,omitempty"`
	Result domain.CalculationResult `json:"result"`
}

type LeadHandler struct {
	savings    *service.SavingsService
	dispatcher *service.LeadDispatcher
}

func NewLeadHandler(savings *service.SavingsService, dispatcher *service.LeadDispatcher) *LeadHandler {
	return &LeadHandler{savings: savings, dispatcher: dispatcher}
}

// SubmitLead computes the estimate and queues the lead. The result is
// returned even when the lead cannot be queued.
func (h *LeadHandler) SubmitLead(w http.ResponseWriter, r *http.Request) {
	var req LeadRequest
	if !decodeJSONPost(w, r, &req) {
		return
	}

	if !h.dispatcher.Enabled() {
		writeError(w, http.StatusServiceUnavailable, service.ErrSinkDisabled.Error())
		return
	}

	identity, provided, err := service.ParseIdentity(map[string]string{
		service.FieldFirstName: req.FirstName,
		service.FieldLastName:  req.LastName,
		service.FieldEmail:     req.Email,
	})
	if err != nil {
		writeInputError(w, err)
		return
	}
	if !provided {
		writeError(w, http.StatusBadRequest, "contact details are required")
		return
	}

	result, err := h.savings.Calculate(r.Context(), req.Input)
	if err != nil {
		writeInputError(w, err)
		return
	}

	lead, err := h.dispatcher.Dispatch(r.Context(), identity, result)
	if err != nil {
		log.Printf("Warning: could not queue lead: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, LeadResponse{
			LeadID: lead.ID,
			Error:  err.Error(),
			Result: result,
		})
		return
	}

	writeJSON(w, http.StatusAccepted, LeadResponse{
		LeadID: lead.ID,
		Status: domain.DeliveryPending,
		Result: result,
	})
}

func (h *LeadHandler) LeadStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing lead id")
		return
	}

	report, ok, err := h.dispatcher.Status(r.Context(), id)
	if err != nil {
		log.Printf("Error reading lead status: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}

	writeJSON(w, http.StatusOK, report)
}
