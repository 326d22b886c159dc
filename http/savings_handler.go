package http

import (
	"log"
	"net/http"

	"cpa-savings/domain"
	"cpa-savings/service"
)

type SavingsHandler struct {
	service *service.SavingsService
}

func NewSavingsHandler(service *service.SavingsService) *SavingsHandler {
	return &SavingsHandler{service: service}
}

func (h *SavingsHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var input domain.CalculatorInput
	if !decodeJSONPost(w, r, &input) {
		return
	}

	result, err := h.service.Calculate(r.Context(), input)
	if err != nil {
		log.Printf("Error calculating savings: %v", err)
		writeInputError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
