package handlers

import (
	"net/http"

	"github.com/dojofed/tournament-core/models"
	"github.com/dojofed/tournament-core/services"
)

type BracketHandler struct {
	bracketService services.BracketService
	resultService  services.ResultService
}

func NewBracketHandler(bracketService services.BracketService, resultService services.ResultService) *BracketHandler {
	return &BracketHandler{
		bracketService: bracketService,
		resultService:  resultService,
	}
}

// GenerateBracketsHandler — POST /events/{eventID}/brackets/generate.
// Прогресс генерации транслируется в комнату мероприятия, ответ —
// итоговый список созданных сеток.
func (h *BracketHandler) GenerateBracketsHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	created, err := h.bracketService.GenerateForEvent(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"brackets": created}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListEventBracketsHandler — GET /events/{eventID}/brackets.
func (h *BracketHandler) ListEventBracketsHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracketList, err := h.bracketService.ListByEvent(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"brackets": bracketList}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type updateBracketStatusRequest struct {
	Status models.BracketStatus `json:"status"`
}

// UpdateBracketStatusHandler — PATCH /brackets/{bracketID}/status.
func (h *BracketHandler) UpdateBracketStatusHandler(w http.ResponseWriter, r *http.Request) {
	bracketID, err := getIDFromURL(r, "bracketID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input updateBracketStatusRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.bracketService.UpdateStatus(r.Context(), bracketID, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CalculateResultsHandler — POST /brackets/{bracketID}/results.
func (h *BracketHandler) CalculateResultsHandler(w http.ResponseWriter, r *http.Request) {
	bracketID, err := getIDFromURL(r, "bracketID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	results, err := h.resultService.CalculateForBracket(r.Context(), bracketID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"results": results}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListBracketResultsHandler — GET /brackets/{bracketID}/results.
func (h *BracketHandler) ListBracketResultsHandler(w http.ResponseWriter, r *http.Request) {
	bracketID, err := getIDFromURL(r, "bracketID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	results, err := h.resultService.ListByBracket(r.Context(), bracketID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"results": results}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
