package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/stakeproof/stakeproof/internal/ctxkeys"
	"github.com/stakeproof/stakeproof/internal/service"
)

type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

func (h *SubscriptionHandler) Status(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	status, err := h.subscriptionService.Status(user.ID)
	if err != nil {
		slog.Error("failed to get subscription status", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to load subscription")
		return
	}

	respondJSON(w, http.StatusOK, status)
}

func (h *SubscriptionHandler) TrialStatus(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	status, err := h.subscriptionService.TrialStatus(user.ID)
	if err != nil {
		slog.Error("failed to get trial status", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to load trial status")
		return
	}

	respondJSON(w, http.StatusOK, status)
}

func (h *SubscriptionHandler) StartTrial(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	status, err := h.subscriptionService.StartTrial(user.ID)
	switch {
	case errors.Is(err, service.ErrTrialUsed):
		respondError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		slog.Error("failed to start trial", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to start trial")
		return
	}

	respondJSON(w, http.StatusCreated, status)
}

func (h *SubscriptionHandler) RecordPurchase(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var details service.PurchaseDetails
	err := json.NewDecoder(r.Body).Decode(&details)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := h.subscriptionService.RecordPurchase(r.Context(), user.ID, details)
	switch {
	case errors.Is(err, service.ErrUnknownProduct), errors.Is(err, service.ErrBadReceipt):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("failed to record purchase", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to record purchase")
		return
	}

	respondJSON(w, http.StatusCreated, status)
}
