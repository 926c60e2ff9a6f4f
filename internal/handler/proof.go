package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/stakeproof/stakeproof/internal/ctxkeys"
	"github.com/stakeproof/stakeproof/internal/repository"
	"github.com/stakeproof/stakeproof/internal/service"
	"github.com/stakeproof/stakeproof/internal/validation"
)

const maxProofUploadBytes = 12 << 20

type ProofHandler struct {
	proofService *service.ProofService
}

func NewProofHandler(proofService *service.ProofService) *ProofHandler {
	return &ProofHandler{
		proofService: proofService,
	}
}

// Submit accepts a multipart upload with an "image" part, stores it, and
// returns the pending proof row. Verification completes out of band.
func (h *ProofHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	r.Body = http.MaxBytesReader(w, r.Body, maxProofUploadBytes)
	err := r.ParseMultipartForm(maxProofUploadBytes)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer func() { _ = file.Close() }()

	err = validation.ValidateFile(header, validation.ProofImageConstraints)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	proof, err := h.proofService.Submit(user.ID, goalID, file, contentType)
	switch {
	case errors.Is(err, repository.ErrGoalNotFound):
		respondError(w, http.StatusNotFound, "goal not found")
		return
	case err != nil:
		slog.Error("failed to submit proof", "error", err, "user_id", user.ID, "goal_id", goalID)
		respondError(w, http.StatusInternalServerError, "failed to submit proof")
		return
	}

	respondJSON(w, http.StatusCreated, proof)
}

func (h *ProofHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	proofs, err := h.proofService.ByGoal(user.ID, goalID)
	switch {
	case errors.Is(err, repository.ErrGoalNotFound):
		respondError(w, http.StatusNotFound, "goal not found")
		return
	case err != nil:
		slog.Error("failed to list proofs", "error", err, "goal_id", goalID)
		respondError(w, http.StatusInternalServerError, "failed to load proofs")
		return
	}

	respondJSON(w, http.StatusOK, proofs)
}

// Latest returns the newest proof for the goal, or JSON null when the goal
// has no submissions yet.
func (h *ProofHandler) Latest(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	proof, err := h.proofService.Latest(user.ID, goalID)
	switch {
	case errors.Is(err, repository.ErrGoalNotFound):
		respondError(w, http.StatusNotFound, "goal not found")
		return
	case err != nil:
		slog.Error("failed to get latest proof", "error", err, "goal_id", goalID)
		respondError(w, http.StatusInternalServerError, "failed to load proof")
		return
	}

	respondJSON(w, http.StatusOK, proof)
}
