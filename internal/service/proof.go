package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stakeproof/stakeproof/internal/model"
	"github.com/stakeproof/stakeproof/internal/repository"
	"github.com/stakeproof/stakeproof/internal/storage"
)

// Verifier runs the out-of-band verification call for a submitted proof.
type Verifier interface {
	Verify(ctx context.Context, proofID, goalID, goalDescription, imageURL string) (*model.VerificationResult, error)
}

type ProofService struct {
	proofRepo    repository.ProofRepository
	goalRepo     repository.GoalRepository
	participants repository.ParticipantRepository
	storage      storage.Storage
	verifier     Verifier
}

func NewProofService(proofRepo repository.ProofRepository, goalRepo repository.GoalRepository, participants repository.ParticipantRepository, st storage.Storage, verifier Verifier) *ProofService {
	return &ProofService{
		proofRepo:    proofRepo,
		goalRepo:     goalRepo,
		participants: participants,
		storage:      st,
		verifier:     verifier,
	}
}

// authorize returns the goal only when userID participates in it.
// Non-participants get not-found, never a hint that the goal exists.
func (s *ProofService) authorize(userID, goalID string) (*model.Goal, error) {
	goal, err := s.goalRepo.ByID(goalID)
	if err != nil {
		return nil, err
	}

	if goal.UserID != userID {
		_, err = s.participants.ByGoalAndUser(goalID, userID)
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return nil, repository.ErrGoalNotFound
		}
		if err != nil {
			return nil, err
		}
	}

	return goal, nil
}

// Submit stores the image, creates a pending proof row, and kicks off
// verification without waiting for it. The returned proof is always
// pending; callers learn the outcome via the realtime hub or a refetch.
func (s *ProofService) Submit(userID, goalID string, image io.Reader, contentType string) (*model.ProofSubmission, error) {
	goal, err := s.authorize(userID, goalID)
	if err != nil {
		return nil, err
	}

	imagePath := fmt.Sprintf("%s/%s/%d%s", userID, goalID, time.Now().UnixMilli(), imageExtension(contentType))

	err = s.storage.Save(imagePath, image, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload proof image: %w", err)
	}

	proof := &model.ProofSubmission{
		ID:                 uuid.New().String(),
		GoalID:             goalID,
		UserID:             userID,
		ImagePath:          imagePath,
		VerificationStatus: model.ProofStatusPending,
		CreatedAt:          time.Now(),
	}

	err = s.proofRepo.Create(proof)
	if err != nil {
		// No transaction spans object storage and the database; compensate
		// by removing the orphaned image.
		delErr := s.storage.Delete(imagePath)
		if delErr != nil {
			slog.Error("failed to delete orphaned proof image", "error", delErr, "path", imagePath)
		}
		return nil, fmt.Errorf("failed to create proof record: %w", err)
	}

	s.startVerification(proof, goal)

	// A presign failure here degrades the response, it does not fail the
	// submission: the row exists and verification is already underway.
	url, err := s.storage.PresignedURL(imagePath)
	if err != nil {
		slog.Error("failed to presign proof image", "error", err, "path", imagePath)
	} else {
		proof.ImageURL = url
	}

	return proof, nil
}

// startVerification fires the one-shot verification call in the background.
// Submit never waits on it. The verification URL is minted here so a presign
// failure in the response path cannot strand the proof in pending.
func (s *ProofService) startVerification(proof *model.ProofSubmission, goal *model.Goal) {
	if s.verifier == nil {
		slog.Warn("verifier not configured, proof stays pending", "proof_id", proof.ID)
		return
	}

	go func() {
		url, err := s.storage.PresignedURL(proof.ImagePath)
		if err != nil {
			slog.Error("failed to presign proof image for verification", "error", err, "proof_id", proof.ID)
			err = s.proofRepo.SetFailed(proof.ID)
			if err != nil {
				slog.Error("failed to mark proof failed", "error", err, "proof_id", proof.ID)
			}
			return
		}

		_, err = s.verifier.Verify(context.Background(), proof.ID, goal.ID, goal.Description, url)
		if err != nil {
			slog.Error("proof verification failed", "error", err, "proof_id", proof.ID, "goal_id", goal.ID)
		}
	}()
}

// ByGoal returns the goal's proofs newest first, each with a freshly minted
// display URL. The caller must participate in the goal.
func (s *ProofService) ByGoal(userID, goalID string) ([]*model.ProofSubmission, error) {
	_, err := s.authorize(userID, goalID)
	if err != nil {
		return nil, err
	}

	proofs, err := s.proofRepo.ByGoal(goalID)
	if err != nil {
		return nil, err
	}

	for _, proof := range proofs {
		err = s.attachURL(proof)
		if err != nil {
			return nil, err
		}
	}

	return proofs, nil
}

// Latest returns the most recent proof for the goal, or nil when none exist.
// The caller must participate in the goal.
func (s *ProofService) Latest(userID, goalID string) (*model.ProofSubmission, error) {
	_, err := s.authorize(userID, goalID)
	if err != nil {
		return nil, err
	}

	proof, err := s.proofRepo.LatestByGoal(goalID)
	if errors.Is(err, repository.ErrProofNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	err = s.attachURL(proof)
	if err != nil {
		return nil, err
	}

	return proof, nil
}

func (s *ProofService) attachURL(proof *model.ProofSubmission) error {
	url, err := s.storage.PresignedURL(proof.ImagePath)
	if err != nil {
		return fmt.Errorf("failed to presign proof image: %w", err)
	}
	proof.ImageURL = url
	return nil
}

// imageExtension maps the accepted upload content types onto storage key
// extensions. Unknown types were already rejected by validation; jpeg is the
// safe default for the bare multipart case.
func imageExtension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
