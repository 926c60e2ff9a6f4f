package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/stakeproof/stakeproof/internal/model"
	"github.com/stakeproof/stakeproof/internal/realtime"
	"github.com/stakeproof/stakeproof/internal/repository"
)

var (
	ErrVerdictShape = errors.New("model reply is not a valid verdict object")
)

const verdictPromptTemplate = `You are an accountability app verification assistant. Your job is to verify if a photo proves that someone completed their goal.

Goal Description: %q

Analyze the provided image and determine if it shows evidence of the goal being completed.

You must respond with a JSON object in exactly this format:
{
  "isValid": true or false,
  "confidence": a number between 0 and 100,
  "reasoning": "A brief explanation of your decision"
}

Rules:
1. Be reasonable - the photo doesn't need to be perfect, just show reasonable evidence
2. Look for key elements mentioned in the goal description
3. If the image is blurry, dark, or unclear, give lower confidence
4. If the image clearly shows something unrelated to the goal, mark as invalid
5. Be encouraging but honest in your reasoning

Respond ONLY with the JSON object, no other text.`

// maxImageBytes caps the proof image download.
const maxImageBytes = 10 << 20

// VerifierService runs the one-shot verification call for a proof: download
// the image, ask the model, write the terminal outcome onto the proof row,
// and publish a realtime event. No batching, no retry.
type VerifierService struct {
	proofs     repository.ProofRepository
	classifier Classifier
	hub        *realtime.Hub
	httpClient *http.Client
	timeout    time.Duration
}

func NewVerifierService(proofs repository.ProofRepository, classifier Classifier, hub *realtime.Hub, timeout time.Duration) *VerifierService {
	return &VerifierService{
		proofs:     proofs,
		classifier: classifier,
		hub:        hub,
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
	}
}

// Verify judges the image at imageURL against the goal description and
// persists the outcome keyed by proof id. A verification error marks the
// proof failed (terminal) instead of leaving it pending forever.
func (s *VerifierService) Verify(ctx context.Context, proofID, goalID, goalDescription, imageURL string) (*model.VerificationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.verify(ctx, goalDescription, imageURL)
	if err != nil {
		s.markFailed(proofID, goalID)
		return nil, err
	}

	status := model.ProofStatusRejected
	if result.IsValid {
		status = model.ProofStatusVerified
	}

	err = s.proofs.SetResult(proofID, status, result)
	if err != nil {
		return nil, fmt.Errorf("failed to store verification result: %w", err)
	}

	s.hub.Publish(realtime.ProofEvent{
		ProofID:  proofID,
		GoalID:   goalID,
		Status:   status,
		Verified: result.IsValid,
	})

	return result, nil
}

func (s *VerifierService) verify(ctx context.Context, goalDescription, imageURL string) (*model.VerificationResult, error) {
	image, mimeType, err := s.downloadImage(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(verdictPromptTemplate, goalDescription)
	reply, err := s.classifier.Classify(ctx, prompt, image, mimeType)
	if err != nil {
		return nil, err
	}

	result, err := parseVerdict(reply)
	if err != nil {
		return nil, err
	}

	result.CheckedAt = time.Now().UTC()
	return result, nil
}

func (s *VerifierService) downloadImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build image request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("image download returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	if len(body) > maxImageBytes {
		return nil, "", fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(body)
	}

	return body, mimeType, nil
}

func (s *VerifierService) markFailed(proofID, goalID string) {
	err := s.proofs.SetFailed(proofID)
	if errors.Is(err, repository.ErrProofNotFound) {
		// Row is already terminal; nothing more to do here.
		return
	}
	if err != nil {
		slog.Error("failed to mark proof failed", "error", err, "proof_id", proofID)
		return
	}

	s.hub.Publish(realtime.ProofEvent{
		ProofID: proofID,
		GoalID:  goalID,
		Status:  model.ProofStatusFailed,
	})
}

var codeFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// parseVerdict extracts the verdict object from the model reply. The reply
// must be a JSON object with boolean isValid, numeric confidence and string
// reasoning, optionally wrapped in a markdown code fence. Any other shape is
// a hard failure. Confidence is clamped to [0,100].
func parseVerdict(reply string) (*model.VerificationResult, error) {
	text := strings.TrimSpace(reply)
	if m := codeFenceRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	var raw struct {
		IsValid    *bool    `json:"isValid"`
		Confidence *float64 `json:"confidence"`
		Reasoning  *string  `json:"reasoning"`
	}
	err := json.Unmarshal([]byte(text), &raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerdictShape, err)
	}

	if raw.IsValid == nil || raw.Confidence == nil || raw.Reasoning == nil {
		return nil, ErrVerdictShape
	}

	confidence := int(math.Round(*raw.Confidence))
	if confidence > 100 {
		confidence = 100
	}
	if confidence < 0 {
		confidence = 0
	}

	return &model.VerificationResult{
		IsValid:    *raw.IsValid,
		Confidence: confidence,
		Reasoning:  *raw.Reasoning,
	}, nil
}
