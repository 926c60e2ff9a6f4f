package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/stakeproof/stakeproof/internal/model"
	"github.com/stakeproof/stakeproof/internal/repository"
)

var (
	ErrTrialUsed      = errors.New("trial already used")
	ErrUnknownProduct = errors.New("unknown product id")
	ErrBadReceipt     = errors.New("purchase receipt rejected")
)

// PurchaseDetails is what the mobile client reports after a platform
// in-app purchase completes.
type PurchaseDetails struct {
	ProductID             string `json:"productId"`
	TransactionID         string `json:"transactionId"`
	OriginalTransactionID string `json:"originalTransactionId"`
	Receipt               string `json:"receipt"`
}

// ReceiptValidator checks a platform purchase receipt. Cryptographic
// validation against the store is an external collaborator; the default
// implementation only rejects empty receipts.
type ReceiptValidator interface {
	Validate(ctx context.Context, details PurchaseDetails) error
}

type basicReceiptValidator struct{}

func (basicReceiptValidator) Validate(_ context.Context, details PurchaseDetails) error {
	if details.Receipt == "" {
		return ErrBadReceipt
	}
	return nil
}

// NewBasicReceiptValidator returns the default shape-only validator.
func NewBasicReceiptValidator() ReceiptValidator {
	return basicReceiptValidator{}
}

type SubscriptionService struct {
	repo             repository.SubscriptionRepository
	validator        ReceiptValidator
	trialDuration    time.Duration
	productIDMonthly string
	productIDYearly  string
}

func NewSubscriptionService(repo repository.SubscriptionRepository, validator ReceiptValidator, trialDuration time.Duration, productIDMonthly, productIDYearly string) *SubscriptionService {
	return &SubscriptionService{
		repo:             repo,
		validator:        validator,
		trialDuration:    trialDuration,
		productIDMonthly: productIDMonthly,
		productIDYearly:  productIDYearly,
	}
}

// Status derives the entitlement from stored timestamps versus now.
// Absence of a ledger row means free tier.
func (s *SubscriptionService) Status(userID string) (*model.SubscriptionStatus, error) {
	sub, err := s.repo.ByUserID(userID)
	if errors.Is(err, repository.ErrSubscriptionNotFound) {
		return &model.SubscriptionStatus{Tier: model.TierFree}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	now := time.Now()
	active := sub.IsActiveAt(now)

	tier := model.TierFree
	if active {
		tier = model.TierPremium
	}

	return &model.SubscriptionStatus{
		Tier:      tier,
		IsActive:  active,
		ExpiresAt: sub.ExpiresAt,
		ProductID: sub.ProductID,
	}, nil
}

// TrialStatus reports eligibility and the remaining window, both recomputed
// from timestamps on every call.
func (s *SubscriptionService) TrialStatus(userID string) (*model.TrialStatus, error) {
	sub, err := s.repo.ByUserID(userID)
	if errors.Is(err, repository.ErrSubscriptionNotFound) {
		return &model.TrialStatus{IsEligible: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	now := time.Now()
	if sub.TrialActiveAt(now) {
		days := int(math.Ceil(sub.TrialEndsAt.Sub(now).Hours() / 24))
		return &model.TrialStatus{
			IsActive:      true,
			DaysRemaining: &days,
			EndsAt:        sub.TrialEndsAt,
		}, nil
	}

	return &model.TrialStatus{IsEligible: sub.TrialEligibleAt(now)}, nil
}

// StartTrial opens the trial window. Fails when the trial was used before
// or an unexpired window exists.
func (s *SubscriptionService) StartTrial(userID string) (*model.TrialStatus, error) {
	now := time.Now()

	sub, err := s.repo.ByUserID(userID)
	if errors.Is(err, repository.ErrSubscriptionNotFound) {
		sub = s.newLedgerRow(userID, now)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	if !sub.TrialEligibleAt(now) {
		return nil, ErrTrialUsed
	}

	endsAt := now.Add(s.trialDuration)
	sub.HasUsedTrial = true
	sub.TrialStartedAt = &now
	sub.TrialEndsAt = &endsAt
	sub.UpdatedAt = now

	err = s.repo.Upsert(sub)
	if err != nil {
		return nil, fmt.Errorf("failed to start trial: %w", err)
	}

	days := int(math.Ceil(s.trialDuration.Hours() / 24))
	return &model.TrialStatus{
		IsActive:      true,
		DaysRemaining: &days,
		EndsAt:        &endsAt,
	}, nil
}

// RecordPurchase validates the receipt, computes the expiry from the product
// (1 month or 1 year from now), and upserts the ledger row.
func (s *SubscriptionService) RecordPurchase(ctx context.Context, userID string, details PurchaseDetails) (*model.SubscriptionStatus, error) {
	err := s.validator.Validate(ctx, details)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var expiresAt time.Time
	switch details.ProductID {
	case s.productIDMonthly:
		expiresAt = now.AddDate(0, 1, 0)
	case s.productIDYearly:
		expiresAt = now.AddDate(1, 0, 0)
	default:
		return nil, ErrUnknownProduct
	}

	sub, err := s.repo.ByUserID(userID)
	if errors.Is(err, repository.ErrSubscriptionNotFound) {
		sub = s.newLedgerRow(userID, now)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	sub.Tier = model.TierPremium
	sub.ProductID = &details.ProductID
	if details.OriginalTransactionID != "" {
		sub.OriginalTransactionID = &details.OriginalTransactionID
	}
	if details.Receipt != "" {
		sub.LatestReceipt = &details.Receipt
	}
	sub.StartedAt = &now
	sub.ExpiresAt = &expiresAt
	sub.UpdatedAt = now

	err = s.repo.Upsert(sub)
	if err != nil {
		return nil, fmt.Errorf("failed to record purchase: %w", err)
	}

	return &model.SubscriptionStatus{
		Tier:      model.TierPremium,
		IsActive:  true,
		ExpiresAt: &expiresAt,
		ProductID: &details.ProductID,
	}, nil
}

func (s *SubscriptionService) newLedgerRow(userID string, now time.Time) *model.Subscription {
	return &model.Subscription{
		ID:        uuid.New().String(),
		UserID:    userID,
		Tier:      model.TierFree,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
