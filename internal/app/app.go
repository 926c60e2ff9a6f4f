package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/stakeproof/stakeproof/internal/config"
	"github.com/stakeproof/stakeproof/internal/db"
	"github.com/stakeproof/stakeproof/internal/realtime"
	"github.com/stakeproof/stakeproof/internal/repository"
	"github.com/stakeproof/stakeproof/internal/service"
	"github.com/stakeproof/stakeproof/internal/storage"
)

type App struct {
	Cfg                 *config.Config
	DB                  *sqlx.DB
	Hub                 *realtime.Hub
	AuthService         *service.AuthService
	GoalService         *service.GoalService
	InviteService       *service.InviteService
	ProofService        *service.ProofService
	VerifierService     *service.VerifierService
	SubscriptionService *service.SubscriptionService
	ProfileService      *service.ProfileService

	classifier service.Classifier
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	goalRepository := repository.NewGoalRepository(database)
	participantRepository := repository.NewParticipantRepository(database)
	proofRepository := repository.NewProofRepository(database)
	subscriptionRepository := repository.NewSubscriptionRepository(database)
	profileRepository := repository.NewProfileRepository(database)

	// Storage
	proofStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	hub := realtime.NewHub()

	// Verification: the Gemini client is a lifecycle-scoped handle owned by
	// the App and closed on shutdown. Development may run without it; proofs
	// then stay pending.
	var classifier service.Classifier
	var verifier *service.VerifierService
	if cfg.GoogleProject != "" {
		classifier, err = service.NewGeminiClassifier(
			context.Background(),
			cfg.GoogleProject,
			cfg.GoogleLocation,
			cfg.GoogleCredentials,
			cfg.GeminiModel,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize verifier: %v", err)
		}
		verifier = service.NewVerifierService(proofRepository, classifier, hub, cfg.VerifyTimeout)
	} else {
		slog.Warn("GOOGLE_CLOUD_PROJECT not set, proof verification disabled")
	}

	// Services
	authService := service.NewAuthService(userRepository, cfg.JWTSecret)
	goalService := service.NewGoalService(goalRepository, participantRepository)
	inviteService := service.NewInviteService(participantRepository, goalRepository, userRepository)
	subscriptionService := service.NewSubscriptionService(
		subscriptionRepository,
		service.NewBasicReceiptValidator(),
		cfg.TrialDuration,
		cfg.ProductIDMonthly,
		cfg.ProductIDYearly,
	)

	profileService := service.NewProfileService(profileRepository)

	var proofService *service.ProofService
	if verifier != nil {
		proofService = service.NewProofService(proofRepository, goalRepository, participantRepository, proofStorage, verifier)
	} else {
		proofService = service.NewProofService(proofRepository, goalRepository, participantRepository, proofStorage, nil)
	}

	return &App{
		Cfg:                 cfg,
		DB:                  database,
		Hub:                 hub,
		AuthService:         authService,
		GoalService:         goalService,
		InviteService:       inviteService,
		ProofService:        proofService,
		VerifierService:     verifier,
		SubscriptionService: subscriptionService,
		ProfileService:      profileService,
		classifier:          classifier,
	}, nil
}

func (a *App) Close() error {
	if a.classifier != nil {
		err := a.classifier.Close()
		if err != nil {
			slog.Error("failed to close classifier", "error", err)
		}
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
