package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stakeproof/stakeproof/internal/model"
	"github.com/stakeproof/stakeproof/internal/repository"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// TokenClaims is the subset of identity-provider claims the API uses.
type TokenClaims struct {
	UserID      string
	Email       string
	DisplayName string
}

// AuthService verifies bearer tokens issued by the hosted identity provider
// (shared-secret HS256) and provisions local user rows from their claims.
// Sign-up, sessions and password flows live in the provider, not here.
type AuthService struct {
	users     repository.UserRepository
	jwtSecret string
}

func NewAuthService(users repository.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: jwtSecret,
	}
}

// VerifyToken parses and validates the bearer token.
func (s *AuthService) VerifyToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}

	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)

	return &TokenClaims{
		UserID:      sub,
		Email:       email,
		DisplayName: name,
	}, nil
}

// EnsureUser provisions or refreshes the local user row for the claims.
func (s *AuthService) EnsureUser(claims *TokenClaims) (*model.User, error) {
	user := &model.User{
		ID:          claims.UserID,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		CreatedAt:   time.Now(),
	}

	err := s.users.Upsert(user)
	if err != nil {
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}

	return s.users.ByID(claims.UserID)
}
