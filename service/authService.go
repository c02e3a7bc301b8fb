package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eventsoc/soc-backend/entity"
	"github.com/eventsoc/soc-backend/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// TokenLedger is the revocation deny-list consulted on every admission.
type TokenLedger interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// SubjectStore resolves token subjects and login emails against stored
// credentials, and persists the admin flag.
type SubjectStore interface {
	FindOneByID(ctx context.Context, id bson.ObjectID) (*entity.User, error)
	FindOneByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdateAdmin(ctx context.Context, id bson.ObjectID, admin bool) (int64, error)
}

// AuthContext is the admission decision threaded through protected calls.
// It is never cached across requests; every protected call re-admits.
type AuthContext struct {
	UserID    bson.ObjectID
	Admin     bool
	TokenID   string
	ExpiresAt time.Time
}

type AuthService struct {
	tokens *TokenService
	ledger TokenLedger
	users  SubjectStore
}

func NewAuthService(tokens *TokenService, ledger TokenLedger, users SubjectStore) *AuthService {
	return &AuthService{
		tokens: tokens,
		ledger: ledger,
		users:  users,
	}
}

// Admit decides whether the bearer of rawToken may proceed. Checks run in a
// fixed order and fail fast: signature and expiry, then the revocation
// ledger, then the privilege claim, then subject existence. Admit has no
// side effects.
func (s *AuthService) Admit(ctx context.Context, rawToken string, requireAdmin bool) (*AuthContext, error) {
	claims, err := s.tokens.Validate(rawToken)
	if err != nil {
		return nil, err
	}

	revoked, err := s.ledger.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: revocation lookup: %w", ErrPersistence, err)
	}
	if revoked {
		return nil, ErrRevokedToken
	}

	if requireAdmin && !claims.Admin {
		return nil, ErrInsufficientPrivilege
	}

	subjectID, err := bson.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.FindOneByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, fmt.Errorf("%w: subject lookup: %w", ErrPersistence, err)
	}

	return &AuthContext{
		UserID:    user.ID,
		Admin:     claims.Admin,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Login verifies credentials and issues a fresh token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *entity.User, error) {
	user, err := s.users.FindOneByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("%w: user lookup: %w", ErrPersistence, err)
	}

	if err := ComparePasswordAndHash(password, user.Password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, _, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// SetAdmin grants or revokes the admin privilege. Tokens already in
// flight keep the claim they were issued with until they expire; the flag
// takes effect on the next login.
func (s *AuthService) SetAdmin(ctx context.Context, id bson.ObjectID, admin bool) error {
	matched, err := s.users.UpdateAdmin(ctx, id, admin)
	if err != nil {
		return fmt.Errorf("%w: update admin flag: %w", ErrPersistence, err)
	}
	if matched == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Logout writes the token id to the revocation ledger. The entry outlives
// its usefulness exactly when the token expires.
func (s *AuthService) Logout(ctx context.Context, auth *AuthContext) error {
	if err := s.ledger.Revoke(ctx, auth.TokenID, auth.ExpiresAt); err != nil {
		return fmt.Errorf("%w: revoke token: %w", ErrPersistence, err)
	}
	return nil
}
