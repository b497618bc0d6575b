package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Lala-Rental/lala-rental-backend/pkg/auth"
	"github.com/Lala-Rental/lala-rental-backend/pkg/config"
	"github.com/Lala-Rental/lala-rental-backend/pkg/contracts"
	apperrors "github.com/Lala-Rental/lala-rental-backend/pkg/errors"
	"github.com/Lala-Rental/lala-rental-backend/pkg/events"
	"github.com/Lala-Rental/lala-rental-backend/pkg/google"
	"github.com/Lala-Rental/lala-rental-backend/pkg/model"
)

const publishTimeout = 5 * time.Second

// IdentityProvider resolves a third-party access token to a profile.
type IdentityProvider interface {
	UserInfo(ctx context.Context, accessToken string) (*google.UserInfo, error)
}

type TokenIssuer interface {
	Issue(user *model.User) (string, time.Time, error)
}

type UserStore interface {
	Upsert(ctx context.Context, user *model.User) (*model.User, bool, error)
	Lookup(ctx context.Context, id string) (*model.User, error)
}

type SignInResponse struct {
	User      *model.User `json:"user"`
	AuthToken string      `json:"auth_token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

type AuthService interface {
	SignInWithGoogle(ctx context.Context, accessToken string) (*SignInResponse, error)
	Me(ctx context.Context, actor *auth.Actor) (*model.User, error)
}

type authService struct {
	provider  IdentityProvider
	tokens    TokenIssuer
	users     UserStore
	publisher contracts.EventPublisher
	cfg       *config.Config
	now       func() time.Time
}

func NewAuthService(
	provider IdentityProvider,
	tokens TokenIssuer,
	users UserStore,
	publisher contracts.EventPublisher,
	cfg *config.Config,
) AuthService {
	return &authService{
		provider:  provider,
		tokens:    tokens,
		users:     users,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *authService) SignInWithGoogle(ctx context.Context, accessToken string) (*SignInResponse, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, apperrors.InvalidInput("token is required")
	}

	info, err := s.provider.UserInfo(ctx, accessToken)
	if err != nil {
		switch {
		case errors.Is(err, google.ErrInvalidToken):
			return nil, apperrors.Unauthorized("Invalid Google token")
		case errors.Is(err, google.ErrEmailRequired):
			return nil, apperrors.InvalidInput("Google account has no email address")
		default:
			s.cfg.Log.Error("Google userinfo lookup failed", "error", err)
			return nil, apperrors.Unavailable("google")
		}
	}

	user, created, err := s.users.Upsert(ctx, &model.User{
		Name:     info.Name,
		Email:    info.Email,
		Avatar:   info.Picture,
		Role:     model.RoleRenter,
		Verified: true,
	})
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		s.cfg.Log.Error("Failed to issue access token", "user_id", user.ID, "error", err)
		return nil, apperrors.Internal("Failed to issue access token", err)
	}

	if created {
		s.publishRegistered(ctx, user)
	}

	s.cfg.Log.Info("User signed in", "user_id", user.ID, "new_user", created)
	return &SignInResponse{User: user, AuthToken: token, ExpiresAt: expiresAt}, nil
}

func (s *authService) Me(ctx context.Context, actor *auth.Actor) (*model.User, error) {
	if actor == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	return s.users.Lookup(ctx, actor.ID)
}

func (s *authService) publishRegistered(ctx context.Context, user *model.User) {
	if s.publisher == nil {
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := events.UserRegisteredEvent{
		UserID:     user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       string(user.Role),
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(pubCtx, events.TypeUserRegistered, user.ID, event); err != nil {
		s.cfg.Log.Error("Failed to publish user event",
			"event_type", events.TypeUserRegistered,
			"user_id", user.ID,
			"error", err,
		)
	}
}
