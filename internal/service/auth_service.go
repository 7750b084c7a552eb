package service

import (
	"context"
	"errors"
	"time"

	"github.com/Safwa9amar/safwanPos-sub000/internal/access"
	"github.com/Safwa9amar/safwanPos-sub000/internal/dto"
	"github.com/Safwa9amar/safwanPos-sub000/internal/model"
	"github.com/Safwa9amar/safwanPos-sub000/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 12

// AuthService issues the session token the route gate reads.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (token string, resp *dto.LoginResponse, err error)
	Subscription(ctx context.Context, tenantID uuid.UUID) (*dto.SubscriptionResponse, error)
}

type authService struct {
	users   repository.UserRepository
	tenants repository.TenantRepository
	secret  string
	ttl     time.Duration
	now     func() time.Time
}

func NewAuthService(users repository.UserRepository, tenants repository.TenantRepository, secret string, ttl time.Duration) AuthService {
	return &authService{users: users, tenants: tenants, secret: secret, ttl: ttl, now: time.Now}
}

// HashPassword returns the bcrypt hash stored in User.PasswordHash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (string, *dto.LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	status := model.SubscriptionInactive
	var trialEnds *time.Time
	if user.Tenant != nil {
		status = user.Tenant.SubscriptionStatus
		trialEnds = user.Tenant.TrialEndsAt
	}

	claims := access.Claims{
		UserID:             user.ID.String(),
		TenantID:           user.TenantID.String(),
		Role:               user.Role,
		SubscriptionStatus: status,
	}
	if trialEnds != nil {
		claims.TrialEndsAt = jwt.NewNumericDate(*trialEnds)
	}
	token, err := access.IssueToken(s.secret, claims, s.now(), s.ttl)
	if err != nil {
		return "", nil, err
	}

	return token, &dto.LoginResponse{
		User: dto.UserResponse{
			ID:       user.ID.String(),
			TenantID: user.TenantID.String(),
			Email:    user.Email,
			Name:     user.Name,
			Role:     user.Role,
		},
		SubscriptionStatus: status,
		TrialEndsAt:        timePtrString(trialEnds),
		ExpiresIn:          int(s.ttl.Seconds()),
	}, nil
}

// Subscription reads the tenant's current status, which may be fresher than the token's.
func (s *authService) Subscription(ctx context.Context, tenantID uuid.UUID) (*dto.SubscriptionResponse, error) {
	t, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	claims := &access.Claims{SubscriptionStatus: t.SubscriptionStatus}
	if t.TrialEndsAt != nil {
		claims.TrialEndsAt = jwt.NewNumericDate(*t.TrialEndsAt)
	}
	return &dto.SubscriptionResponse{
		Status:      t.SubscriptionStatus,
		TrialEndsAt: timePtrString(t.TrialEndsAt),
		Expired:     access.SubscriptionExpired(claims, s.now()),
	}, nil
}

func timePtrString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
