package auth

import (
	"context"
	"fmt"
	"time"

	domain "github.com/example/task-management-demo/domain/user"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// SystemUser is recorded as creator and modifier of auto-enrolled accounts.
const SystemUser = "SYSTEM"

// AuthService implements the placeholder login. It is not a security boundary:
// unknown usernames are enrolled on first login when AutoEnroll is set.
type AuthService struct {
	repo       *UserRepository
	hasher     *PasswordHasher
	autoEnroll bool
	logger     types.Logger
	now        func() time.Time
	enrolling  singleflight.Group // one enrollment per username at a time
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *UserRepository, hasher *PasswordHasher, autoEnroll bool, logger types.Logger) *AuthService {
	return &AuthService{
		repo:       repo,
		hasher:     hasher,
		autoEnroll: autoEnroll,
		logger:     logger,
		now:        time.Now,
	}
}

// Login reports whether username and password are accepted. A known user must
// present the matching password; an unknown user is enrolled and accepted.
func (s *AuthService) Login(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if user != nil {
		return s.hasher.Verify(password, user.PasswordHash), nil
	}

	if !s.autoEnroll {
		return false, nil
	}

	val, err, _ := s.enrolling.Do(username, func() (any, error) {
		return s.enroll(ctx, username, password)
	})
	if err != nil {
		return false, err
	}

	// Concurrent first logins share one enrollment; each caller still has to
	// present the password that was stored.
	enrolled, ok := val.(*domain.User)
	if !ok || enrolled == nil {
		return false, nil
	}
	return s.hasher.Verify(password, enrolled.PasswordHash), nil
}

func (s *AuthService) enroll(ctx context.Context, username, password string) (*domain.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		CreatedBy:    SystemUser,
		CreatedOn:    now,
		ModifiedBy:   SystemUser,
		ModifiedOn:   now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		// Another process may have enrolled the same username first.
		existing, findErr := s.repo.FindByUsername(ctx, username)
		if findErr != nil || existing == nil {
			return nil, err
		}
		return existing, nil
	}

	s.logger.Info("Enrolled new user on first login", "username", username, "userID", user.ID)
	return user, nil
}
