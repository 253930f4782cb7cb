package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stroke-warning-system/internal/domain"
	"stroke-warning-system/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService checks credentials and manages login accounts.
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, error)
	// EnsureDefaultUsers creates the two seed accounts when missing.
	EnsureDefaultUsers(ctx context.Context) (int, error)
}

type authService struct {
	usersRepo repository.UsersRepository
	logger    *zap.Logger
}

func NewAuthService(usersRepo repository.UsersRepository, logger *zap.Logger) AuthService {
	return &authService{usersRepo: usersRepo, logger: logger}
}

// DefaultUsers are created on first boot when SEED_USERS is on.
var DefaultUsers = []CreateUserRequest{
	{Username: "doctor1", Password: "doctor123", Role: domain.RoleDoctor},
	{Username: "datascientist1", Password: "ds123", Role: domain.RoleDataScientist},
}

type LoginRequest struct {
	Username  string
	Password  string
	IPAddress string // for logs only
}

type LoginResponse struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	HomePath string `json:"homePath"`
}

// HomePath is where a role lands after login.
func HomePath(role string) string {
	if role == domain.RoleDoctor {
		return "/doctor/dashboard"
	}
	return "/data_scientist/dashboard"
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		s.logger.Warn("User login failed: missing credentials",
			zap.String("ip_address", req.IPAddress),
			zap.String("reason", "missing_credentials"),
		)
		return nil, ErrInvalidCredentials
	}

	user, err := s.usersRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("User login failed: unknown user",
				zap.String("username", req.Username),
				zap.String("ip_address", req.IPAddress),
				zap.String("reason", "unknown_user"),
			)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("User login failed: wrong password",
			zap.String("username", req.Username),
			zap.String("ip_address", req.IPAddress),
			zap.String("reason", "wrong_password"),
		)
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("User logged in",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", user.Role),
	)
	return &LoginResponse{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		HomePath: HomePath(user.Role),
	}, nil
}

type CreateUserRequest struct {
	Username string
	Password string
	Role     string
}

func (s *authService) CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	user, err := newUser(req)
	if err != nil {
		return nil, err
	}
	if err := s.usersRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	s.logger.Info("User created",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", user.Role),
	)
	return user, nil
}

func (s *authService) EnsureDefaultUsers(ctx context.Context) (int, error) {
	created := 0
	for _, req := range DefaultUsers {
		user, err := newUser(req)
		if err != nil {
			return created, err
		}
		ok, err := s.usersRepo.EnsureUser(ctx, user)
		if err != nil {
			return created, fmt.Errorf("failed to seed user %s: %w", req.Username, err)
		}
		if ok {
			created++
			s.logger.Info("Seed user created", zap.String("username", req.Username), zap.String("role", req.Role))
		}
	}
	return created, nil
}

func newUser(req CreateUserRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)
	switch {
	case username == "":
		return nil, missingField("username")
	case len(username) > 80:
		return nil, invalidField("username", "at most 80 characters")
	case req.Password == "":
		return nil, missingField("password")
	case !domain.ValidRole(req.Role):
		return nil, invalidField("role", fmt.Sprintf("must be %s or %s", domain.RoleDoctor, domain.RoleDataScientist))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return &domain.User{Username: username, PasswordHash: string(hash), Role: req.Role}, nil
}
