package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/task-management-demo/database"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"
)

// Config configures the auth module.
type Config struct {
	Database   database.Config
	AutoEnroll bool
	BcryptCost int
}

// AuthModule provides the login stub.
type AuthModule struct {
	config  Config
	logger  types.Logger
	db      *gorm.DB
	service *AuthService
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*AuthModule)(nil)
	_ mono.ServiceProviderModule = (*AuthModule)(nil)
	_ mono.HealthCheckableModule = (*AuthModule)(nil)
)

// NewModule creates a new AuthModule.
func NewModule(config Config, logger types.Logger) *AuthModule {
	return &AuthModule{
		config: config,
		logger: logger,
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start opens the database and builds the service.
func (m *AuthModule) Start(_ context.Context) error {
	db, err := database.Open(m.config.Database)
	if err != nil {
		return err
	}
	m.db = db

	repo := NewUserRepository(db)
	if err := repo.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	m.service = NewAuthService(repo, NewPasswordHasher(m.config.BcryptCost), m.config.AutoEnroll, m.logger)

	m.logger.Info("Auth module started", "autoEnroll", m.config.AutoEnroll)
	return nil
}

// Stop closes the database connection.
func (m *AuthModule) Stop(_ context.Context) error {
	if m.db != nil {
		if err := database.Close(m.db); err != nil {
			return err
		}
	}
	m.logger.Info("Auth module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"autoEnroll": m.config.AutoEnroll,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		"login",
		json.Unmarshal,
		json.Marshal,
		m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}

	m.logger.Info("Registered auth services", "services", []string{"login"})
	return nil
}

// handleLogin handles login requests.
func (m *AuthModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (LoginResponse, error) {
	ok, err := m.service.Login(ctx, req.Username, req.Password)
	if err != nil {
		return LoginResponse{}, err
	}
	return LoginResponse{Success: ok}, nil
}
