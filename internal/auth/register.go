package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/binflowhq/binflow-backend/internal/users"
	"github.com/binflowhq/binflow-backend/pkg/config"
	"github.com/binflowhq/binflow-backend/pkg/db"
	"github.com/binflowhq/binflow-backend/pkg/db/models"
	"github.com/binflowhq/binflow-backend/pkg/enums"
	pkgerrors "github.com/binflowhq/binflow-backend/pkg/errors"
	"github.com/binflowhq/binflow-backend/pkg/security"
)

// RegisterService handles tenant onboarding: one transaction creates the
// tenant and its first admin account.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             txRunner
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          txRunner
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	slug := strings.ToLower(strings.TrimSpace(req.TenantSlug))
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant slug is required")
	}
	name := strings.TrimSpace(req.TenantName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant name is required")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(req.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var resp RegisterResponse
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var existing models.Tenant
		if err := tx.First(&existing, "slug = ?", slug).Error; err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "tenant slug already in use")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		tenant := &models.Tenant{
			ID:       uuid.New(),
			Name:     name,
			Slug:     slug,
			IsActive: true,
		}
		if err := tx.Create(tenant).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert tenant")
		}

		user := &models.User{
			ID:           uuid.New(),
			TenantID:     tenant.ID,
			Email:        email,
			PasswordHash: hash,
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
			Role:         enums.UserRoleAdmin,
			IsActive:     true,
		}
		if err := users.NewRepository(tx).Create(ctx, user); err != nil {
			if db.IsUniqueViolation(err, "users_email_key") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert user")
		}

		resp = RegisterResponse{TenantID: tenant.ID, UserID: user.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
