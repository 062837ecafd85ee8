package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
	"github.com/atvirokodosprendimai/newsroom/internal/core/ports"
)

const minPasswordLength = 6

type AccountInput struct {
	Email    string
	Name     string
	Role     domain.AccountRole
	Password string
}

type AccountUpdate struct {
	Email string
	Name  string
	Role  domain.AccountRole
}

type AccountService struct {
	repo     ports.AccountRepository
	write    AuditedWrite[domain.Account]
	hashCost int
}

func NewAccountService(repo ports.AccountRepository, audit ChangeLogger, logger *slog.Logger) *AccountService {
	return &AccountService{
		repo:     repo,
		write:    NewAuditedWrite[domain.Account](audit, logger),
		hashCost: bcrypt.DefaultCost,
	}
}

func (s *AccountService) List(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	accounts, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func (s *AccountService) Get(ctx context.Context, id int64) (domain.Account, error) {
	return s.repo.Get(ctx, id)
}

func (s *AccountService) Create(ctx context.Context, actor string, in AccountInput) (domain.Account, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	return s.write.Create(ctx, actor,
		func(ctx context.Context) error {
			if !in.Role.Valid() {
				return domain.NewValidationError(domain.RuleAccountRoleInvalid, "account role must be 1 or 2")
			}
			if len(in.Password) < minPasswordLength {
				return domain.NewValidationError(domain.RulePasswordTooShort, "password must be at least 6 characters")
			}
			return s.validateEmail(ctx, in.Email, 0)
		},
		func(ctx context.Context) (domain.Account, error) {
			hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
			if err != nil {
				return domain.Account{}, fmt.Errorf("hash password: %w", err)
			}
			return s.repo.Create(ctx, domain.Account{
				Email:        in.Email,
				Name:         in.Name,
				Role:         in.Role,
				PasswordHash: string(hash),
			})
		},
	)
}

func (s *AccountService) Update(ctx context.Context, actor string, id int64, in AccountUpdate) (domain.Account, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	return s.write.Update(ctx, actor, s.loader(id),
		func(ctx context.Context, current domain.Account) error {
			if !in.Role.Valid() {
				return domain.NewValidationError(domain.RuleAccountRoleInvalid, "account role must be 1 or 2")
			}
			return s.validateEmail(ctx, in.Email, current.ID)
		},
		func(ctx context.Context, current domain.Account) (domain.Account, error) {
			current.Email = in.Email
			current.Name = in.Name
			current.Role = in.Role
			return s.repo.Update(ctx, current)
		},
	)
}

// passwordChangeSnapshot stands in for both sides of a password change; hashes never reach the log.
type passwordChangeSnapshot struct {
	ChangeType string `json:"changeType"`
}

func (s *AccountService) ChangePassword(ctx context.Context, actor string, id int64, currentPassword, newPassword string) error {
	_, err := s.write.exec(ctx, actor, writeStep[domain.Account]{
		action: domain.ActionChangePassword,
		load:   s.loader(id),
		validate: func(_ context.Context, current domain.Account) error {
			if bcrypt.CompareHashAndPassword([]byte(current.PasswordHash), []byte(currentPassword)) != nil {
				return domain.NewValidationError(domain.RulePasswordMismatch, "current password is incorrect")
			}
			if len(newPassword) < minPasswordLength {
				return domain.NewValidationError(domain.RulePasswordTooShort, "new password must be at least 6 characters")
			}
			return nil
		},
		apply: func(ctx context.Context, current domain.Account) (domain.Account, error) {
			hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost)
			if err != nil {
				return domain.Account{}, fmt.Errorf("hash password: %w", err)
			}
			if err := s.repo.UpdatePassword(ctx, current.ID, string(hash)); err != nil {
				return domain.Account{}, err
			}
			current.PasswordHash = string(hash)
			return current, nil
		},
		snapshot: func(domain.Account) any {
			return passwordChangeSnapshot{ChangeType: "Password Updated"}
		},
	})
	return err
}

func (s *AccountService) Delete(ctx context.Context, actor string, id int64) error {
	return s.write.Delete(ctx, actor, s.loader(id),
		func(ctx context.Context, current domain.Account) error {
			hasArticles, err := s.repo.HasArticles(ctx, current.ID)
			if err != nil {
				return err
			}
			if hasArticles {
				return domain.NewValidationError(domain.RuleAccountHasArticles, "cannot delete this account as it has created news articles")
			}
			return nil
		},
		func(ctx context.Context, current domain.Account) error {
			return s.repo.Delete(ctx, current.ID)
		},
	)
}

func (s *AccountService) loader(id int64) func(context.Context) (domain.Account, error) {
	return func(ctx context.Context) (domain.Account, error) {
		return s.repo.Get(ctx, id)
	}
}

func (s *AccountService) validateEmail(ctx context.Context, email string, excludeID int64) error {
	taken, err := s.repo.EmailExists(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return domain.NewValidationError(domain.RuleAccountEmailTaken, "email already exists")
	}
	return nil
}
