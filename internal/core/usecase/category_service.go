package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
	"github.com/atvirokodosprendimai/newsroom/internal/core/ports"
)

type CategoryInput struct {
	Name        string
	Description string
	ParentID    *int64
	IsActive    *bool
}

type CategoryService struct {
	repo  ports.CategoryRepository
	write AuditedWrite[domain.Category]
}

func NewCategoryService(repo ports.CategoryRepository, audit ChangeLogger, logger *slog.Logger) *CategoryService {
	return &CategoryService{repo: repo, write: NewAuditedWrite[domain.Category](audit, logger)}
}

func (s *CategoryService) List(ctx context.Context, search string) ([]domain.Category, error) {
	categories, err := s.repo.List(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) ListWithArticleCount(ctx context.Context, search string) ([]domain.CategoryWithArticleCount, error) {
	categories, err := s.repo.ListWithArticleCount(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("list categories with article count: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) Get(ctx context.Context, id int64) (domain.Category, error) {
	return s.repo.Get(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, actor string, in CategoryInput) (domain.Category, error) {
	in = normalizeCategoryInput(in)
	return s.write.Create(ctx, actor,
		func(ctx context.Context) error {
			if err := s.validateFields(ctx, in, 0); err != nil {
				return err
			}
			return s.validateParent(ctx, in.ParentID, 0)
		},
		func(ctx context.Context) (domain.Category, error) {
			active := true
			if in.IsActive != nil {
				active = *in.IsActive
			}
			return s.repo.Create(ctx, domain.Category{
				Name:        in.Name,
				Description: in.Description,
				ParentID:    in.ParentID,
				IsActive:    active,
			})
		},
	)
}

func (s *CategoryService) Update(ctx context.Context, actor string, id int64, in CategoryInput) (domain.Category, error) {
	in = normalizeCategoryInput(in)
	return s.write.Update(ctx, actor, s.loader(id),
		func(ctx context.Context, current domain.Category) error {
			if err := s.validateFields(ctx, in, current.ID); err != nil {
				return err
			}
			if current.SameParent(in.ParentID) {
				return nil
			}
			hasArticles, err := s.repo.HasArticles(ctx, current.ID)
			if err != nil {
				return err
			}
			if hasArticles {
				return domain.NewValidationError(domain.RuleCategoryParentLocked, "cannot change the parent category because this category is used by articles")
			}
			return s.validateParent(ctx, in.ParentID, current.ID)
		},
		func(ctx context.Context, current domain.Category) (domain.Category, error) {
			current.Name = in.Name
			current.Description = in.Description
			current.ParentID = in.ParentID
			if in.IsActive != nil {
				current.IsActive = *in.IsActive
			}
			return s.repo.Update(ctx, current)
		},
	)
}

// ToggleActive flips the active flag. It is recorded as an ordinary update.
func (s *CategoryService) ToggleActive(ctx context.Context, actor string, id int64) (domain.Category, error) {
	return s.write.Update(ctx, actor, s.loader(id), nil,
		func(ctx context.Context, current domain.Category) (domain.Category, error) {
			current.IsActive = !current.IsActive
			return s.repo.Update(ctx, current)
		},
	)
}

func (s *CategoryService) Delete(ctx context.Context, actor string, id int64) error {
	return s.write.Delete(ctx, actor, s.loader(id),
		func(ctx context.Context, current domain.Category) error {
			hasArticles, err := s.repo.HasArticles(ctx, current.ID)
			if err != nil {
				return err
			}
			if hasArticles {
				return domain.NewValidationError(domain.RuleCategoryInUse, "cannot delete category as it is used by news articles")
			}
			hasChildren, err := s.repo.HasChildren(ctx, current.ID)
			if err != nil {
				return err
			}
			if hasChildren {
				return domain.NewValidationError(domain.RuleCategoryHasChildren, "cannot delete category while other categories use it as parent")
			}
			return nil
		},
		func(ctx context.Context, current domain.Category) error {
			return s.repo.Delete(ctx, current.ID)
		},
	)
}

func (s *CategoryService) loader(id int64) func(context.Context) (domain.Category, error) {
	return func(ctx context.Context) (domain.Category, error) {
		return s.repo.Get(ctx, id)
	}
}

func (s *CategoryService) validateFields(ctx context.Context, in CategoryInput, excludeID int64) error {
	if in.Name == "" || in.Description == "" {
		return domain.NewValidationError(domain.RuleCategoryNameRequired, "category name and description are required")
	}
	taken, err := s.repo.NameExists(ctx, in.Name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return domain.NewValidationError(domain.RuleCategoryNameTaken, "category name already exists")
	}
	return nil
}

func (s *CategoryService) validateParent(ctx context.Context, parentID *int64, selfID int64) error {
	if parentID == nil {
		return nil
	}
	if selfID != 0 && *parentID == selfID {
		return domain.NewValidationError(domain.RuleCategoryParentSelf, "a category cannot be its own parent")
	}
	if _, err := s.repo.Get(ctx, *parentID); err != nil {
		if errorsIsNotFound(err) {
			return domain.NewValidationError(domain.RuleCategoryNotFound, "parent category does not exist")
		}
		return err
	}
	return nil
}

func normalizeCategoryInput(in CategoryInput) CategoryInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	return in
}
