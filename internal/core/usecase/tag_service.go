package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
	"github.com/atvirokodosprendimai/newsroom/internal/core/ports"
)

type TagInput struct {
	Name string
	Note string
}

type TagService struct {
	repo  ports.TagRepository
	write AuditedWrite[domain.Tag]
}

func NewTagService(repo ports.TagRepository, audit ChangeLogger, logger *slog.Logger) *TagService {
	return &TagService{repo: repo, write: NewAuditedWrite[domain.Tag](audit, logger)}
}

func (s *TagService) List(ctx context.Context, search string) ([]domain.Tag, error) {
	tags, err := s.repo.List(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

func (s *TagService) Get(ctx context.Context, id int64) (domain.Tag, error) {
	return s.repo.Get(ctx, id)
}

func (s *TagService) Create(ctx context.Context, actor string, in TagInput) (domain.Tag, error) {
	in = normalizeTagInput(in)
	return s.write.Create(ctx, actor,
		func(ctx context.Context) error {
			return s.validateName(ctx, in.Name, 0)
		},
		func(ctx context.Context) (domain.Tag, error) {
			return s.repo.Create(ctx, domain.Tag{Name: in.Name, Note: in.Note})
		},
	)
}

func (s *TagService) Update(ctx context.Context, actor string, id int64, in TagInput) (domain.Tag, error) {
	in = normalizeTagInput(in)
	if in.Name == "" {
		return domain.Tag{}, domain.NewValidationError(domain.RuleTagNameRequired, "tag name cannot be empty")
	}
	return s.write.Update(ctx, actor, s.loader(id),
		func(ctx context.Context, current domain.Tag) error {
			return s.validateName(ctx, in.Name, current.ID)
		},
		func(ctx context.Context, current domain.Tag) (domain.Tag, error) {
			current.Name = in.Name
			current.Note = in.Note
			return s.repo.Update(ctx, current)
		},
	)
}

func (s *TagService) Delete(ctx context.Context, actor string, id int64) error {
	return s.write.Delete(ctx, actor, s.loader(id),
		func(ctx context.Context, current domain.Tag) error {
			used, err := s.repo.IsReferenced(ctx, current.ID)
			if err != nil {
				return err
			}
			if used {
				return domain.NewValidationError(domain.RuleTagInUse, "cannot delete this tag: it is used by one or more news articles")
			}
			return nil
		},
		func(ctx context.Context, current domain.Tag) error {
			return s.repo.Delete(ctx, current.ID)
		},
	)
}

func (s *TagService) loader(id int64) func(context.Context) (domain.Tag, error) {
	return func(ctx context.Context) (domain.Tag, error) {
		return s.repo.Get(ctx, id)
	}
}

func (s *TagService) validateName(ctx context.Context, name string, excludeID int64) error {
	if name == "" {
		return domain.NewValidationError(domain.RuleTagNameRequired, "tag name cannot be empty")
	}
	taken, err := s.repo.NameExists(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return domain.NewValidationError(domain.RuleTagNameTaken, "tag name already exists")
	}
	return nil
}

func normalizeTagInput(in TagInput) TagInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Note = strings.TrimSpace(in.Note)
	return in
}
