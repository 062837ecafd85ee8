package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
	"github.com/atvirokodosprendimai/newsroom/internal/core/ports"
)

type ArticleInput struct {
	Title      string
	Headline   string
	Content    string
	Source     string
	CategoryID *int64
	Status     *bool
	ImageURL   string
	TagIDs     []int64
}

type ArticleService struct {
	articles   ports.ArticleRepository
	categories ports.CategoryRepository
	accounts   ports.AccountRepository
	write      AuditedWrite[domain.Article]
	now        func() time.Time
}

func NewArticleService(articles ports.ArticleRepository, categories ports.CategoryRepository, accounts ports.AccountRepository, audit ChangeLogger, logger *slog.Logger) *ArticleService {
	return &ArticleService{
		articles:   articles,
		categories: categories,
		accounts:   accounts,
		write:      NewAuditedWrite[domain.Article](audit, logger),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *ArticleService) List(ctx context.Context, filter domain.ArticleFilter) ([]domain.Article, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	articles, err := s.articles.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

func (s *ArticleService) Get(ctx context.Context, id int64) (domain.Article, error) {
	return s.articles.Get(ctx, id)
}

func (s *ArticleService) Create(ctx context.Context, actor string, in ArticleInput) (domain.Article, error) {
	in = normalizeArticleInput(in)
	return s.write.Create(ctx, actor,
		func(ctx context.Context) error {
			return s.validate(ctx, in)
		},
		func(ctx context.Context) (domain.Article, error) {
			author, err := s.resolveAuthor(ctx, actor)
			if err != nil {
				return domain.Article{}, err
			}
			status := true
			if in.Status != nil {
				status = *in.Status
			}
			return s.articles.Create(ctx, domain.Article{
				Title:       in.Title,
				Headline:    in.Headline,
				Content:     in.Content,
				Source:      in.Source,
				CategoryID:  in.CategoryID,
				Status:      status,
				CreatedByID: author,
				CreatedAt:   s.now(),
				ImageURL:    in.ImageURL,
				TagIDs:      in.TagIDs,
			}, domain.NormalizeActor(actor))
		},
	)
}

// Update replaces every editable field and the full tag set.
func (s *ArticleService) Update(ctx context.Context, actor string, id int64, in ArticleInput) (domain.Article, error) {
	in = normalizeArticleInput(in)
	return s.write.Update(ctx, actor, s.loader(id),
		func(ctx context.Context, _ domain.Article) error {
			return s.validate(ctx, in)
		},
		func(ctx context.Context, current domain.Article) (domain.Article, error) {
			editor, err := s.resolveAuthor(ctx, actor)
			if err != nil {
				return domain.Article{}, err
			}
			modified := s.now()
			current.Title = in.Title
			current.Headline = in.Headline
			current.Content = in.Content
			current.Source = in.Source
			current.CategoryID = in.CategoryID
			if in.Status != nil {
				current.Status = *in.Status
			}
			current.ImageURL = in.ImageURL
			current.UpdatedByID = editor
			current.ModifiedAt = &modified
			current.TagIDs = in.TagIDs
			return s.articles.Update(ctx, current)
		},
	)
}

func (s *ArticleService) Delete(ctx context.Context, actor string, id int64) error {
	return s.write.Delete(ctx, actor, s.loader(id), nil,
		func(ctx context.Context, current domain.Article) error {
			return s.articles.Delete(ctx, current.ID)
		},
	)
}

func (s *ArticleService) loader(id int64) func(context.Context) (domain.Article, error) {
	return func(ctx context.Context) (domain.Article, error) {
		return s.articles.Get(ctx, id)
	}
}

func (s *ArticleService) validate(ctx context.Context, in ArticleInput) error {
	if in.Title == "" {
		return domain.NewValidationError(domain.RuleArticleTitleRequired, "news title is required")
	}
	if in.CategoryID == nil {
		return nil
	}
	if _, err := s.categories.Get(ctx, *in.CategoryID); err != nil {
		if errorsIsNotFound(err) {
			return domain.NewValidationError(domain.RuleCategoryNotFound, "category does not exist")
		}
		return err
	}
	return nil
}

// resolveAuthor maps the actor email to an account id; callers without an account stay anonymous.
func (s *ArticleService) resolveAuthor(ctx context.Context, actor string) (*int64, error) {
	email := strings.TrimSpace(actor)
	if email == "" {
		return nil, nil
	}
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errorsIsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve author: %w", err)
	}
	return &account.ID, nil
}

func normalizeArticleInput(in ArticleInput) ArticleInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Headline = strings.TrimSpace(in.Headline)
	in.Source = strings.TrimSpace(in.Source)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	ids := slices.Clone(in.TagIDs)
	slices.Sort(ids)
	in.TagIDs = slices.Compact(ids)
	return in
}
