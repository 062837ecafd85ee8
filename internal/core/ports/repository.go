package ports

import (
	"context"

	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
)

// Name/email existence checks take the id to exclude; 0 excludes nothing.

type AccountRepository interface {
	List(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error)
	Get(ctx context.Context, id int64) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	HasArticles(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, account domain.Account) (domain.Account, error)
	// Update writes profile fields only; the password hash is untouched.
	Update(ctx context.Context, account domain.Account) (domain.Account, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
}

type CategoryRepository interface {
	List(ctx context.Context, search string) ([]domain.Category, error)
	ListWithArticleCount(ctx context.Context, search string) ([]domain.CategoryWithArticleCount, error)
	Get(ctx context.Context, id int64) (domain.Category, error)
	NameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	HasArticles(ctx context.Context, id int64) (bool, error)
	HasChildren(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, category domain.Category) (domain.Category, error)
	Update(ctx context.Context, category domain.Category) (domain.Category, error)
	Delete(ctx context.Context, id int64) error
}

type TagRepository interface {
	List(ctx context.Context, search string) ([]domain.Tag, error)
	Get(ctx context.Context, id int64) (domain.Tag, error)
	NameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	IsReferenced(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, tag domain.Tag) (domain.Tag, error)
	Update(ctx context.Context, tag domain.Tag) (domain.Tag, error)
	Delete(ctx context.Context, id int64) error
}

// ArticleRepository replaces tag associations wholesale on Create and Update;
// unknown tag ids are dropped. Returned articles are reloaded after the write.
type ArticleRepository interface {
	List(ctx context.Context, filter domain.ArticleFilter) ([]domain.Article, error)
	Get(ctx context.Context, id int64) (domain.Article, error)
	Create(ctx context.Context, article domain.Article, actor string) (domain.Article, error)
	Update(ctx context.Context, article domain.Article) (domain.Article, error)
	Delete(ctx context.Context, id int64) error
}
