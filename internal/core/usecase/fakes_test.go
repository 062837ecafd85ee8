package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeDB is an in-memory primary store shared by the fake repositories below.
type fakeDB struct {
	mu         sync.Mutex
	nextID     int64
	accounts   map[int64]domain.Account
	categories map[int64]domain.Category
	tags       map[int64]domain.Tag
	articles   map[int64]domain.Article
	createdBy  map[int64]string
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		accounts:   map[int64]domain.Account{},
		categories: map[int64]domain.Category{},
		tags:       map[int64]domain.Tag{},
		articles:   map[int64]domain.Article{},
		createdBy:  map[int64]string{},
	}
}

func (db *fakeDB) id() int64 {
	db.nextID++
	return db.nextID
}

type fakeTags struct{ db *fakeDB }

func (r fakeTags) List(_ context.Context, search string) ([]domain.Tag, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []domain.Tag{}
	for _, t := range r.db.tags {
		if search == "" || strings.Contains(strings.ToLower(t.Name), strings.ToLower(search)) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeTags) Get(_ context.Context, id int64) (domain.Tag, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tags[id]
	if !ok {
		return domain.Tag{}, domain.ErrNotFound
	}
	return t, nil
}

func (r fakeTags) NameExists(_ context.Context, name string, excludeID int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, t := range r.db.tags {
		if strings.EqualFold(t.Name, name) && t.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeTags) IsReferenced(_ context.Context, id int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.articles {
		if slices.Contains(a.TagIDs, id) {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeTags) Create(_ context.Context, tag domain.Tag) (domain.Tag, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	tag.ID = r.db.id()
	r.db.tags[tag.ID] = tag
	return tag, nil
}

func (r fakeTags) Update(_ context.Context, tag domain.Tag) (domain.Tag, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.tags[tag.ID]; !ok {
		return domain.Tag{}, domain.ErrNotFound
	}
	r.db.tags[tag.ID] = tag
	return tag, nil
}

func (r fakeTags) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.tags, id)
	return nil
}

type fakeCategories struct{ db *fakeDB }

func (r fakeCategories) List(_ context.Context, _ string) ([]domain.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []domain.Category{}
	for _, c := range r.db.categories {
		out = append(out, c)
	}
	return out, nil
}

func (r fakeCategories) ListWithArticleCount(ctx context.Context, search string) ([]domain.CategoryWithArticleCount, error) {
	cats, _ := r.List(ctx, search)
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]domain.CategoryWithArticleCount, 0, len(cats))
	for _, c := range cats {
		row := domain.CategoryWithArticleCount{Category: c}
		for _, a := range r.db.articles {
			if a.CategoryID != nil && *a.CategoryID == c.ID {
				row.ArticleCount++
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func (r fakeCategories) Get(_ context.Context, id int64) (domain.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.categories[id]
	if !ok {
		return domain.Category{}, domain.ErrNotFound
	}
	return c, nil
}

func (r fakeCategories) NameExists(_ context.Context, name string, excludeID int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, c := range r.db.categories {
		if strings.EqualFold(c.Name, name) && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeCategories) HasArticles(_ context.Context, id int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.articles {
		if a.CategoryID != nil && *a.CategoryID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeCategories) HasChildren(_ context.Context, id int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, c := range r.db.categories {
		if c.ParentID != nil && *c.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeCategories) Create(_ context.Context, c domain.Category) (domain.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c.ID = r.db.id()
	r.db.categories[c.ID] = c
	return c, nil
}

func (r fakeCategories) Update(_ context.Context, c domain.Category) (domain.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.categories[c.ID] = c
	return c, nil
}

func (r fakeCategories) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.categories, id)
	return nil
}

type fakeAccounts struct{ db *fakeDB }

func (r fakeAccounts) List(_ context.Context, _ domain.AccountFilter) ([]domain.Account, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []domain.Account{}
	for _, a := range r.db.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (r fakeAccounts) Get(_ context.Context, id int64) (domain.Account, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return a, nil
}

func (r fakeAccounts) GetByEmail(_ context.Context, email string) (domain.Account, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return domain.Account{}, domain.ErrNotFound
}

func (r fakeAccounts) EmailExists(_ context.Context, email string, excludeID int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.accounts {
		if strings.EqualFold(a.Email, email) && a.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeAccounts) HasArticles(_ context.Context, id int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.articles {
		if a.CreatedByID != nil && *a.CreatedByID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeAccounts) Create(_ context.Context, a domain.Account) (domain.Account, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a.ID = r.db.id()
	r.db.accounts[a.ID] = a
	return a, nil
}

func (r fakeAccounts) Update(_ context.Context, a domain.Account) (domain.Account, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.accounts[a.ID]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	a.PasswordHash = stored.PasswordHash
	r.db.accounts[a.ID] = a
	return a, nil
}

func (r fakeAccounts) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.accounts[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.PasswordHash = hash
	r.db.accounts[id] = a
	return nil
}

func (r fakeAccounts) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.accounts, id)
	return nil
}

type fakeArticles struct{ db *fakeDB }

func (r fakeArticles) List(_ context.Context, _ domain.ArticleFilter) ([]domain.Article, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []domain.Article{}
	for _, a := range r.db.articles {
		out = append(out, a)
	}
	return out, nil
}

func (r fakeArticles) Get(_ context.Context, id int64) (domain.Article, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.articles[id]
	if !ok {
		return domain.Article{}, domain.ErrNotFound
	}
	a.TagIDs = slices.Clone(a.TagIDs)
	return a, nil
}

func (r fakeArticles) knownTags(ids []int64) []int64 {
	out := []int64{}
	for _, id := range ids {
		if _, ok := r.db.tags[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func (r fakeArticles) Create(_ context.Context, a domain.Article, actor string) (domain.Article, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a.ID = r.db.id()
	a.TagIDs = r.knownTags(a.TagIDs)
	r.db.articles[a.ID] = a
	r.db.createdBy[a.ID] = actor
	return a, nil
}

func (r fakeArticles) Update(_ context.Context, a domain.Article) (domain.Article, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.articles[a.ID]; !ok {
		return domain.Article{}, domain.ErrNotFound
	}
	a.TagIDs = r.knownTags(a.TagIDs)
	r.db.articles[a.ID] = a
	return a, nil
}

func (r fakeArticles) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.articles, id)
	return nil
}

// fakeAuditStore appends in memory; set failWith to make every Append fail.
type fakeAuditStore struct {
	mu       sync.Mutex
	records  []domain.AuditRecord
	failWith error
	clock    time.Time
}

func (s *fakeAuditStore) Append(ctx context.Context, rec domain.AuditRecord) (domain.AuditRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return domain.AuditRecord{}, err
	}
	if s.failWith != nil {
		return domain.AuditRecord{}, &domain.StorageError{Op: "append audit record", Err: s.failWith}
	}
	if s.clock.IsZero() {
		s.clock = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	s.clock = s.clock.Add(time.Second)
	rec.ID = int64(len(s.records) + 1)
	rec.Timestamp = s.clock
	s.records = append(s.records, rec)
	return rec, nil
}

func (s *fakeAuditStore) Query(_ context.Context, q domain.AuditQuery) ([]domain.AuditRecord, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := []domain.AuditRecord{}
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if q.Actor != "" && !strings.Contains(strings.ToLower(r.Actor), strings.ToLower(q.Actor)) {
			continue
		}
		if q.EntityType != "" && r.EntityType != q.EntityType {
			continue
		}
		matched = append(matched, r)
	}
	start := (q.PageNumber - 1) * q.PageSize
	if start >= len(matched) {
		return []domain.AuditRecord{}, int64(len(matched)), nil
	}
	end := min(start+q.PageSize, len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func (s *fakeAuditStore) all() []domain.AuditRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records)
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

var errAuditDown = errors.New("audit database unavailable")

type fixture struct {
	db         *fakeDB
	audit      *fakeAuditStore
	auditSvc   *AuditService
	tags       *TagService
	categories *CategoryService
	accounts   *AccountService
	articles   *ArticleService
}

func newFixture(logger *slog.Logger) *fixture {
	if logger == nil {
		logger = discardLogger()
	}
	db := newFakeDB()
	store := &fakeAuditStore{}
	auditSvc := NewAuditService(store)
	f := &fixture{
		db:         db,
		audit:      store,
		auditSvc:   auditSvc,
		tags:       NewTagService(fakeTags{db}, auditSvc, logger),
		categories: NewCategoryService(fakeCategories{db}, auditSvc, logger),
		accounts:   NewAccountService(fakeAccounts{db}, auditSvc, logger),
		articles:   NewArticleService(fakeArticles{db}, fakeCategories{db}, fakeAccounts{db}, auditSvc, logger),
	}
	f.accounts.hashCost = 4 // bcrypt.MinCost
	return f
}
