package sqlite

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
)

type accountModel struct {
	ID           int64  `gorm:"column:account_id;primaryKey;autoIncrement"`
	Email        string `gorm:"column:account_email;not null"`
	Name         string `gorm:"column:account_name;not null"`
	Role         int    `gorm:"column:account_role;not null"`
	PasswordHash string `gorm:"column:account_password;not null"`
}

func (accountModel) TableName() string {
	return "accounts"
}

func (m accountModel) toDomain() domain.Account {
	return domain.Account{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		Role:         domain.AccountRole(m.Role),
		PasswordHash: m.PasswordHash,
	}
}

type categoryModel struct {
	ID          int64  `gorm:"column:category_id;primaryKey;autoIncrement"`
	Name        string `gorm:"column:category_name;not null"`
	Description string `gorm:"column:category_description;not null"`
	ParentID    *int64 `gorm:"column:parent_category_id"`
	IsActive    bool   `gorm:"column:is_active;not null"`
}

func (categoryModel) TableName() string {
	return "categories"
}

func (m categoryModel) toDomain() domain.Category {
	return domain.Category{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		ParentID:    m.ParentID,
		IsActive:    m.IsActive,
	}
}

type tagModel struct {
	ID   int64  `gorm:"column:tag_id;primaryKey;autoIncrement"`
	Name string `gorm:"column:tag_name;not null"`
	Note string `gorm:"column:note;not null"`
}

func (tagModel) TableName() string {
	return "tags"
}

func (m tagModel) toDomain() domain.Tag {
	return domain.Tag{ID: m.ID, Name: m.Name, Note: m.Note}
}

type articleModel struct {
	ID          int64      `gorm:"column:news_article_id;primaryKey;autoIncrement"`
	Title       string     `gorm:"column:news_title;not null"`
	Headline    string     `gorm:"column:headline;not null"`
	Content     string     `gorm:"column:news_content;not null"`
	Source      string     `gorm:"column:news_source;not null"`
	CategoryID  *int64     `gorm:"column:category_id"`
	Status      bool       `gorm:"column:news_status;not null"`
	CreatedByID *int64     `gorm:"column:created_by_id"`
	UpdatedByID *int64     `gorm:"column:updated_by_id"`
	CreatedAt   time.Time  `gorm:"column:created_date;not null"`
	ModifiedAt  *time.Time `gorm:"column:modified_date"`
	ImageURL    string     `gorm:"column:image_url;not null"`
}

func (articleModel) TableName() string {
	return "news_articles"
}

func (m articleModel) toDomain(tagIDs []int64) domain.Article {
	if tagIDs == nil {
		tagIDs = []int64{}
	}
	return domain.Article{
		ID:          m.ID,
		Title:       m.Title,
		Headline:    m.Headline,
		Content:     m.Content,
		Source:      m.Source,
		CategoryID:  m.CategoryID,
		Status:      m.Status,
		CreatedByID: m.CreatedByID,
		UpdatedByID: m.UpdatedByID,
		CreatedAt:   m.CreatedAt,
		ModifiedAt:  m.ModifiedAt,
		ImageURL:    m.ImageURL,
		TagIDs:      tagIDs,
	}
}

type newsTagModel struct {
	ArticleID int64 `gorm:"column:news_article_id;primaryKey"`
	TagID     int64 `gorm:"column:tag_id;primaryKey"`
}

func (newsTagModel) TableName() string {
	return "news_tags"
}

type auditLogModel struct {
	ID         int64     `gorm:"column:audit_log_id;primaryKey;autoIncrement"`
	UserEmail  string    `gorm:"column:user_email;not null"`
	Action     string    `gorm:"column:action;not null"`
	EntityName string    `gorm:"column:entity_name;not null"`
	Timestamp  time.Time `gorm:"column:timestamp;not null"`
	KeyValues  string    `gorm:"column:key_values;not null"`
	OldValues  *string   `gorm:"column:old_values"`
	NewValues  *string   `gorm:"column:new_values"`
}

func (auditLogModel) TableName() string {
	return "audit_logs"
}

type outboxEventModel struct {
	ID            int64      `gorm:"column:id;primaryKey;autoIncrement"`
	EventID       string     `gorm:"column:event_id;not null"`
	Topic         string     `gorm:"column:topic;not null"`
	PayloadJSON   string     `gorm:"column:payload_json;not null"`
	Status        string     `gorm:"column:status;not null"`
	Attempts      int        `gorm:"column:attempts;not null"`
	NextAttemptAt time.Time  `gorm:"column:next_attempt_at;not null"`
	LastError     string     `gorm:"column:last_error;not null"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null"`
	DispatchedAt  *time.Time `gorm:"column:dispatched_at"`
}

func (outboxEventModel) TableName() string {
	return "outbox_events"
}

// storageErr maps a missing row to domain.ErrNotFound and wraps everything else.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotFound
	}
	return domain.NewStorageError(op, err)
}

func containsExpr(column string) string {
	return "instr(lower(" + column + "), lower(?)) > 0"
}
