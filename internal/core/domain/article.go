package domain

import "time"

const EntityArticle = "NewsArticle"

type Article struct {
	ID          int64
	Title       string
	Headline    string
	Content     string
	Source      string
	CategoryID  *int64
	Status      bool
	CreatedByID *int64
	UpdatedByID *int64
	CreatedAt   time.Time
	ModifiedAt  *time.Time
	ImageURL    string
	TagIDs      []int64
}

// ArticleSnapshot keeps the content in full; it is the only copy of the prior text.
type ArticleSnapshot struct {
	NewsArticleID int64      `json:"newsArticleId"`
	NewsTitle     string     `json:"newsTitle"`
	Headline      string     `json:"headline"`
	NewsContent   string     `json:"newsContent"`
	NewsSource    string     `json:"newsSource"`
	CategoryID    *int64     `json:"categoryId"`
	NewsStatus    bool       `json:"newsStatus"`
	CreatedByID   *int64     `json:"createdById"`
	UpdatedByID   *int64     `json:"updatedById"`
	CreatedDate   time.Time  `json:"createdDate"`
	ModifiedDate  *time.Time `json:"modifiedDate"`
	ImageURL      string     `json:"imageUrl"`
	TagIDs        []int64    `json:"tagIds"`
}

func (a Article) EntityName() string { return EntityArticle }

func (a Article) AuditKey() any {
	return map[string]int64{"newsArticleId": a.ID}
}

func (a Article) AuditSnapshot() any {
	tagIDs := append([]int64{}, a.TagIDs...)
	return ArticleSnapshot{
		NewsArticleID: a.ID,
		NewsTitle:     a.Title,
		Headline:      a.Headline,
		NewsContent:   a.Content,
		NewsSource:    a.Source,
		CategoryID:    a.CategoryID,
		NewsStatus:    a.Status,
		CreatedByID:   a.CreatedByID,
		UpdatedByID:   a.UpdatedByID,
		CreatedDate:   a.CreatedAt,
		ModifiedDate:  a.ModifiedAt,
		ImageURL:      a.ImageURL,
		TagIDs:        tagIDs,
	}
}

type ArticleFilter struct {
	Search     string
	CategoryID *int64
	Status     *bool
}
