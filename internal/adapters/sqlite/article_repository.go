package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/atvirokodosprendimai/newsroom/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
)

// ArticleRepository also owns the news_tags join table and enqueues the
// article.created outbox event in the insert transaction.
type ArticleRepository struct {
	db *gormsqlite.DB
}

func NewArticleRepository(db *gormsqlite.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) List(ctx context.Context, filter domain.ArticleFilter) ([]domain.Article, error) {
	var rows []articleModel
	tagsByArticle := map[int64][]int64{}
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		query := tx.Model(&articleModel{})
		if filter.Search != "" {
			query = query.Where("("+containsExpr("news_title")+" OR "+containsExpr("headline")+")", filter.Search, filter.Search)
		}
		if filter.CategoryID != nil {
			query = query.Where("category_id = ?", *filter.CategoryID)
		}
		if filter.Status != nil {
			query = query.Where("news_status = ?", *filter.Status)
		}
		if err := query.Order("created_date DESC, news_article_id DESC").Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		ids := make([]int64, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.ID)
		}
		var links []newsTagModel
		if err := tx.Where("news_article_id IN ?", ids).Order("tag_id ASC").Find(&links).Error; err != nil {
			return err
		}
		for _, l := range links {
			tagsByArticle[l.ArticleID] = append(tagsByArticle[l.ArticleID], l.TagID)
		}
		return nil
	})
	if err != nil {
		return nil, storageErr("list articles", err)
	}
	result := make([]domain.Article, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDomain(tagsByArticle[row.ID]))
	}
	return result, nil
}

func (r *ArticleRepository) Get(ctx context.Context, id int64) (domain.Article, error) {
	var article domain.Article
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		var err error
		article, err = loadArticle(tx, id)
		return err
	})
	if err != nil {
		return domain.Article{}, storageErr("get article", err)
	}
	return article, nil
}

func (r *ArticleRepository) Create(ctx context.Context, article domain.Article, actor string) (domain.Article, error) {
	row := toArticleModel(article)
	var created domain.Article
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if err := replaceArticleTags(tx, row.ID, article.TagIDs); err != nil {
			return err
		}
		if err := insertArticleCreatedEvent(tx, row, actor); err != nil {
			return err
		}
		var err error
		created, err = loadArticle(tx, row.ID)
		return err
	})
	if err != nil {
		return domain.Article{}, storageErr("insert article", err)
	}
	return created, nil
}

func (r *ArticleRepository) Update(ctx context.Context, article domain.Article) (domain.Article, error) {
	var updated domain.Article
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Model(&articleModel{}).
			Where("news_article_id = ?", article.ID).
			Updates(map[string]any{
				"news_title":    article.Title,
				"headline":      article.Headline,
				"news_content":  article.Content,
				"news_source":   article.Source,
				"category_id":   article.CategoryID,
				"news_status":   article.Status,
				"updated_by_id": article.UpdatedByID,
				"modified_date": article.ModifiedAt,
				"image_url":     article.ImageURL,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		if err := replaceArticleTags(tx, article.ID, article.TagIDs); err != nil {
			return err
		}
		var err error
		updated, err = loadArticle(tx, article.ID)
		return err
	})
	if err != nil {
		return domain.Article{}, storageErr("update article", err)
	}
	return updated, nil
}

func (r *ArticleRepository) Delete(ctx context.Context, id int64) error {
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		if err := tx.Where("news_article_id = ?", id).Delete(&newsTagModel{}).Error; err != nil {
			return err
		}
		res := tx.Where("news_article_id = ?", id).Delete(&articleModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	return storageErr("delete article", err)
}

func loadArticle(tx *gormsqlite.Tx, id int64) (domain.Article, error) {
	var row articleModel
	if err := tx.Where("news_article_id = ?", id).First(&row).Error; err != nil {
		return domain.Article{}, err
	}
	var tagIDs []int64
	if err := tx.Model(&newsTagModel{}).
		Where("news_article_id = ?", id).
		Order("tag_id ASC").
		Pluck("tag_id", &tagIDs).Error; err != nil {
		return domain.Article{}, err
	}
	return row.toDomain(tagIDs), nil
}

// replaceArticleTags clears the article's tags and links the ones that exist.
func replaceArticleTags(tx *gormsqlite.Tx, articleID int64, tagIDs []int64) error {
	if err := tx.Where("news_article_id = ?", articleID).Delete(&newsTagModel{}).Error; err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}
	var known []int64
	if err := tx.Model(&tagModel{}).Where("tag_id IN ?", tagIDs).Pluck("tag_id", &known).Error; err != nil {
		return err
	}
	if len(known) == 0 {
		return nil
	}
	links := make([]newsTagModel, 0, len(known))
	for _, id := range known {
		links = append(links, newsTagModel{ArticleID: articleID, TagID: id})
	}
	return tx.Create(&links).Error
}

func insertArticleCreatedEvent(tx *gormsqlite.Tx, row articleModel, actor string) error {
	payload, err := json.Marshal(domain.ArticleCreatedPayload{
		NewsArticleID: row.ID,
		NewsTitle:     row.Title,
		Headline:      row.Headline,
		CreatedByID:   row.CreatedByID,
	})
	if err != nil {
		return fmt.Errorf("encode article payload: %w", err)
	}
	now := time.Now().UTC()
	envelope := domain.EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     domain.EventArticleCreated,
		SchemaVersion: domain.CurrentEventSchemaVersion,
		AggregateType: domain.EntityArticle,
		AggregateID:   strconv.FormatInt(row.ID, 10),
		OccurredAt:    now,
		Actor:         actor,
		Payload:       payload,
	}
	envelopeJSON, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode event envelope: %w", err)
	}
	return tx.Create(&outboxEventModel{
		EventID:       envelope.EventID,
		Topic:         domain.TopicArticles,
		PayloadJSON:   string(envelopeJSON),
		Status:        domain.OutboxStatusPending,
		NextAttemptAt: now,
		CreatedAt:     now,
	}).Error
}

func toArticleModel(a domain.Article) articleModel {
	return articleModel{
		Title:       a.Title,
		Headline:    a.Headline,
		Content:     a.Content,
		Source:      a.Source,
		CategoryID:  a.CategoryID,
		Status:      a.Status,
		CreatedByID: a.CreatedByID,
		UpdatedByID: a.UpdatedByID,
		CreatedAt:   a.CreatedAt,
		ModifiedAt:  a.ModifiedAt,
		ImageURL:    a.ImageURL,
	}
}
