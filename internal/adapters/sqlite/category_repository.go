package sqlite

import (
	"context"

	"github.com/atvirokodosprendimai/newsroom/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
)

type CategoryRepository struct {
	db *gormsqlite.DB
}

func NewCategoryRepository(db *gormsqlite.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context, search string) ([]domain.Category, error) {
	var rows []categoryModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		query := tx.Model(&categoryModel{})
		if search != "" {
			query = query.Where("("+containsExpr("category_name")+" OR "+containsExpr("category_description")+")", search, search)
		}
		return query.Order("category_id ASC").Find(&rows).Error
	})
	if err != nil {
		return nil, storageErr("list categories", err)
	}
	result := make([]domain.Category, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDomain())
	}
	return result, nil
}

type categoryCountRow struct {
	categoryModel
	ParentName   *string `gorm:"column:parent_name"`
	ArticleCount int64   `gorm:"column:article_count"`
}

func (r *CategoryRepository) ListWithArticleCount(ctx context.Context, search string) ([]domain.CategoryWithArticleCount, error) {
	var rows []categoryCountRow
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		query := tx.Table("categories AS c").
			Select(`c.category_id, c.category_name, c.category_description, c.parent_category_id, c.is_active,
				p.category_name AS parent_name,
				(SELECT count(*) FROM news_articles a WHERE a.category_id = c.category_id) AS article_count`).
			Joins("LEFT JOIN categories AS p ON p.category_id = c.parent_category_id")
		if search != "" {
			query = query.Where("("+containsExpr("c.category_name")+" OR "+containsExpr("c.category_description")+")", search, search)
		}
		return query.Order("c.category_id ASC").Scan(&rows).Error
	})
	if err != nil {
		return nil, storageErr("list categories with article count", err)
	}
	result := make([]domain.CategoryWithArticleCount, 0, len(rows))
	for _, row := range rows {
		item := domain.CategoryWithArticleCount{
			Category:     row.toDomain(),
			ArticleCount: row.ArticleCount,
		}
		if row.ParentName != nil {
			item.ParentName = *row.ParentName
		}
		result = append(result, item)
	}
	return result, nil
}

func (r *CategoryRepository) Get(ctx context.Context, id int64) (domain.Category, error) {
	var row categoryModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("category_id = ?", id).First(&row).Error
	})
	if err != nil {
		return domain.Category{}, storageErr("get category", err)
	}
	return row.toDomain(), nil
}

func (r *CategoryRepository) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	var n int64
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Model(&categoryModel{}).
			Where("lower(category_name) = lower(?) AND category_id <> ?", name, excludeID).
			Count(&n).Error
	})
	if err != nil {
		return false, storageErr("check category name", err)
	}
	return n > 0, nil
}

func (r *CategoryRepository) HasArticles(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Model(&articleModel{}).Where("category_id = ?", id).Count(&n).Error
	})
	if err != nil {
		return false, storageErr("count category articles", err)
	}
	return n > 0, nil
}

func (r *CategoryRepository) HasChildren(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Model(&categoryModel{}).Where("parent_category_id = ?", id).Count(&n).Error
	})
	if err != nil {
		return false, storageErr("count child categories", err)
	}
	return n > 0, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category domain.Category) (domain.Category, error) {
	row := categoryModel{
		Name:        category.Name,
		Description: category.Description,
		ParentID:    category.ParentID,
		IsActive:    category.IsActive,
	}
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		return domain.Category{}, storageErr("insert category", err)
	}
	return row.toDomain(), nil
}

func (r *CategoryRepository) Update(ctx context.Context, category domain.Category) (domain.Category, error) {
	var row categoryModel
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Model(&categoryModel{}).
			Where("category_id = ?", category.ID).
			Updates(map[string]any{
				"category_name":        category.Name,
				"category_description": category.Description,
				"parent_category_id":   category.ParentID,
				"is_active":            category.IsActive,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return tx.Where("category_id = ?", category.ID).First(&row).Error
	})
	if err != nil {
		return domain.Category{}, storageErr("update category", err)
	}
	return row.toDomain(), nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Where("category_id = ?", id).Delete(&categoryModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	return storageErr("delete category", err)
}
