package sqlite

import (
	"context"

	"github.com/atvirokodosprendimai/newsroom/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
)

type TagRepository struct {
	db *gormsqlite.DB
}

func NewTagRepository(db *gormsqlite.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) List(ctx context.Context, search string) ([]domain.Tag, error) {
	var rows []tagModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		query := tx.Model(&tagModel{})
		if search != "" {
			query = query.Where(containsExpr("tag_name"), search)
		}
		return query.Order("tag_id ASC").Find(&rows).Error
	})
	if err != nil {
		return nil, storageErr("list tags", err)
	}
	result := make([]domain.Tag, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDomain())
	}
	return result, nil
}

func (r *TagRepository) Get(ctx context.Context, id int64) (domain.Tag, error) {
	var row tagModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("tag_id = ?", id).First(&row).Error
	})
	if err != nil {
		return domain.Tag{}, storageErr("get tag", err)
	}
	return row.toDomain(), nil
}

func (r *TagRepository) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	var n int64
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Model(&tagModel{}).Where("lower(tag_name) = lower(?) AND tag_id <> ?", name, excludeID).Count(&n).Error
	})
	if err != nil {
		return false, storageErr("check tag name", err)
	}
	return n > 0, nil
}

func (r *TagRepository) IsReferenced(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Model(&newsTagModel{}).Where("tag_id = ?", id).Count(&n).Error
	})
	if err != nil {
		return false, storageErr("count tag references", err)
	}
	return n > 0, nil
}

func (r *TagRepository) Create(ctx context.Context, tag domain.Tag) (domain.Tag, error) {
	row := tagModel{Name: tag.Name, Note: tag.Note}
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		return domain.Tag{}, storageErr("insert tag", err)
	}
	return row.toDomain(), nil
}

func (r *TagRepository) Update(ctx context.Context, tag domain.Tag) (domain.Tag, error) {
	var row tagModel
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Model(&tagModel{}).
			Where("tag_id = ?", tag.ID).
			Updates(map[string]any{"tag_name": tag.Name, "note": tag.Note})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return tx.Where("tag_id = ?", tag.ID).First(&row).Error
	})
	if err != nil {
		return domain.Tag{}, storageErr("update tag", err)
	}
	return row.toDomain(), nil
}

func (r *TagRepository) Delete(ctx context.Context, id int64) error {
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Where("tag_id = ?", id).Delete(&tagModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	return storageErr("delete tag", err)
}
