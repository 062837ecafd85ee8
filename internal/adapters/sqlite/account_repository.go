package sqlite

import (
	"context"

	"github.com/atvirokodosprendimai/newsroom/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
)

type AccountRepository struct {
	db *gormsqlite.DB
}

func NewAccountRepository(db *gormsqlite.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) List(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	var rows []accountModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		query := tx.Model(&accountModel{})
		if filter.Search != "" {
			query = query.Where("("+containsExpr("account_name")+" OR "+containsExpr("account_email")+")", filter.Search, filter.Search)
		}
		if filter.Role != nil {
			query = query.Where("account_role = ?", int(*filter.Role))
		}
		return query.Order("account_id ASC").Find(&rows).Error
	})
	if err != nil {
		return nil, storageErr("list accounts", err)
	}
	result := make([]domain.Account, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDomain())
	}
	return result, nil
}

func (r *AccountRepository) Get(ctx context.Context, id int64) (domain.Account, error) {
	var row accountModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("account_id = ?", id).First(&row).Error
	})
	if err != nil {
		return domain.Account{}, storageErr("get account", err)
	}
	return row.toDomain(), nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	var row accountModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("lower(account_email) = lower(?)", email).First(&row).Error
	})
	if err != nil {
		return domain.Account{}, storageErr("get account by email", err)
	}
	return row.toDomain(), nil
}

func (r *AccountRepository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	var n int64
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Model(&accountModel{}).
			Where("lower(account_email) = lower(?) AND account_id <> ?", email, excludeID).
			Count(&n).Error
	})
	if err != nil {
		return false, storageErr("check account email", err)
	}
	return n > 0, nil
}

func (r *AccountRepository) HasArticles(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Model(&articleModel{}).Where("created_by_id = ?", id).Count(&n).Error
	})
	if err != nil {
		return false, storageErr("count account articles", err)
	}
	return n > 0, nil
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	row := accountModel{
		Email:        account.Email,
		Name:         account.Name,
		Role:         int(account.Role),
		PasswordHash: account.PasswordHash,
	}
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		return domain.Account{}, storageErr("insert account", err)
	}
	return row.toDomain(), nil
}

func (r *AccountRepository) Update(ctx context.Context, account domain.Account) (domain.Account, error) {
	var row accountModel
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Model(&accountModel{}).
			Where("account_id = ?", account.ID).
			Updates(map[string]any{
				"account_email": account.Email,
				"account_name":  account.Name,
				"account_role":  int(account.Role),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return tx.Where("account_id = ?", account.ID).First(&row).Error
	})
	if err != nil {
		return domain.Account{}, storageErr("update account", err)
	}
	return row.toDomain(), nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Model(&accountModel{}).Where("account_id = ?", id).Update("account_password", passwordHash)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	return storageErr("update account password", err)
}

func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Where("account_id = ?", id).Delete(&accountModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	return storageErr("delete account", err)
}
