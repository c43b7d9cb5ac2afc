package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type addressGormRepository struct {
	db *gorm.DB
}

// DI
func NewAddressGormRepository(db *gorm.DB) repo.AddressRepository {
	return &addressGormRepository{db: db}
}

// 住所を作成
func (r *addressGormRepository) Create(ctx context.Context, address *model.Address) error {
	return wrap(r.db.WithContext(ctx).Create(address).Error)
}

// デフォルトが先頭、あとは新しい順
func (r *addressGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	var list []model.Address
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC, id DESC").
		Find(&list).Error; err != nil {
		return nil, wrap(err)
	}
	return list, nil
}

// 他人の住所は存在しない扱い
func (r *addressGormRepository) FindByIDForUser(ctx context.Context, addressID, userID int64) (model.Address, error) {
	var a model.Address
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		First(&a).Error; err != nil {
		return model.Address{}, notFoundOr(err)
	}
	return a, nil
}

func (r *addressGormRepository) CountByUserID(ctx context.Context, userID int64) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&model.Address{}).
		Where("user_id = ?", userID).
		Count(&n).Error; err != nil {
		return 0, wrap(err)
	}
	return n, nil
}

// 住所を更新
func (r *addressGormRepository) Update(ctx context.Context, address model.Address) error {
	result := r.db.WithContext(ctx).
		Model(&model.Address{}).
		Where("id = ? AND user_id = ?", address.ID, address.UserID).
		Select(
			"name",
			"phone",
			"province",
			"city",
			"region",
			"detail_address",
			"is_default",
			"updated_at",
		).
		Updates(address)

	if result.Error != nil {
		return wrap(result.Error)
	}
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 住所を削除
func (r *addressGormRepository) Delete(ctx context.Context, addressID int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", addressID).
		Delete(&model.Address{})

	if result.Error != nil {
		return wrap(result.Error)
	}
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// そのユーザーのdefaultを全てfalse（exceptIDは除く）
func (r *addressGormRepository) ClearDefault(ctx context.Context, userID int64, exceptID int64) error {
	q := r.db.WithContext(ctx).
		Model(&model.Address{}).
		Where("user_id = ? AND is_default = TRUE", userID)
	if exceptID > 0 {
		q = q.Where("id <> ?", exceptID)
	}
	return wrap(q.Update("is_default", false).Error)
}

// 指定住所だけ true
func (r *addressGormRepository) MarkDefault(ctx context.Context, addressID int64) error {
	result := r.db.WithContext(ctx).
		Model(&model.Address{}).
		Where("id = ?", addressID).
		Update("is_default", true)

	if result.Error != nil {
		return wrap(result.Error)
	}
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// デフォルトを消したあとの繰り上げ
func (r *addressGormRepository) PromoteOldest(ctx context.Context, userID int64) error {
	var oldest model.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		First(&oldest).Error
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return wrap(err)
	}
	return r.MarkDefault(ctx, oldest.ID)
}
