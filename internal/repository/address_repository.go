package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 住所(Address)を保存・取得する窓口
type AddressRepository interface {
	//Create は住所を新規作成する。
	Create(ctx context.Context, address *model.Address) error

	//デフォルト→新しい順
	ListByUserID(ctx context.Context, userID int64) ([]model.Address, error)

	//他人の住所はErrNotFound
	FindByIDForUser(ctx context.Context, addressID, userID int64) (model.Address, error)

	CountByUserID(ctx context.Context, userID int64) (int64, error)

	//住所の更新。
	Update(ctx context.Context, address model.Address) error

	//住所の削除。
	Delete(ctx context.Context, addressID int64) error

	//ユーザーのデフォルトを全部外す（exceptIDは残す、0なら全部）
	ClearDefault(ctx context.Context, userID int64, exceptID int64) error

	//1件をデフォルトにする
	MarkDefault(ctx context.Context, addressID int64) error

	//一番古い住所をデフォルトにする（無ければ何もしない）
	PromoteOldest(ctx context.Context, userID int64) error
}
