package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// usecaseがValidatorInterfaceに依存する約束
type AddressValidator interface {
	ValidateAddress(ctx context.Context, a model.Address) error
}

type AddressOutput struct {
	model.Address
	FullAddress string `json:"full_address"`
}

type CreateAddressInput struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Province      string `json:"province"`
	City          string `json:"city"`
	Region        string `json:"region"`
	DetailAddress string `json:"detail_address"`
	IsDefault     bool   `json:"is_default"`
}

// nilの項目は変更しない
type UpdateAddressInput struct {
	Name          *string `json:"name"`
	Phone         *string `json:"phone"`
	Province      *string `json:"province"`
	City          *string `json:"city"`
	Region        *string `json:"region"`
	DetailAddress *string `json:"detail_address"`
	IsDefault     *bool   `json:"is_default"`
}

type AddressUsecase struct {
	tx        repo.TransactionManager
	addresses repo.AddressRepository
	validator AddressValidator
}

func NewAddressUsecase(tx repo.TransactionManager, addresses repo.AddressRepository, validator AddressValidator) *AddressUsecase {
	return &AddressUsecase{tx: tx, addresses: addresses, validator: validator}
}

func toAddressOutput(a model.Address) AddressOutput {
	return AddressOutput{Address: a, FullAddress: a.FullAddress()}
}

var errAddressNotFound = NewHTTPError(http.StatusNotFound, "address not found")

func (u *AddressUsecase) List(ctx context.Context, userID int64) ([]AddressOutput, error) {
	if userID <= 0 {
		return nil, errUnauthorized
	}

	list, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return nil, dbError(ctx, err)
	}

	out := make([]AddressOutput, 0, len(list))
	for _, a := range list {
		out = append(out, toAddressOutput(a))
	}
	return out, nil
}

func (u *AddressUsecase) Detail(ctx context.Context, userID, addressID int64) (AddressOutput, error) {
	if userID <= 0 {
		return AddressOutput{}, errUnauthorized
	}
	if addressID <= 0 {
		return AddressOutput{}, NewHTTPError(http.StatusBadRequest, "invalid address id")
	}

	a, err := u.addresses.FindByIDForUser(ctx, addressID, userID)
	if isRepoNotFound(err) {
		return AddressOutput{}, errAddressNotFound
	}
	if err != nil {
		return AddressOutput{}, dbError(ctx, err)
	}
	return toAddressOutput(a), nil
}

// 最初の住所は自動でデフォルト
func (u *AddressUsecase) Create(ctx context.Context, userID int64, in CreateAddressInput) (AddressOutput, error) {
	if userID <= 0 {
		return AddressOutput{}, errUnauthorized
	}

	now := time.Now()
	a := model.Address{
		UserID:        userID,
		Name:          strings.TrimSpace(in.Name),
		Phone:         strings.TrimSpace(in.Phone),
		Province:      strings.TrimSpace(in.Province),
		City:          strings.TrimSpace(in.City),
		Region:        strings.TrimSpace(in.Region),
		DetailAddress: strings.TrimSpace(in.DetailAddress),
		IsDefault:     in.IsDefault,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := u.validator.ValidateAddress(ctx, a); err != nil {
		return AddressOutput{}, err
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		n, err := r.Addresses().CountByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if n == 0 {
			a.IsDefault = true
		}
		if a.IsDefault {
			if err := r.Addresses().ClearDefault(ctx, userID, 0); err != nil {
				return err
			}
		}
		return r.Addresses().Create(ctx, &a)
	})
	if err != nil {
		return AddressOutput{}, txError(ctx, err)
	}
	return toAddressOutput(a), nil
}

func (u *AddressUsecase) Update(ctx context.Context, userID, addressID int64, in UpdateAddressInput) (AddressOutput, error) {
	if userID <= 0 {
		return AddressOutput{}, errUnauthorized
	}
	if addressID <= 0 {
		return AddressOutput{}, NewHTTPError(http.StatusBadRequest, "invalid address id")
	}

	var out model.Address
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		a, err := r.Addresses().FindByIDForUser(ctx, addressID, userID)
		if isRepoNotFound(err) {
			return errAddressNotFound
		}
		if err != nil {
			return err
		}

		mergeAddress(&a, in)
		if err := u.validator.ValidateAddress(ctx, a); err != nil {
			return err
		}

		if in.IsDefault != nil && *in.IsDefault {
			if err := r.Addresses().ClearDefault(ctx, userID, a.ID); err != nil {
				return err
			}
		}
		a.UpdatedAt = time.Now()
		if err := r.Addresses().Update(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return AddressOutput{}, txError(ctx, err)
	}
	return toAddressOutput(out), nil
}

func mergeAddress(a *model.Address, in UpdateAddressInput) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&a.Name, in.Name)
	set(&a.Phone, in.Phone)
	set(&a.Province, in.Province)
	set(&a.City, in.City)
	set(&a.Region, in.Region)
	set(&a.DetailAddress, in.DetailAddress)
	if in.IsDefault != nil {
		a.IsDefault = *in.IsDefault
	}
}

// デフォルトを消したら一番古い住所を繰り上げ
func (u *AddressUsecase) Delete(ctx context.Context, userID, addressID int64) error {
	if userID <= 0 {
		return errUnauthorized
	}
	if addressID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid address id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		a, err := r.Addresses().FindByIDForUser(ctx, addressID, userID)
		if isRepoNotFound(err) {
			return errAddressNotFound
		}
		if err != nil {
			return err
		}

		if err := r.Addresses().Delete(ctx, a.ID); err != nil {
			return err
		}
		if a.IsDefault {
			return r.Addresses().PromoteOldest(ctx, userID)
		}
		return nil
	})
	return txError(ctx, err)
}

func (u *AddressUsecase) SetDefault(ctx context.Context, userID, addressID int64) error {
	if userID <= 0 {
		return errUnauthorized
	}
	if addressID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid address id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Addresses().FindByIDForUser(ctx, addressID, userID); err != nil {
			if isRepoNotFound(err) {
				return errAddressNotFound
			}
			return err
		}
		if err := r.Addresses().ClearDefault(ctx, userID, addressID); err != nil {
			return err
		}
		return r.Addresses().MarkDefault(ctx, addressID)
	})
	return txError(ctx, err)
}
