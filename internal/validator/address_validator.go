package validator

import (
	"context"
	"net/http"
	"regexp"
	"unicode/utf8"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"
)

// 携帯番号（11桁、1[3-9]始まり）
var phoneRe = regexp.MustCompile(`^1[3-9]\d{9}$`)

type addressValidator struct{}

func NewAddressValidator() usecase.AddressValidator {
	return addressValidator{}
}

func badRequest(msg string) error {
	return usecase.NewHTTPError(http.StatusBadRequest, msg)
}

// 作成・更新（マージ後）の住所を検証
func (addressValidator) ValidateAddress(_ context.Context, a model.Address) error {
	if a.Name == "" {
		return badRequest("name is required")
	}
	if utf8.RuneCountInString(a.Name) > 50 {
		return badRequest("name is too long")
	}
	if a.Phone == "" {
		return badRequest("phone is required")
	}
	if !phoneRe.MatchString(a.Phone) {
		return badRequest("invalid phone format")
	}
	if a.Province == "" || a.City == "" || a.Region == "" {
		return badRequest("region is incomplete")
	}
	if utf8.RuneCountInString(a.Province) > 50 || utf8.RuneCountInString(a.City) > 50 || utf8.RuneCountInString(a.Region) > 50 {
		return badRequest("region is too long")
	}
	if a.DetailAddress == "" {
		return badRequest("detail_address is required")
	}
	if utf8.RuneCountInString(a.DetailAddress) > 255 {
		return badRequest("detail_address is too long")
	}
	return nil
}
