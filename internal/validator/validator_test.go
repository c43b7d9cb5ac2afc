package validator

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	byEmail map[string]*model.User
	err     error
}

func (f *fakeUsers) Create(ctx context.Context, user *model.User) error { return nil }
func (f *fakeUsers) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return nil, nil
}
func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byEmail[email], nil
}
func (f *fakeUsers) Update(ctx context.Context, user *model.User) error { return nil }

func statusOf(t *testing.T, err error) int {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "expected HTTPError, got %v", err)
	return he.Status
}

func validAddress() model.Address {
	return model.Address{
		Name:          "Zhang San",
		Phone:         "13800138000",
		Province:      "Guangdong",
		City:          "Shenzhen",
		Region:        "Nanshan",
		DetailAddress: "Keyuan Road 1",
	}
}

func TestValidateAddress(t *testing.T) {
	v := NewAddressValidator()
	ctx := context.Background()

	require.NoError(t, v.ValidateAddress(ctx, validAddress()))

	cases := map[string]func(a *model.Address){
		"missing name":   func(a *model.Address) { a.Name = "" },
		"missing phone":  func(a *model.Address) { a.Phone = "" },
		"bad prefix":     func(a *model.Address) { a.Phone = "12800138000" },
		"short phone":    func(a *model.Address) { a.Phone = "1380013800" },
		"letters":        func(a *model.Address) { a.Phone = "1380013800a" },
		"missing region": func(a *model.Address) { a.Region = "" },
		"missing detail": func(a *model.Address) { a.DetailAddress = "" },
		"long detail":    func(a *model.Address) { a.DetailAddress = strings.Repeat("x", 256) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			a := validAddress()
			mutate(&a)
			err := v.ValidateAddress(ctx, a)
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
		})
	}
}

func TestValidateRegister(t *testing.T) {
	users := &fakeUsers{byEmail: map[string]*model.User{
		"taken@example.com": {ID: 1, Email: "taken@example.com"},
	}}
	v := NewAuthValidator(users)
	ctx := context.Background()

	assert.NoError(t, v.ValidateRegister(ctx, "new@example.com", "password1"))
	assert.Equal(t, http.StatusBadRequest, statusOf(t, v.ValidateRegister(ctx, "not-an-email", "password1")))
	assert.Equal(t, http.StatusBadRequest, statusOf(t, v.ValidateRegister(ctx, "new@example.com", "short")))
	assert.Equal(t, http.StatusConflict, statusOf(t, v.ValidateRegister(ctx, "taken@example.com", "password1")))

	users.err = errors.New("db down")
	err := v.ValidateRegister(ctx, "new@example.com", "password1")
	require.Error(t, err)
	_, isHTTP := usecase.AsHTTPError(err)
	assert.False(t, isHTTP)
}

func TestValidateLogin(t *testing.T) {
	v := NewAuthValidator(&fakeUsers{})
	ctx := context.Background()

	assert.NoError(t, v.ValidateLogin(ctx, "a@example.com", "x"))
	assert.Error(t, v.ValidateLogin(ctx, "", "x"))
	assert.Error(t, v.ValidateLogin(ctx, "a@example.com", ""))
}
