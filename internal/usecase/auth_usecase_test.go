package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testJWT = config.JWTConfig{Secret: "test-secret", AccessTTL: 15 * time.Minute}

func newAuthUC(users *UserRepoMock) *usecase.AuthUsecase {
	return usecase.NewAuthUsecase(testJWT, users, validator.NewAuthValidator(users))
}

func hashed(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthUsecase_Register(t *testing.T) {
	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "new@example.com" && u.Role == model.RoleUser &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password1")) == nil
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.User).ID = 7
	}).Return(nil).Once()

	out, err := newAuthUC(users).Register(context.Background(), usecase.RegisterInput{Email: " New@Example.com ", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), out.User.ID)
	assert.Equal(t, "USER", out.User.Role)
}

func TestAuthUsecase_Register_DuplicateRace(t *testing.T) {
	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, nil)
	users.On("Create", mock.Anything, mock.Anything).Return(repo.ErrDuplicate)

	_, err := newAuthUC(users).Register(context.Background(), usecase.RegisterInput{Email: "new@example.com", Password: "password1"})
	assert.Equal(t, http.StatusConflict, statusOf(err))
}

func TestAuthUsecase_Login_IssuesClaims(t *testing.T) {
	users := new(UserRepoMock)
	u := &model.User{ID: 7, Email: "a@example.com", PasswordHash: hashed(t, "password1"), Role: model.RoleAdmin, TokenVersion: 3, IsActive: true}
	users.On("FindByEmail", mock.Anything, "a@example.com").Return(u, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool { return u.LastLoginAt != nil })).Return(nil).Once()

	out, err := newAuthUC(users).Login(context.Background(), usecase.LoginInput{Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, 900, out.Token.ExpiresIn)

	tok, err := jwt.Parse(out.Token.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte(testJWT.Secret), nil
	})
	require.NoError(t, err)
	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, "7", claims["sub"])
	assert.Equal(t, "ADMIN", claims["role"])
	assert.Equal(t, float64(3), claims["tv"])
	users.AssertExpectations(t)
}

func TestAuthUsecase_Login_Rejections(t *testing.T) {
	t.Run("wrong password", func(t *testing.T) {
		users := new(UserRepoMock)
		users.On("FindByEmail", mock.Anything, "a@example.com").Return(&model.User{ID: 7, PasswordHash: hashed(t, "password1"), IsActive: true}, nil)
		_, err := newAuthUC(users).Login(context.Background(), usecase.LoginInput{Email: "a@example.com", Password: "nope"})
		assert.Equal(t, http.StatusUnauthorized, statusOf(err))
	})

	t.Run("unknown email", func(t *testing.T) {
		users := new(UserRepoMock)
		users.On("FindByEmail", mock.Anything, "x@example.com").Return(nil, nil)
		_, err := newAuthUC(users).Login(context.Background(), usecase.LoginInput{Email: "x@example.com", Password: "password1"})
		assert.Equal(t, http.StatusUnauthorized, statusOf(err))
	})

	t.Run("inactive", func(t *testing.T) {
		users := new(UserRepoMock)
		users.On("FindByEmail", mock.Anything, "a@example.com").Return(&model.User{ID: 7, PasswordHash: hashed(t, "password1")}, nil)
		_, err := newAuthUC(users).Login(context.Background(), usecase.LoginInput{Email: "a@example.com", Password: "password1"})
		assert.Equal(t, http.StatusForbidden, statusOf(err))
	})
}
