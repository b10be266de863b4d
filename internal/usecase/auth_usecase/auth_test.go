package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bookstore/internal/domain/model"
	"bookstore/internal/repository"
	auth "bookstore/internal/usecase/auth_usecase"
)

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type issuerFake struct{}

func (i *issuerFake) Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error) {
	return "token", now.Add(15 * time.Minute), nil
}

func TestRegisterUser_InvalidEmail(t *testing.T) {
	uc := auth.NewRegisterUserUsecase(new(UserRepoMock), auth.NewBcryptPasswordHasher(4))

	_, err := uc.Execute(context.Background(), auth.RegisterUserInput{Email: "not-an-email", Password: "longenough1"})
	assert.ErrorIs(t, err, auth.ErrInvalidEmailFormat)
}

func TestRegisterUser_ShortPassword(t *testing.T) {
	uc := auth.NewRegisterUserUsecase(new(UserRepoMock), auth.NewBcryptPasswordHasher(4))

	_, err := uc.Execute(context.Background(), auth.RegisterUserInput{Email: "a@example.com", Password: "short"})
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
}

func TestRegisterUser_WeakPassword(t *testing.T) {
	uc := auth.NewRegisterUserUsecase(new(UserRepoMock), auth.NewBcryptPasswordHasher(4))

	_, err := uc.Execute(context.Background(), auth.RegisterUserInput{Email: "a@example.com", Password: "password123"})
	assert.ErrorIs(t, err, auth.ErrWeakPassword)
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	repo := new(UserRepoMock)
	repo.On("FindByEmail", mock.Anything, "a@example.com").Return(&model.User{ID: 1}, nil)

	uc := auth.NewRegisterUserUsecase(repo, auth.NewBcryptPasswordHasher(4))
	_, err := uc.Execute(context.Background(), auth.RegisterUserInput{Email: "a@example.com", Password: "longenough1"})
	assert.ErrorIs(t, err, auth.ErrEmailAlreadyExists)
}

func TestRegisterUser_Success(t *testing.T) {
	repo := new(UserRepoMock)
	repo.On("FindByEmail", mock.Anything, "a@example.com").Return(nil, repository.ErrUserNotFound)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	uc := auth.NewRegisterUserUsecase(repo, auth.NewBcryptPasswordHasher(4))
	out, err := uc.Execute(context.Background(), auth.RegisterUserInput{Email: "a@example.com", Password: "longenough1"})
	assert.NoError(t, err)
	assert.Equal(t, "a@example.com", out.User.Email)
	assert.Empty(t, out.User.PasswordHash)
	assert.Equal(t, model.RoleUser, out.User.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	hasher := auth.NewBcryptPasswordHasher(4)
	hashed, _ := hasher.Hash("correct-password")

	repo := new(UserRepoMock)
	repo.On("FindByEmail", mock.Anything, "a@example.com").
		Return(&model.User{ID: 1, Email: "a@example.com", PasswordHash: hashed, IsActive: true}, nil)

	uc := auth.NewLoginUsecase(repo, auth.NewBcryptPasswordVerifier(), &issuerFake{})
	_, err := uc.Execute(context.Background(), auth.LoginInput{Email: "a@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_InactiveUser(t *testing.T) {
	repo := new(UserRepoMock)
	repo.On("FindByEmail", mock.Anything, "a@example.com").
		Return(&model.User{ID: 1, Email: "a@example.com", IsActive: false}, nil)

	uc := auth.NewLoginUsecase(repo, auth.NewBcryptPasswordVerifier(), &issuerFake{})
	_, err := uc.Execute(context.Background(), auth.LoginInput{Email: "a@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, auth.ErrUserInactive)
}

func TestLogin_Success(t *testing.T) {
	hasher := auth.NewBcryptPasswordHasher(4)
	hashed, _ := hasher.Hash("correct-password")

	repo := new(UserRepoMock)
	repo.On("FindByEmail", mock.Anything, "a@example.com").
		Return(&model.User{ID: 1, Email: "a@example.com", PasswordHash: hashed, IsActive: true}, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	uc := auth.NewLoginUsecase(repo, auth.NewBcryptPasswordVerifier(), &issuerFake{})
	out, err := uc.Execute(context.Background(), auth.LoginInput{Email: "a@example.com", Password: "correct-password"})
	assert.NoError(t, err)
	assert.Equal(t, "token", out.Token.AccessToken)
	assert.Empty(t, out.User.PasswordHash)
	assert.NotNil(t, out.User.LastLoginAt)
}
