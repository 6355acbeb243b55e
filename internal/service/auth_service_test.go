package service

import (
	"testing"

	"go-invoice-verify/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	user *model.User

	updatedPassword string
	tokenVersions   []string
	updates         int
}

func (f *fakeUserRepo) FindByEmail(email string) (*model.User, error) {
	if f.user == nil || f.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return f.user, nil
}

func (f *fakeUserRepo) FindByID(id uuid.UUID) (*model.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.user, nil
}

func (f *fakeUserRepo) Create(user *model.User) error { return nil }

func (f *fakeUserRepo) Update(user *model.User) error {
	f.updates++
	f.user = user
	return nil
}

func (f *fakeUserRepo) UpdatePassword(userID uuid.UUID, hashedPassword string) error {
	f.updatedPassword = hashedPassword
	return nil
}

func (f *fakeUserRepo) UpdateTokenVersion(userID uuid.UUID, version string) error {
	f.tokenVersions = append(f.tokenVersions, version)
	return nil
}

func (f *fakeUserRepo) UpdateLastSeen(userID uuid.UUID) error { return nil }

func activeUser(t *testing.T, email, password string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		FullName:     "Test Operator",
		Role:         model.RolePicker,
		IsActive:     true,
		TokenVersion: "v-initial",
	}
	user.ID = uuid.New()
	require.NoError(t, user.SetPassword(password))
	return user
}

func TestResetPassword_RehashesAndDropsLiveSession(t *testing.T) {
	repo := &fakeUserRepo{user: activeUser(t, "picker@example.com", "oldpass")}
	svc := NewAuthService(repo, nil)

	require.NoError(t, svc.ResetPassword("picker@example.com", "oldpass", "newpass"))

	require.NotEmpty(t, repo.updatedPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.updatedPassword), []byte("newpass")))

	require.Len(t, repo.tokenVersions, 1)
	assert.NotEqual(t, "v-initial", repo.tokenVersions[0])
	assert.NotEmpty(t, repo.tokenVersions[0])
}

func TestResetPassword_WrongCurrentPassword(t *testing.T) {
	repo := &fakeUserRepo{user: activeUser(t, "picker@example.com", "oldpass")}
	svc := NewAuthService(repo, nil)

	err := svc.ResetPassword("picker@example.com", "not-the-password", "newpass")
	require.ErrorIs(t, err, ErrWrongPassword)
	assert.Empty(t, repo.updatedPassword)
	assert.Empty(t, repo.tokenVersions)
}

func TestResetPassword_UnknownEmail(t *testing.T) {
	svc := NewAuthService(&fakeUserRepo{}, nil)
	err := svc.ResetPassword("nobody@example.com", "old", "new")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestLogin_RotatesTokenVersion(t *testing.T) {
	repo := &fakeUserRepo{user: activeUser(t, "picker@example.com", "secret")}
	svc := NewAuthService(repo, nil)

	resp, err := svc.Login("picker@example.com", "secret")
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, 1, repo.updates)
	assert.NotEqual(t, "v-initial", repo.user.TokenVersion)
	require.NotNil(t, repo.user.LastSeenAt)
}

func TestLogin_InactiveUser(t *testing.T) {
	user := activeUser(t, "picker@example.com", "secret")
	user.IsActive = false
	svc := NewAuthService(&fakeUserRepo{user: user}, nil)

	_, err := svc.Login("picker@example.com", "secret")
	require.ErrorIs(t, err, ErrUserInactive)
}
