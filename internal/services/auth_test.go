package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cv-checker/internal/models"
	"cv-checker/internal/repositories"
)

// memoryUserRepo is an in-memory UserRepository for service tests.
type memoryUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *memoryUserRepo) Create(user *models.User) error {
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memoryUserRepo) FindByID(id uuid.UUID) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (r *memoryUserRepo) FindByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *memoryUserRepo) FindByClerkID(clerkUserID string) (*models.User, error) {
	for _, u := range r.users {
		if u.ClerkUserID != nil && *u.ClerkUserID == clerkUserID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *memoryUserRepo) Update(user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	now := time.Now()
	user.UpdatedAt = &now
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memoryUserRepo) Deactivate(id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.IsActive = false
	return nil
}

func newTestAuthService(repo repositories.UserRepository) *AuthService {
	return NewAuthService(repo, "test-secret", 30*time.Minute, zap.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newMemoryUserRepo()
	auth := newTestAuthService(repo)

	registered, err := auth.Register(&models.RegisterRequest{
		Email:     "dev@example.com",
		Password:  "s3cret-pass",
		FirstName: "Dev",
		LastName:  "Test",
	})
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", registered.Email)
	assert.True(t, registered.IsActive)

	tokens, err := auth.Login(&models.LoginRequest{Email: "dev@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.Equal(t, "bearer", tokens.TokenType)
	require.NotNil(t, tokens.User)
	assert.Equal(t, "dev@example.com", tokens.User.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newMemoryUserRepo()
	auth := newTestAuthService(repo)

	req := &models.RegisterRequest{Email: "dup@example.com", Password: "password1"}
	_, err := auth.Register(req)
	require.NoError(t, err)

	_, err = auth.Register(req)
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := newMemoryUserRepo()
	auth := newTestAuthService(repo)

	_, err := auth.Register(&models.RegisterRequest{Email: "dev@example.com", Password: "correct-pass"})
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := auth.Login(&models.LoginRequest{Email: "dev@example.com", Password: "wrong-pass"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := auth.Login(&models.LoginRequest{Email: "nobody@example.com", Password: "correct-pass"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("deactivated account", func(t *testing.T) {
		user, err := repo.FindByEmail("dev@example.com")
		require.NoError(t, err)
		require.NoError(t, repo.Deactivate(user.ID))

		_, err = auth.Login(&models.LoginRequest{Email: "dev@example.com", Password: "correct-pass"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLoginRejectsWebhookOnlyUsers(t *testing.T) {
	repo := newMemoryUserRepo()
	auth := newTestAuthService(repo)

	// Users synced from the identity provider have no local password.
	clerkID := "user_abc"
	require.NoError(t, repo.Create(&models.User{
		ID:          uuid.New(),
		ClerkUserID: &clerkID,
		Email:       "synced@example.com",
		IsActive:    true,
	}))

	_, err := auth.Login(&models.LoginRequest{Email: "synced@example.com", Password: "anything"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutRevokesToken(t *testing.T) {
	repo := newMemoryUserRepo()
	auth := newTestAuthService(repo)

	_, err := auth.Register(&models.RegisterRequest{Email: "dev@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	tokens, err := auth.Login(&models.LoginRequest{Email: "dev@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	user, err := auth.CurrentUser(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", user.Email)

	auth.Logout(tokens.AccessToken)

	_, err = auth.CurrentUser(tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = auth.Refresh(tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshIssuesNewToken(t *testing.T) {
	repo := newMemoryUserRepo()
	auth := newTestAuthService(repo)

	_, err := auth.Register(&models.RegisterRequest{Email: "dev@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	tokens, err := auth.Login(&models.LoginRequest{Email: "dev@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	refreshed, err := auth.Refresh(tokens.AccessToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	user, err := auth.CurrentUser(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", user.Email)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	auth := newTestAuthService(newMemoryUserRepo())

	for _, token := range []string{"", "not-a-jwt", "aaa.bbb.ccc"} {
		_, err := auth.CurrentUser(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestVerifyTokenRejectsForeignSignature(t *testing.T) {
	repoA := newMemoryUserRepo()
	authA := NewAuthService(repoA, "secret-a", 30*time.Minute, zap.NewNop())
	authB := NewAuthService(repoA, "secret-b", 30*time.Minute, zap.NewNop())

	_, err := authA.Register(&models.RegisterRequest{Email: "dev@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	tokens, err := authA.Login(&models.LoginRequest{Email: "dev@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	_, err = authB.CurrentUser(tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
