package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pneutrack/internal/core/apperror"
	"pneutrack/internal/core/id"
)

type fakeTxManager struct{}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct {
	byID    map[id.ID]*User
	byEmail map[string]*User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[id.ID]*User),
		byEmail: make(map[string]*User),
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *User) error {
	if _, ok := r.byEmail[user.Email]; ok {
		return apperror.NewDuplicate("user", "email", user.Email)
	}
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	u, ok := r.byID[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, apperror.NewNotFound("user", email)
	}
	return u, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *User) error {
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, filter UserFilter) ([]User, int, error) {
	var out []User
	for _, u := range r.byID {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (r *fakeUserRepo) Exists(ctx context.Context, email string) (bool, error) {
	_, ok := r.byEmail[email]
	return ok, nil
}

func newAuthService() (*Service, *fakeUserRepo) {
	repo := newFakeUserRepo()
	jwtService := NewJWTService(DefaultJWTConfig("test-secret"))
	return NewService(repo, &fakeTxManager{}, jwtService, DefaultServiceConfig()), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{
		Email:     "marc@pneutrack.fr",
		Password:  "Worker123!",
		FirstName: "Marc",
		LastName:  "Lefevre",
	})
	require.NoError(t, err)

	// Worker is the default role.
	assert.Equal(t, []string{RoleWorker}, user.Roles)
	assert.True(t, user.IsActive)

	token, logged, err := svc.Login(ctx, Credentials{
		Email:    "marc@pneutrack.fr",
		Password: "Worker123!",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.Equal(t, user.ID, logged.ID)
	assert.NotNil(t, logged.LastLoginAt)

	// The issued token round-trips through validation.
	claims, err := svc.jwtService.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	t.Run("missing email", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{Password: "Worker123!"})
		require.Error(t, err)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{Email: "a@b.fr", Password: "short"})
		require.Error(t, err)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{Email: "dup@pneutrack.fr", Password: "Worker123!"})
		require.NoError(t, err)

		_, err = svc.Register(ctx, RegisterRequest{Email: "dup@pneutrack.fr", Password: "Worker123!"})
		require.Error(t, err)
		assert.True(t, apperror.IsConflict(err))
	})
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, repo := newAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{
		Email:    "julie@pneutrack.fr",
		Password: "Worker123!",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, Credentials{Email: "julie@pneutrack.fr", Password: "wrong"})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
	assert.Equal(t, 1, repo.byID[user.ID].FailedLoginAttempts)
}

func TestLogin_LocksAfterRepeatedFailures(t *testing.T) {
	svc, repo := newAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{
		Email:    "locked@pneutrack.fr",
		Password: "Worker123!",
	})
	require.NoError(t, err)

	for i := 0; i < svc.config.MaxLoginAttempts; i++ {
		_, _, _ = svc.Login(ctx, Credentials{Email: "locked@pneutrack.fr", Password: "wrong"})
	}
	assert.True(t, repo.byID[user.ID].IsLocked())

	// Even the correct password is rejected while locked.
	_, _, err = svc.Login(ctx, Credentials{Email: "locked@pneutrack.fr", Password: "Worker123!"})
	require.Error(t, err)
}

func TestLogin_DisabledAccount(t *testing.T) {
	svc, repo := newAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{
		Email:    "gone@pneutrack.fr",
		Password: "Worker123!",
	})
	require.NoError(t, err)

	repo.byID[user.ID].IsActive = false

	_, _, err = svc.Login(ctx, Credentials{Email: "gone@pneutrack.fr", Password: "Worker123!"})
	require.Error(t, err)
}

func TestValidateToken_Invalid(t *testing.T) {
	jwtService := NewJWTService(DefaultJWTConfig("test-secret"))

	_, err := jwtService.ValidateToken("not-a-token")
	require.Error(t, err)

	other := NewJWTService(DefaultJWTConfig("other-secret"))
	token, _, err := other.GenerateAccessToken(id.New().String(), "a@b.fr", nil, false)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
}
