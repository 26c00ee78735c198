package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/identity-mock/internal/cache"
	"github.com/magabrotheeeer/identity-mock/internal/config"
	"github.com/magabrotheeeer/identity-mock/internal/models"
	services "github.com/magabrotheeeer/identity-mock/internal/services/auth"
	"github.com/magabrotheeeer/identity-mock/internal/session"
	"github.com/magabrotheeeer/identity-mock/internal/storage/memory"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) Append(ctx context.Context, profile models.UserProfile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *UserRepoMock) FindByCredentials(ctx context.Context, email, password string) (*models.UserProfile, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *UserRepoMock) Replace(ctx context.Context, profile models.UserProfile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *UserRepoMock) Exists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func testAuthConfig() config.Auth {
	return config.Auth{
		OTPCode:     "123456",
		AccessToken: "fake.jwt.token",
		SignInPath:  "/signin",
		UserID:      1,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	svc     *services.AuthService
	users   *memory.ProfileStorage
	storage *cache.Memory
	mirror  *session.Mirror
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	users := memory.New()
	storage := cache.NewMemory()
	mirror := session.New(storage)
	return fixture{
		svc:     services.NewAuthService(users, mirror, testAuthConfig(), discardLogger()),
		users:   users,
		storage: storage,
		mirror:  mirror,
	}
}

func registerReq(email, password string) models.RegisterRequest {
	return models.RegisterRequest{
		FullName:       "Alice",
		Email:          email,
		Password:       password,
		RepeatPassword: password,
		Address:        "Main st. 1",
	}
}

func TestAuthService_Register(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg, err := f.svc.CompleteRegistration(ctx, registerReq("a@x.com", "p1"))
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully", msg)
	assert.True(t, f.svc.CheckExistingUser(ctx, "a@x.com"))

	stored, err := f.users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultRole, stored.Role)
	require.NotNil(t, stored.CreatedAt)
	require.NotNil(t, stored.UpdatedAt)
	assert.True(t, stored.CreatedAt.Equal(*stored.UpdatedAt))

	_, err = f.svc.CompleteRegistration(ctx, registerReq("a@x.com", "other"))
	assert.ErrorIs(t, err, services.ErrAlreadyRegistered)
	assert.EqualError(t, err, "Email already registered")
	assert.Equal(t, 1, f.users.Count())
}

func TestAuthService_RegisterIgnoresRepeatPassword(t *testing.T) {
	f := newFixture(t)
	req := registerReq("b@x.com", "p1")
	req.RepeatPassword = "different"

	_, err := f.svc.CompleteRegistration(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, f.svc.CheckExistingUser(context.Background(), "b@x.com"))
}

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "exact match", email: "a@x.com", password: "p1"},
		{name: "wrong password", email: "a@x.com", password: "p2", wantErr: services.ErrInvalidCredentials},
		{name: "unknown email", email: "z@x.com", password: "p1", wantErr: services.ErrInvalidCredentials},
		{name: "email case differs", email: "A@x.com", password: "p1", wantErr: services.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			_, err := f.svc.CompleteRegistration(ctx, registerReq("a@x.com", "p1"))
			require.NoError(t, err)

			resp, err := f.svc.Login(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
				assert.False(t, f.svc.IsAuthenticated(ctx))
				assert.Nil(t, f.svc.CurrentProfile(ctx))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Login successful", resp.Message)
			assert.Equal(t, "fake.jwt.token", resp.AccessToken)
			require.NotNil(t, resp.Profile)
			assert.Equal(t, "a@x.com", resp.Profile.Email)
			assert.True(t, f.svc.IsAuthenticated(ctx))

			stored, err := f.svc.GetProfile(ctx)
			require.NoError(t, err)
			assert.Equal(t, "a@x.com", stored.Email)
			assert.Equal(t, "a@x.com", f.svc.CurrentProfile(ctx).Email)
		})
	}
}

func TestAuthService_VerifyEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.VerifyEmail(ctx, "a@x.com", "000000")
	assert.EqualError(t, err, "Invalid OTP")

	msg, err := f.svc.VerifyEmail(ctx, "a@x.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "Email verified", msg)
}

func TestAuthService_SendOTP(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg, err := f.svc.SendOTP(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "OTP sent", msg)

	msg, err = f.svc.SendPasswordResetOTP(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "OTP sent for password reset", msg)

	assert.Equal(t, 0, f.users.Count())
	assert.False(t, f.svc.IsAuthenticated(ctx))
}

func TestAuthService_ForgotPassword(t *testing.T) {
	tests := []struct {
		name    string
		req     models.ForgotPasswordRequest
		wantErr error
		wantPwd string
	}{
		{
			name:    "success",
			req:     models.ForgotPasswordRequest{Email: "a@x.com", OTP: "123456", NewPassword: "n1", RepeatNewPassword: "n1"},
			wantPwd: "n1",
		},
		{
			name:    "email not found",
			req:     models.ForgotPasswordRequest{Email: "z@x.com", OTP: "123456", NewPassword: "n1", RepeatNewPassword: "n1"},
			wantErr: services.ErrEmailNotFound,
			wantPwd: "p1",
		},
		{
			name:    "invalid otp",
			req:     models.ForgotPasswordRequest{Email: "a@x.com", OTP: "111111", NewPassword: "n1", RepeatNewPassword: "n1"},
			wantErr: services.ErrInvalidOTP,
			wantPwd: "p1",
		},
		{
			name:    "passwords differ",
			req:     models.ForgotPasswordRequest{Email: "a@x.com", OTP: "123456", NewPassword: "n1", RepeatNewPassword: "n2"},
			wantErr: services.ErrPasswordMismatch,
			wantPwd: "p1",
		},
		{
			name:    "otp checked before passwords",
			req:     models.ForgotPasswordRequest{Email: "a@x.com", OTP: "bad", NewPassword: "n1", RepeatNewPassword: "n2"},
			wantErr: services.ErrInvalidOTP,
			wantPwd: "p1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			_, err := f.svc.CompleteRegistration(ctx, registerReq("a@x.com", "p1"))
			require.NoError(t, err)
			before, err := f.users.FindByEmail(ctx, "a@x.com")
			require.NoError(t, err)

			msg, err := f.svc.ForgotPassword(ctx, tt.req)
			after, findErr := f.users.FindByEmail(ctx, "a@x.com")
			require.NoError(t, findErr)
			assert.Equal(t, tt.wantPwd, after.Password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, *before, *after)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Password updated successfully", msg)
			assert.False(t, after.UpdatedAt.Before(*before.UpdatedAt))

			_, err = f.svc.Login(ctx, "a@x.com", "n1")
			assert.NoError(t, err)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, "/signin", f.svc.Logout(ctx))
	assert.False(t, f.svc.IsAuthenticated(ctx))

	_, err := f.svc.CompleteRegistration(ctx, registerReq("a@x.com", "p1"))
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	require.NoError(t, f.storage.Set(ctx, "unrelated", "value"))

	assert.Equal(t, "/signin", f.svc.Logout(ctx))
	assert.False(t, f.svc.IsAuthenticated(ctx))
	assert.Nil(t, f.svc.CurrentProfile(ctx))
	_, found, _ := f.storage.Get(ctx, "unrelated")
	assert.False(t, found)

	_, err = f.svc.GetProfile(ctx)
	assert.ErrorIs(t, err, services.ErrNoProfile)
	assert.True(t, f.svc.CheckExistingUser(ctx, "a@x.com"))
}

func TestAuthService_UpdateUserProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CompleteRegistration(ctx, registerReq("a@x.com", "p1"))
	require.NoError(t, err)
	_, err = f.svc.CompleteRegistration(ctx, registerReq("b@x.com", "p2"))
	require.NoError(t, err)
	untouched, err := f.users.FindByEmail(ctx, "b@x.com")
	require.NoError(t, err)

	_, err = f.svc.UpdateUserProfile(ctx, models.UserProfile{Email: "z@x.com", FullName: "Ghost"})
	assert.ErrorIs(t, err, services.ErrUserNotFound)
	assert.Equal(t, 2, f.users.Count())
	assert.Nil(t, f.svc.CurrentProfile(ctx))

	updated := models.UserProfile{
		FullName: "Alice Cooper",
		Email:    "a@x.com",
		Password: "p1",
		Address:  "Elm st. 13",
		Role:     "admin",
	}
	msg, err := f.svc.UpdateUserProfile(ctx, updated)
	require.NoError(t, err)
	assert.Equal(t, "Profile updated", msg)

	got, err := f.users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, updated, *got)

	other, err := f.users.FindByEmail(ctx, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, *untouched, *other)

	assert.Equal(t, "Alice Cooper", f.svc.CurrentProfile(ctx).FullName)
	stored, err := f.svc.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Elm st. 13", stored.Address)
}

func TestAuthService_GoogleLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.GoogleLogin(ctx, "any-code")
	require.NoError(t, err)
	assert.Equal(t, "Google login successful", resp.Message)
	assert.Equal(t, "fake.jwt.token", resp.AccessToken)
	assert.Equal(t, services.ExternalProfile, *resp.Profile)
	assert.True(t, f.svc.IsAuthenticated(ctx))
	assert.True(t, f.svc.CheckExistingUser(ctx, "google@example.com"))

	_, err = f.svc.GoogleLogin(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, f.users.Count())
}

func TestAuthService_GoogleLoginReusesUpdatedRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.GoogleLogin(ctx, "c1")
	require.NoError(t, err)

	edited := services.ExternalProfile
	edited.Address = "Mountain View"
	_, err = f.svc.UpdateUserProfile(ctx, edited)
	require.NoError(t, err)

	resp, err := f.svc.GoogleLogin(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, "Mountain View", resp.Profile.Address)
}

func TestAuthService_GetProfileWithoutSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetProfile(context.Background())
	assert.EqualError(t, err, "No profile in session")
}

func TestAuthService_GetProfileCorruptSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.storage.Set(ctx, session.ProfileKey, "{broken"))

	_, err := f.svc.GetProfile(ctx)
	assert.ErrorIs(t, err, session.ErrCorruptSession)
	assert.Nil(t, f.svc.CurrentProfile(ctx))
}

func TestAuthService_Rehydrate(t *testing.T) {
	ctx := context.Background()
	users := memory.New()
	storage := cache.NewMemory()
	mirror := session.New(storage)

	first := services.NewAuthService(users, mirror, testAuthConfig(), discardLogger())
	_, err := first.CompleteRegistration(ctx, registerReq("a@x.com", "p1"))
	require.NoError(t, err)
	_, err = first.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)

	// новый экземпляр поверх той же сессии, как после перезапуска процесса
	second := services.NewAuthService(users, mirror, testAuthConfig(), discardLogger())
	second.FetchAndStoreUserProfile(ctx)
	second.FetchAndStoreUserProfile(ctx)
	require.NotNil(t, second.CurrentProfile(ctx))
	assert.Equal(t, "a@x.com", second.CurrentProfile(ctx).Email)
	assert.True(t, second.IsAuthenticated(ctx))

	empty := services.NewAuthService(memory.New(), session.New(cache.NewMemory()), testAuthConfig(), discardLogger())
	empty.FetchAndStoreUserProfile(ctx)
	assert.Nil(t, empty.CurrentProfile(ctx))
}

func TestAuthService_CurrentProfileIsCopy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.GoogleLogin(ctx, "c")
	require.NoError(t, err)

	p := f.svc.CurrentProfile(ctx)
	p.FullName = "mutated"
	assert.Equal(t, "Google User", f.svc.CurrentProfile(ctx).FullName)
}

func TestAuthService_UserIDAndToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	assert.Equal(t, int64(1), f.svc.UserID())

	assert.False(t, f.svc.ValidateToken(ctx, "fake.jwt.token"))
	_, err := f.svc.GoogleLogin(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.svc.UserID())
	assert.True(t, f.svc.ValidateToken(ctx, "fake.jwt.token"))
	assert.False(t, f.svc.ValidateToken(ctx, "other"))
	assert.False(t, f.svc.ValidateToken(ctx, ""))
}

func TestAuthService_EndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CompleteRegistration(ctx, models.RegisterRequest{Email: "a@x.com", Password: "p1", RepeatPassword: "p1"})
	require.NoError(t, err)

	resp, err := f.svc.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", resp.Profile.Email)
	assert.True(t, f.svc.IsAuthenticated(ctx))

	f.svc.Logout(ctx)
	assert.False(t, f.svc.IsAuthenticated(ctx))
}

func TestAuthService_RepositoryErrors(t *testing.T) {
	ctx := context.Background()
	dbErr := errors.New("registry unavailable")

	repo := new(UserRepoMock)
	repo.On("Exists", mock.Anything, "a@x.com").Return(false, dbErr)
	repo.On("FindByCredentials", mock.Anything, "a@x.com", "p1").Return(nil, dbErr)
	repo.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, dbErr)
	repo.On("Replace", mock.Anything, mock.Anything).Return(dbErr)

	svc := services.NewAuthService(repo, session.New(cache.NewMemory()), testAuthConfig(), discardLogger())

	_, err := svc.CompleteRegistration(ctx, registerReq("a@x.com", "p1"))
	assert.ErrorIs(t, err, dbErr)

	_, err = svc.Login(ctx, "a@x.com", "p1")
	assert.ErrorIs(t, err, dbErr)
	assert.False(t, svc.IsAuthenticated(ctx))

	_, err = svc.ForgotPassword(ctx, models.ForgotPasswordRequest{Email: "a@x.com", OTP: "123456"})
	assert.ErrorIs(t, err, dbErr)

	_, err = svc.UpdateUserProfile(ctx, models.UserProfile{Email: "a@x.com"})
	assert.ErrorIs(t, err, dbErr)

	assert.False(t, svc.CheckExistingUser(ctx, "a@x.com"))
	assert.ErrorIs(t, services.HandleError(err), dbErr)

	repo.AssertExpectations(t)
}

func TestAuthService_DelayCancellation(t *testing.T) {
	cfg := testAuthConfig()
	cfg.Latency = time.Hour
	users := memory.New()
	svc := services.NewAuthService(users, session.New(cache.NewMemory()), cfg, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.CompleteRegistration(ctx, registerReq("a@x.com", "p1"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, users.Count())

	_, err = svc.SendOTP(ctx, "a@x.com")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAuthService_LoginHasNoDelay(t *testing.T) {
	ctx := context.Background()
	cfg := testAuthConfig()
	cfg.Latency = time.Hour
	users := memory.New()
	require.NoError(t, users.Append(ctx, models.UserProfile{Email: "a@x.com", Password: "p1"}))
	svc := services.NewAuthService(users, session.New(cache.NewMemory()), cfg, discardLogger())

	done := make(chan error, 1)
	go func() {
		_, err := svc.Login(ctx, "a@x.com", "p1")
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
		assert.True(t, svc.IsAuthenticated(ctx))
	case <-time.After(time.Second):
		t.Fatal("login waited for the simulated latency")
	}
}

func TestAuthService_DelayElapses(t *testing.T) {
	cfg := testAuthConfig()
	cfg.Latency = 20 * time.Millisecond
	svc := services.NewAuthService(memory.New(), session.New(cache.NewMemory()), cfg, discardLogger())

	start := time.Now()
	_, err := svc.SendOTP(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

type stringer string

func (s stringer) String() string { return string(s) }

func TestHandleError(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: "Something went wrong"},
		{name: "domain error", in: services.ErrUserNotFound, want: "User not found"},
		{name: "wrapped domain error", in: errors.Join(errors.New("ctx"), services.ErrInvalidOTP), want: "Invalid OTP"},
		{name: "plain error", in: errors.New("boom"), want: "boom"},
		{name: "empty error", in: errors.New(""), want: "Something went wrong"},
		{name: "string", in: "bad input", want: "bad input"},
		{name: "empty string", in: "", want: "Something went wrong"},
		{name: "stringer", in: stringer("from stringer"), want: "from stringer"},
		{name: "number", in: 42, want: "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, services.HandleError(tt.in), tt.want)
		})
	}
}

// failingSetStorage отказывает в записи одного ключа, остальное делегирует cache.Memory.
type failingSetStorage struct {
	*cache.Memory
	failKey string
	err     error
}

func (s *failingSetStorage) Set(ctx context.Context, key, value string) error {
	if key == s.failKey {
		return s.err
	}
	return s.Memory.Set(ctx, key, value)
}

func TestAuthService_LoginSessionWriteFailure(t *testing.T) {
	tests := []struct {
		name    string
		failKey string
	}{
		{name: "profile write fails", failKey: session.ProfileKey},
		{name: "token write fails", failKey: session.TokenKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			boom := errors.New("boom")
			storage := &failingSetStorage{Memory: cache.NewMemory(), failKey: tt.failKey, err: boom}
			users := memory.New()
			require.NoError(t, users.Append(ctx, models.UserProfile{Email: "a@x.com", Password: "p1"}))
			svc := services.NewAuthService(users, session.New(storage), testAuthConfig(), discardLogger())

			resp, err := svc.Login(ctx, "a@x.com", "p1")
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, boom)

			assert.False(t, svc.IsAuthenticated(ctx))
			assert.False(t, svc.ValidateToken(ctx, "fake.jwt.token"))
			assert.Nil(t, svc.CurrentProfile(ctx))

			_, found, err := storage.Memory.Get(ctx, session.TokenKey)
			require.NoError(t, err)
			assert.False(t, found)
			_, found, err = storage.Memory.Get(ctx, session.ProfileKey)
			require.NoError(t, err)
			assert.False(t, found)

			_, err = svc.GoogleLogin(ctx, "code")
			assert.ErrorIs(t, err, boom)
			assert.False(t, svc.IsAuthenticated(ctx))
		})
	}
}

func TestAuthService_FailedLoginClosesPreviousSession(t *testing.T) {
	ctx := context.Background()
	storage := &failingSetStorage{Memory: cache.NewMemory()}
	users := memory.New()
	require.NoError(t, users.Append(ctx, models.UserProfile{Email: "a@x.com", Password: "p1"}))
	require.NoError(t, users.Append(ctx, models.UserProfile{Email: "b@x.com", Password: "p2"}))
	svc := services.NewAuthService(users, session.New(storage), testAuthConfig(), discardLogger())

	_, err := svc.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	require.True(t, svc.IsAuthenticated(ctx))

	storage.failKey = session.TokenKey
	storage.err = errors.New("boom")
	_, err = svc.Login(ctx, "b@x.com", "p2")
	require.Error(t, err)

	assert.False(t, svc.IsAuthenticated(ctx))
	profile, err := svc.GetProfile(ctx)
	assert.Nil(t, profile)
	assert.ErrorIs(t, err, services.ErrNoProfile)
}
