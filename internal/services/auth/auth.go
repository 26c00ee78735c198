// Package services содержит логику бизнес-уровня для работы с профилями и сессией.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/identity-mock/internal/config"
	"github.com/magabrotheeeer/identity-mock/internal/lib/sl"
	"github.com/magabrotheeeer/identity-mock/internal/models"
	"github.com/magabrotheeeer/identity-mock/internal/storage/memory"
)

var (
	ErrInvalidOTP         = errors.New("Invalid OTP")
	ErrAlreadyRegistered  = errors.New("Email already registered")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrEmailNotFound      = errors.New("Email not found")
	ErrPasswordMismatch   = errors.New("Passwords do not match")
	ErrNoProfile          = errors.New("No profile in session")
	ErrUserNotFound       = errors.New("User not found")
	ErrSomethingWentWrong = errors.New("Something went wrong")
)

const (
	msgOTPSent            = "OTP sent"
	msgEmailVerified      = "Email verified"
	msgRegistered         = "User registered successfully"
	msgLoggedIn           = "Login successful"
	msgResetOTPSent       = "OTP sent for password reset"
	msgPasswordUpdated    = "Password updated successfully"
	msgProfileUpdated     = "Profile updated"
	msgExternalLoggedInto = "Google login successful"
)

// ExternalProfile профиль, который выдаёт имитация входа через Google.
var ExternalProfile = models.UserProfile{
	FullName:  "Google User",
	Email:     "google@example.com",
	Password:  "",
	Address:   "Google HQ",
	Role:      models.DefaultRole,
	AvatarURL: "https://i.pravatar.cc/150?img=12",
}

// UserRepository описывает контракт реестра профилей.
// Методы поиска и замены возвращают memory.ErrNotFound, если профиль не найден.
type UserRepository interface {
	Append(ctx context.Context, profile models.UserProfile) error
	FindByEmail(ctx context.Context, email string) (*models.UserProfile, error)
	FindByCredentials(ctx context.Context, email, password string) (*models.UserProfile, error)
	Replace(ctx context.Context, profile models.UserProfile) error
	Exists(ctx context.Context, email string) (bool, error)
}

// SessionStore описывает зеркало сессии: токен и текущий профиль.
type SessionStore interface {
	SetToken(ctx context.Context, token string) error
	HasToken(ctx context.Context) (bool, error)
	SetProfile(ctx context.Context, profile models.UserProfile) error
	Profile(ctx context.Context) (*models.UserProfile, error)
	Clear(ctx context.Context) error
}

// AuthService хранилище учётных записей и текущей сессии.
// Один экземпляр обслуживает одну сессию.
type AuthService struct {
	users   UserRepository
	session SessionStore
	cfg     config.Auth
	log     *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	current *models.UserProfile
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, session SessionStore, cfg config.Auth, log *slog.Logger) *AuthService {
	return &AuthService{
		users:   users,
		session: session,
		cfg:     cfg,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SendOTP имитирует отправку кода подтверждения почты.
func (s *AuthService) SendOTP(ctx context.Context, email string) (string, error) {
	const op = "services.SendOTP"
	s.log.Info("sending otp", slog.String("op", op), slog.String("email", email))
	if err := s.wait(ctx, s.cfg.Latency); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return msgOTPSent, nil
}

// VerifyEmail сверяет код подтверждения с фиксированным значением.
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) (string, error) {
	const op = "services.VerifyEmail"
	s.log.Info("verifying otp", slog.String("op", op), slog.String("email", email))
	if err := s.wait(ctx, s.cfg.Latency); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if code != s.cfg.OTPCode {
		return "", ErrInvalidOTP
	}
	return msgEmailVerified, nil
}

// CompleteRegistration добавляет новый профиль с ролью по умолчанию.
// Повтор пароля не сравнивается с паролем.
func (s *AuthService) CompleteRegistration(ctx context.Context, req models.RegisterRequest) (string, error) {
	const op = "services.CompleteRegistration"
	if err := s.wait(ctx, s.cfg.Latency); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.users.Exists(ctx, req.Email)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		return "", ErrAlreadyRegistered
	}

	now := s.now()
	profile := models.UserProfile{
		FullName:  req.FullName,
		Email:     req.Email,
		Password:  req.Password,
		Address:   req.Address,
		Role:      models.DefaultRole,
		CreatedAt: &now,
		UpdatedAt: &now,
	}
	if err := s.users.Append(ctx, profile); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user registered", slog.String("op", op), slog.String("email", req.Email))
	return msgRegistered, nil
}

// Login ищет профиль по почте и паролю и открывает сессию. Вход выполняется без задержки.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	const op = "services.Login"
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.users.FindByCredentials(ctx, email, password)
	if errors.Is(err, memory.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.openSession(ctx, *profile); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("logged in", slog.String("op", op), slog.String("email", email))
	return &models.AuthResponse{
		Message:     msgLoggedIn,
		AccessToken: s.cfg.AccessToken,
		Profile:     clonePtr(profile),
	}, nil
}

// SendPasswordResetOTP имитирует отправку кода для сброса пароля.
func (s *AuthService) SendPasswordResetOTP(ctx context.Context, email string) (string, error) {
	const op = "services.SendPasswordResetOTP"
	s.log.Info("sending password reset otp", slog.String("op", op), slog.String("email", email))
	if err := s.wait(ctx, s.cfg.Latency); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return msgResetOTPSent, nil
}

// ForgotPassword меняет пароль после проверки почты, кода и повтора пароля.
// При любой ошибке профиль не меняется.
func (s *AuthService) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (string, error) {
	const op = "services.ForgotPassword"
	if err := s.wait(ctx, s.cfg.Latency); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, memory.ErrNotFound) {
		return "", ErrEmailNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if req.OTP != s.cfg.OTPCode {
		return "", ErrInvalidOTP
	}
	if req.NewPassword != req.RepeatNewPassword {
		return "", ErrPasswordMismatch
	}

	now := s.now()
	profile.Password = req.NewPassword
	profile.UpdatedAt = &now
	if err := s.users.Replace(ctx, *profile); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("password reset", slog.String("op", op), slog.String("email", req.Email))
	return msgPasswordUpdated, nil
}

// Logout очищает сессию и возвращает адрес страницы входа.
// Ошибки хранилища сессии только логируются.
func (s *AuthService) Logout(ctx context.Context) string {
	const op = "services.Logout"
	s.mu.Lock()
	if err := s.session.Clear(ctx); err != nil {
		s.log.Error("failed to clear session", slog.String("op", op), sl.Err(err))
	}
	s.current = nil
	s.mu.Unlock()

	s.log.Info("logged out", slog.String("op", op))
	if err := s.wait(ctx, s.cfg.LogoutLatency); err != nil {
		s.log.Debug("logout delay interrupted", slog.String("op", op), sl.Err(err))
	}
	return s.cfg.SignInPath
}

// GetProfile возвращает профиль, сохранённый в хранилище сессии.
func (s *AuthService) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	const op = "services.GetProfile"
	profile, err := s.session.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if profile == nil {
		return nil, ErrNoProfile
	}
	return profile, nil
}

// UpdateUserProfile заменяет профиль с той же почтой и делает его текущим.
func (s *AuthService) UpdateUserProfile(ctx context.Context, profile models.UserProfile) (string, error) {
	const op = "services.UpdateUserProfile"
	if err := s.wait(ctx, s.cfg.Latency); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.users.Replace(ctx, profile)
	if errors.Is(err, memory.ErrNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := s.session.SetProfile(ctx, profile); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.current = clonePtr(&profile)
	s.log.Info("profile updated", slog.String("op", op), slog.String("email", profile.Email))
	return msgProfileUpdated, nil
}

// CheckExistingUser сообщает, зарегистрирована ли почта.
func (s *AuthService) CheckExistingUser(ctx context.Context, email string) bool {
	const op = "services.CheckExistingUser"
	exists, err := s.users.Exists(ctx, email)
	if err != nil {
		s.log.Error("failed to check user", slog.String("op", op), sl.Err(err))
		return false
	}
	return exists
}

// GoogleLogin имитирует вход через Google. Код не проверяется.
// Если профиль с почтой ExternalProfile уже есть, используется он.
func (s *AuthService) GoogleLogin(ctx context.Context, code string) (*models.AuthResponse, error) {
	const op = "services.GoogleLogin"
	s.log.Info("external login", slog.String("op", op), slog.Int("code_len", len(code)))
	if err := s.wait(ctx, s.cfg.ExternalLoginLatency); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.users.FindByEmail(ctx, ExternalProfile.Email)
	switch {
	case errors.Is(err, memory.ErrNotFound):
		profile = clonePtr(&ExternalProfile)
		if err := s.users.Append(ctx, *profile); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	case err != nil:
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.openSession(ctx, *profile); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.AuthResponse{
		Message:     msgExternalLoggedInto,
		AccessToken: s.cfg.AccessToken,
		Profile:     clonePtr(profile),
	}, nil
}

// IsAuthenticated возвращает true, если в сессии есть токен.
func (s *AuthService) IsAuthenticated(ctx context.Context) bool {
	const op = "services.IsAuthenticated"
	ok, err := s.session.HasToken(ctx)
	if err != nil {
		s.log.Warn("failed to read token", slog.String("op", op), sl.Err(err))
		return false
	}
	return ok
}

// ValidateToken проверяет, что токен совпадает с выданным и сессия открыта.
func (s *AuthService) ValidateToken(ctx context.Context, token string) bool {
	if token == "" || token != s.cfg.AccessToken {
		return false
	}
	return s.IsAuthenticated(ctx)
}

// FetchAndStoreUserProfile восстанавливает текущий профиль из хранилища сессии.
// Повторный вызов ничего не меняет, ошибки только логируются.
func (s *AuthService) FetchAndStoreUserProfile(ctx context.Context) {
	const op = "services.FetchAndStoreUserProfile"
	s.mu.Lock()
	defer s.mu.Unlock()

	profile := s.current
	if profile == nil {
		stored, err := s.session.Profile(ctx)
		if err != nil {
			s.log.Warn("failed to read profile", slog.String("op", op), sl.Err(err))
			return
		}
		profile = stored
	}
	if profile == nil {
		return
	}
	s.current = profile
	if err := s.session.SetProfile(ctx, *profile); err != nil {
		s.log.Warn("failed to store profile", slog.String("op", op), sl.Err(err))
	}
}

// CurrentProfile возвращает текущий профиль, при необходимости читая его из сессии.
// Возвращает nil, если профиля нет ни в памяти, ни в сессии.
func (s *AuthService) CurrentProfile(ctx context.Context) *models.UserProfile {
	const op = "services.CurrentProfile"
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		stored, err := s.session.Profile(ctx)
		if err != nil {
			s.log.Warn("failed to read profile", slog.String("op", op), sl.Err(err))
			return nil
		}
		s.current = stored
	}
	return clonePtr(s.current)
}

// UserID возвращает идентификатор текущего пользователя. Пока это константа.
func (s *AuthService) UserID() int64 {
	return s.cfg.UserID
}

// HandleError приводит произвольное значение к ошибке с сообщением для показа.
func HandleError(v any) error {
	switch e := v.(type) {
	case nil:
		return ErrSomethingWentWrong
	case error:
		for _, known := range domainErrors {
			if errors.Is(e, known) {
				return known
			}
		}
		if e.Error() == "" {
			return ErrSomethingWentWrong
		}
		return e
	case string:
		if e == "" {
			return ErrSomethingWentWrong
		}
		return errors.New(e)
	case fmt.Stringer:
		if msg := e.String(); msg != "" {
			return errors.New(msg)
		}
	}
	return ErrSomethingWentWrong
}

var domainErrors = []error{
	ErrInvalidOTP,
	ErrAlreadyRegistered,
	ErrInvalidCredentials,
	ErrEmailNotFound,
	ErrPasswordMismatch,
	ErrNoProfile,
	ErrUserNotFound,
}

// openSession записывает профиль, затем токен. Если запись не удалась,
// сессия очищается, чтобы не остаться открытой наполовину. Вызывается под s.mu.
func (s *AuthService) openSession(ctx context.Context, profile models.UserProfile) error {
	const op = "services.openSession"
	err := s.session.SetProfile(ctx, profile)
	if err == nil {
		err = s.session.SetToken(ctx, s.cfg.AccessToken)
	}
	if err != nil {
		s.current = nil
		if clearErr := s.session.Clear(ctx); clearErr != nil {
			s.log.Error("failed to clear session", slog.String("op", op), sl.Err(clearErr))
		}
		return err
	}
	s.current = clonePtr(&profile)
	return nil
}

func clonePtr(p *models.UserProfile) *models.UserProfile {
	if p == nil {
		return nil
	}
	c := p.Clone()
	return &c
}

// wait имитирует сетевую задержку и прерывается при отмене ctx.
func (s *AuthService) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
