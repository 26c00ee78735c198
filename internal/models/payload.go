package models

// RegisterRequest данные для завершения регистрации.
// RepeatPassword принимается, но хранилищем не сравнивается с Password.
type RegisterRequest struct {
	FullName       string `json:"fullname" validate:"required"`
	Email          string `json:"email" validate:"required"`
	Password       string `json:"password" validate:"required"`
	RepeatPassword string `json:"repeatPassword" validate:"required"`
	Address        string `json:"address" validate:"required"`
}

// VerifyEmailRequest проверка кода подтверждения почты.
type VerifyEmailRequest struct {
	Email            string `json:"email" validate:"required"`
	VerificationCode string `json:"verificationCode" validate:"required"`
}

// LoginRequest учетные данные для входа.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest сброс пароля по одноразовому коду.
type ForgotPasswordRequest struct {
	Email             string `json:"email" validate:"required"`
	OTP               string `json:"otp" validate:"required"`
	NewPassword       string `json:"newPassword" validate:"required"`
	RepeatNewPassword string `json:"repeatNewPassword" validate:"required"`
}

// OTPRequest запрос на отправку одноразового кода.
type OTPRequest struct {
	Email string `json:"email" validate:"required"`
}

// ExternalLoginRequest код авторизации внешнего провайдера.
type ExternalLoginRequest struct {
	Code string `json:"code" validate:"required"`
}

// MessageResponse ответ операции, содержащий только сообщение.
type MessageResponse struct {
	Message string `json:"message"`
}

// AuthResponse ответ операций входа.
type AuthResponse struct {
	Message      string       `json:"message"`
	AccessToken  string       `json:"accessToken,omitempty"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	Profile      *UserProfile `json:"profile,omitempty"`
}
