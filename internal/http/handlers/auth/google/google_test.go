package google

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/identity-mock/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) GoogleLogin(ctx context.Context, code string) (*models.AuthResponse, error) {
	args := m.Called(ctx, code)
	resp, _ := args.Get(0).(*models.AuthResponse)
	return resp, args.Error(1)
}

func TestGoogleHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		mockResp *models.AuthResponse
		mockErr  error
		call     bool
		wantCode int
		wantBody string
	}{
		{
			name: "success",
			body: `{"code":"4/0AX"}`,
			mockResp: &models.AuthResponse{
				Message:     "Google login successful",
				AccessToken: "fake.jwt.token",
				Profile:     &models.UserProfile{FullName: "Google User", Email: "google@example.com", Address: "Google HQ", Role: "user"},
			},
			call:     true,
			wantCode: http.StatusOK,
			wantBody: `{"status":"OK","data":{"message":"Google login successful","accessToken":"fake.jwt.token","profile":{"fullname":"Google User","email":"google@example.com","password":"","address":"Google HQ","role":"user"}}}`,
		},
		{
			name:     "missing code",
			body:     `{}`,
			wantCode: http.StatusUnprocessableEntity,
			wantBody: `{"status":"Error","error":"field Code is a required field"}`,
		},
		{
			name:     "session failure",
			body:     `{"code":"x"}`,
			mockErr:  errors.New("redis down"),
			call:     true,
			wantCode: http.StatusInternalServerError,
			wantBody: `{"status":"Error","error":"Something went wrong"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.call {
				svc.On("GoogleLogin", mock.Anything, mock.AnythingOfType("string")).Return(tt.mockResp, tt.mockErr).Once()
			}
			h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/google", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
