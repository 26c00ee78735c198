package response_test

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/identity-mock/internal/http/response"
)

func TestOKWithData(t *testing.T) {
	resp := response.OKWithData(map[string]bool{"exists": true})

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"OK","data":{"exists":true}}`, string(body))
}

func TestError(t *testing.T) {
	body, err := json.Marshal(response.Error("User not found"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"Error","error":"User not found"}`, string(body))
}

func TestValidationError(t *testing.T) {
	type request struct {
		Email    string `validate:"required"`
		Password string `validate:"required"`
	}

	err := validator.New().Struct(request{})
	require.Error(t, err)

	resp := response.ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, response.StatusError, resp.Status)
	assert.Equal(t, "field Email is a required field, field Password is a required field", resp.Error)
}
