package application_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateusmacedo/go-users/pkg/application"
)

func TestEnvelopeJSON(t *testing.T) {
	success, err := json.Marshal(application.Success(true, "User registered successfully"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"isSuccess":true,"message":"User registered successfully","data":true}`, string(success))

	failure, err := json.Marshal(application.Failure[bool](application.MessageValidationErrors, application.ValidationFailure{
		PropertyName: "FirstName",
		ErrorMessage: "First name must not be empty",
	}))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"isSuccess": false,
		"message": "Validation errors",
		"data": false,
		"errors": [{"propertyName": "FirstName", "errorMessage": "First name must not be empty"}]
	}`, string(failure))
}

func TestValidationErrorMessage(t *testing.T) {
	err := application.NewValidationError([]application.ValidationFailure{
		{PropertyName: "FirstName", ErrorMessage: "required"},
		{PropertyName: "Email", ErrorMessage: "invalid"},
	})

	assert.Equal(t, "validation failed: FirstName: required; Email: invalid", err.Error())
}
