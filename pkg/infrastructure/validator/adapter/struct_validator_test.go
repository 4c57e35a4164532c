package adapter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateusmacedo/go-users/pkg/application"
	"github.com/mateusmacedo/go-users/pkg/infrastructure/validator/adapter"
)

type signUp struct {
	FirstName string `validate:"required" msg:"First name must not be empty"`
	Email     string `validate:"required,email" msg:"Email must be a valid address"`
	Nickname  string `validate:"max=5"`
	Secret    string `validate:"maxbytes=8" msg:"Secret must be at most 8 bytes long"`
}

func TestStructValidator(t *testing.T) {
	cases := []struct {
		desc     string
		request  signUp
		failures []application.ValidationFailure
	}{
		{
			desc:    "valid request",
			request: signUp{FirstName: "Jane", Email: "a@b.com"},
		},
		{
			desc:    "empty first name",
			request: signUp{FirstName: "", Email: "a@b.com"},
			failures: []application.ValidationFailure{
				{PropertyName: "FirstName", ErrorMessage: "First name must not be empty"},
			},
		},
		{
			desc:    "every rule broken in field order",
			request: signUp{Email: "not-an-email", Nickname: "toolong"},
			failures: []application.ValidationFailure{
				{PropertyName: "FirstName", ErrorMessage: "First name must not be empty"},
				{PropertyName: "Email", ErrorMessage: "Email must be a valid address"},
				{PropertyName: "Nickname", ErrorMessage: "Nickname failed on the 'max' rule"},
			},
		},
		{
			desc:    "multibyte secret within rune limit but over byte limit",
			request: signUp{FirstName: "Jane", Email: "a@b.com", Secret: "éééáá"},
			failures: []application.ValidationFailure{
				{PropertyName: "Secret", ErrorMessage: "Secret must be at most 8 bytes long"},
			},
		},
		{
			desc:    "secret exactly at byte limit",
			request: signUp{FirstName: "Jane", Email: "a@b.com", Secret: "éééé"},
		},
	}

	validator := adapter.NewStructValidator[signUp]()
	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			failures, err := validator.Validate(context.Background(), tc.request)

			require.NoError(t, err)
			assert.Equal(t, tc.failures, failures)
		})
	}
}

func TestStructValidatorPointerRequest(t *testing.T) {
	failures, err := adapter.NewStructValidator[*signUp]().Validate(context.Background(), &signUp{Email: "a@b.com"})

	require.NoError(t, err)
	assert.Equal(t, []application.ValidationFailure{
		{PropertyName: "FirstName", ErrorMessage: "First name must not be empty"},
	}, failures)
}

func TestStructValidatorRejectsNonStruct(t *testing.T) {
	_, err := adapter.NewStructValidator[string]().Validate(context.Background(), "plain")

	assert.Error(t, err)
}
