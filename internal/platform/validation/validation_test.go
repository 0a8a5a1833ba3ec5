package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Start    string `json:"start_date" validate:"omitempty,date"`
}

func TestStruct(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, Struct(&signup{Username: "ada_l.1", Email: "ada@example.com", Password: "longenough", Start: "2024-02-29"}))
	})

	t.Run("field errors use json names", func(t *testing.T) {
		t.Parallel()
		err := Struct(&signup{Username: "Ad", Email: "nope", Password: "short", Start: "2024-13-01"})
		var verr *RequestValidationError
		require.True(t, errors.As(err, &verr))
		fields := map[string]string{}
		for _, f := range verr.Fields {
			fields[f.Field] = f.Tag
		}
		assert.Equal(t, map[string]string{
			"username":   "username",
			"email":      "email",
			"password":   "min",
			"start_date": "date",
		}, fields)
	})
}

func TestVar(t *testing.T) {
	t.Parallel()

	require.NoError(t, Var("website", "https://eduverse.dev", "omitempty,url"))
	require.NoError(t, Var("website", "", "omitempty,url"))

	err := Var("website", "not a url", "omitempty,url")
	var verr *RequestValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "website must be a valid URL", verr.Error())
}
