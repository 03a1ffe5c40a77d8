package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title     string `json:"title" validate:"required"`
	MediaType string `json:"media_type" validate:"required,oneof=movie tv"`
	Rating    *int   `json:"rating" validate:"omitempty,min=1,max=5"`
}

func TestValidateStructOK(t *testing.T) {
	t.Parallel()
	r := 4
	assert.NoError(t, ValidateStruct(&sample{Title: "Fight Club", MediaType: "movie", Rating: &r}))
}

func TestValidateStructReportsJSONNames(t *testing.T) {
	t.Parallel()
	r := 9
	err := ValidateStruct(&sample{MediaType: "book", Rating: &r})
	require.Error(t, err)

	var verr *RequestValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 3)
	assert.Equal(t, "title", verr.Fields[0].Field)
	assert.Equal(t, "title is required", verr.Fields[0].Message)
	assert.Equal(t, "media_type must be one of [movie tv]", verr.Fields[1].Message)
	assert.Equal(t, "rating must be at most 5", verr.Fields[2].Message)
	assert.Contains(t, err.Error(), "; ")
}

func TestUsernameRule(t *testing.T) {
	t.Parallel()
	type req struct {
		Username *string `json:"username" validate:"omitempty,username"`
	}
	ok, bad := "movie_fan42", "no spaces!"
	assert.NoError(t, ValidateStruct(&req{Username: &ok}))
	assert.NoError(t, ValidateStruct(&req{}))

	err := ValidateStruct(&req{Username: &bad})
	require.Error(t, err)
	assert.Equal(t, "username must be 3-30 letters, digits or underscores", err.Error())
}
