package validation_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/shelfscore/shelfscore-server/internal/errors"
	"github.com/shelfscore/shelfscore-server/internal/validation"
)

type signupRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=1024"`
	DisplayName string `json:"display_name" validate:"required,max=50"`
}

type bookRequest struct {
	Title         string `json:"title" validate:"required,max=100"`
	Author        string `json:"author" validate:"required,max=50"`
	Genre         string `json:"genre" validate:"required,genre"`
	PublishedYear int    `json:"published_year" validate:"required,published_year"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	req := signupRequest{
		Email:       "test@example.com",
		Password:    "password123",
		DisplayName: "Test User",
	}

	err := v.Validate(req)
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       signupRequest
		wantField string
	}{
		{
			name: "missing required field",
			req: signupRequest{
				Email:    "test@example.com",
				Password: "password123",
			},
			wantField: "display_name",
		},
		{
			name: "invalid email",
			req: signupRequest{
				Email:       "not-an-email",
				Password:    "password123",
				DisplayName: "Test",
			},
			wantField: "email",
		},
		{
			name: "password too short",
			req: signupRequest{
				Email:       "test@example.com",
				Password:    "short",
				DisplayName: "Test",
			},
			wantField: "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
			assert.Contains(t, domainErr.Details, tt.wantField)
		})
	}
}

func TestValidator_GenreTag(t *testing.T) {
	v := validation.New()

	req := bookRequest{
		Title:         "Dune",
		Author:        "Frank Herbert",
		Genre:         "Science Fiction",
		PublishedYear: 1965,
	}
	assert.NoError(t, v.Validate(req))

	req.Genre = "Space Opera"
	err := v.Validate(req)
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Contains(t, domainErr.Details, "genre")
}

func TestValidator_PublishedYearTag(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name  string
		year  int
		valid bool
	}{
		{"lower bound", 1000, true},
		{"current year", time.Now().Year(), true},
		{"too old", 999, false},
		{"future", time.Now().Year() + 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := bookRequest{
				Title:         "Some Book",
				Author:        "Someone",
				Genre:         "Fiction",
				PublishedYear: tt.year,
			}

			err := v.Validate(req)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	req := signupRequest{
		Email:       "",
		Password:    "password123",
		DisplayName: "Test",
	}

	err := v.Validate(req)
	assert.Error(t, err)

	// Should use JSON tag name "email", not struct field name "Email"
	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Contains(t, domainErr.Details, "email")
	assert.NotContains(t, domainErr.Details, "Email")
}
