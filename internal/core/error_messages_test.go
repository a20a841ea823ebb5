package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "wrapped empty file",
			err:         fmt.Errorf("read data.csv: %w", ErrEmptyFile),
			wantCode:    "FILE005",
			wantMessage: "The file is empty",
		},
		{
			name:        "all strategies failed",
			err:         fmt.Errorf("read data.csv: %w", ErrAllStrategiesFailed),
			wantCode:    "FILE002",
			wantMessage: "File could not be read as CSV",
		},
		{
			name:        "file too large",
			err:         fmt.Errorf("%w: 200MB exceeds limit", ErrFileTooLarge),
			wantCode:    "FILE001",
			wantMessage: "File exceeds the maximum size limit",
		},
		{
			name:        "missing file",
			err:         errors.New("open /tmp/x.csv: no such file or directory"),
			wantCode:    "FILE004",
			wantMessage: "File not found",
		},
		{
			name:        "unknown filter column",
			err:         fmt.Errorf("%w: %q", ErrUnknownFilterColumn, "Region"),
			wantCode:    "FLT001",
			wantMessage: "Filter refers to a column that does not exist",
		},
		{
			name:        "unknown column in a transform",
			err:         fmt.Errorf("derive %q: %w: %q", "total", ErrUnknownColumn, "qty"),
			wantCode:    "FLT001",
			wantMessage: "A column used here does not exist",
		},
		{
			name:        "too many loads",
			err:         ErrTooManyLoads,
			wantCode:    "ING002",
			wantMessage: "Too many files are loading",
		},
		{
			name:        "context cancelled",
			err:         context.Canceled,
			wantCode:    "ING001",
			wantMessage: "Loading was cancelled",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("EMPTY FILE"),
			wantCode:    "FILE005",
			wantMessage: "The file is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantMessage, got.Message)
		})
	}
}

func TestFormatUserError(t *testing.T) {
	assert.Equal(t, "The file is empty (Code: FILE005). Select a CSV file with data rows", FormatUserError(ErrEmptyFile))
	assert.Empty(t, FormatUserError(nil))
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error is not user facing", err: nil, want: false},
		{name: "known error is user facing", err: ErrDecode, want: true},
		{name: "unknown error is not user facing", err: errors.New("random internal error xyz"), want: false},
		{name: "user error keeps its mapping", err: NewUserError(ErrEmptyFile), want: true},
		{name: "user error over unknown error", err: NewUserError(errors.New("random internal error xyz")), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUserFacing(tt.err))
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		assert.Nil(t, NewUserError(nil))
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("read a.csv: %w", ErrAllStrategiesFailed)
		userErr := NewUserError(techErr)
		require.NotNil(t, userErr)

		assert.Equal(t, "File could not be read as CSV", userErr.Error())
		assert.ErrorIs(t, userErr, ErrAllStrategiesFailed)
	})

	t.Run("mapping a user error returns its own message", func(t *testing.T) {
		userErr := NewUserError(fmt.Errorf("read a.csv: %w", ErrAllStrategiesFailed))

		got := MapError(fmt.Errorf("event: %w", userErr))
		assert.Equal(t, "FILE002", got.Code)
		assert.Equal(t, "The file is empty (Code: FILE005). Select a CSV file with data rows",
			FormatUserError(NewUserError(ErrEmptyFile)))
	})
}
