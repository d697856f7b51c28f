package manager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enverge/internal/shared/constants"
	apperrors "enverge/internal/shared/errors"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "whole dollars", input: "1", want: 10000},
		{name: "two decimal places", input: "0.25", want: 2500},
		{name: "full precision", input: "1.2345", want: 12345},
		{name: "negative feed in price", input: "-0.05", want: -500},
		{name: "zero", input: "0", want: 0},
		{name: "bare fraction", input: ".5", want: 5000},
		{name: "negative bare fraction", input: "-.5", want: -5000},
		{name: "surrounding whitespace", input: " 2.00 ", want: 20000},
		{name: "too many decimal places", input: "0.12345", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
		{name: "double dot", input: "1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePrice(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsBadRequestError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseGroupID(t *testing.T) {
	t.Run("doe alias resolves to the legacy group", func(t *testing.T) {
		id, err := ParseGroupID("doe")
		require.NoError(t, err)
		assert.Equal(t, constants.LegacySiteControlGroupID, id)
	})

	t.Run("numeric segment", func(t *testing.T) {
		id, err := ParseGroupID("42")
		require.NoError(t, err)
		assert.Equal(t, uint64(42), id)
	})

	t.Run("unknown segment is not found", func(t *testing.T) {
		_, err := ParseGroupID("fcas")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFoundError(err))
	})
}

func TestParseResponseSetType(t *testing.T) {
	for _, valid := range []string{"site-control", "tariff-generated-rate"} {
		got, err := ParseResponseSetType(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, got)
	}

	_, err := ParseResponseSetType("unknown")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFoundError(err))
}
