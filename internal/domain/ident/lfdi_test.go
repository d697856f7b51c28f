package ident

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLfdiFromPEM(t *testing.T) {
	der := []byte("not a real certificate but any DER bytes hash the same way")
	sum := sha256.Sum256(der)
	wantLfdi := "0x" + hex.EncodeToString(sum[:])[:40]

	body := base64.StdEncoding.EncodeToString(der)
	pem := "-----BEGIN CERTIFICATE-----\n" + body + "\n-----END CERTIFICATE-----"

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "url encoded pem",
			input: url.QueryEscape(pem),
			want:  wantLfdi,
		},
		{
			name:  "pem with carriage returns",
			input: url.QueryEscape("-----BEGIN CERTIFICATE-----\r\n" + body + "\r\n-----END CERTIFICATE-----"),
			want:  wantLfdi,
		},
		{
			name:    "invalid url encoding",
			input:   "%zz",
			wantErr: true,
		},
		{
			name:    "pem too short",
			input:   url.QueryEscape("-----BEGIN CERTIFICATE-----"),
			wantErr: true,
		},
		{
			name:    "body not base64",
			input:   url.QueryEscape("-----BEGIN CERTIFICATE-----\n!!!not-base64!!!\n-----END CERTIFICATE-----"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LfdiFromPEM(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, LfdiLength)
		})
	}
}

func TestNormalizeLfdi(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "already normalized",
			input: "0x3e4f45ab31edfe5b67e343e5e4562e31984e23e5",
			want:  "0x3e4f45ab31edfe5b67e343e5e4562e31984e23e5",
		},
		{
			name:  "uppercase lowered",
			input: "0X3E4F45AB31EDFE5B67E343E5E4562E31984E23E5",
			want:  "0x3e4f45ab31edfe5b67e343e5e4562e31984e23e5",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  0x3e4f45ab31edfe5b67e343e5e4562e31984e23e5\n",
			want:  "0x3e4f45ab31edfe5b67e343e5e4562e31984e23e5",
		},
		{
			name:    "missing prefix",
			input:   "3e4f45ab31edfe5b67e343e5e4562e31984e23e5",
			wantErr: true,
		},
		{
			name:    "wrong length",
			input:   "0x3e4f45ab",
			wantErr: true,
		},
		{
			name:    "non hex digits",
			input:   "0xzz4f45ab31edfe5b67e343e5e4562e31984e23e5",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeLfdi(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSfdiFromLfdi(t *testing.T) {
	// Worked example from IEEE 2030.5-2018 s6.3.3/s6.3.4.
	sfdi, err := SfdiFromLfdi("0x3e4f45ab31edfe5b67e343e5e4562e31984e23e5")
	require.NoError(t, err)
	assert.Equal(t, uint64(167261211391), sfdi)

	_, err = SfdiFromLfdi("not-an-lfdi")
	assert.Error(t, err)
}

func TestSumCheckDigit(t *testing.T) {
	tests := []struct {
		v    uint64
		want uint64
	}{
		{0, 0},
		{1, 9},
		{9, 1},
		{10, 9},
		{19, 0},
		{16726121139, 1},
	}

	for _, tt := range tests {
		if got := sumCheckDigit(tt.v); got != tt.want {
			t.Errorf("sumCheckDigit(%d) = %d, want %d", tt.v, got, tt.want)
		}
	}
}
