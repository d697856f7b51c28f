package ident

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"enverge/internal/shared/errors"
)

const (
	// LfdiLength is the rendered LFDI length: "0x" plus 40 hex characters.
	LfdiLength = 42

	lfdiHexDigits = 40
	sfdiHexDigits = 9
)

// LfdiFromPEM derives the Long Form Device Identifier from a forwarded,
// URL percent encoded PEM certificate: decode, strip the armor lines,
// base64 decode to DER, SHA-256, left truncate to 40 hex and prefix "0x".
func LfdiFromPEM(encodedPEM string) (string, error) {
	pem, err := url.QueryUnescape(encodedPEM)
	if err != nil {
		return "", errors.NewBadRequestError("certificate header is not URL encoded", err.Error())
	}

	lines := strings.Split(strings.TrimSpace(pem), "\n")
	if len(lines) < 3 {
		return "", errors.NewBadRequestError("certificate PEM is too short")
	}
	body := strings.Join(lines[1:len(lines)-1], "")
	body = strings.Map(func(r rune) rune {
		if r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, body)

	der, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return "", errors.NewBadRequestError("certificate PEM body is not base64", err.Error())
	}

	sum := sha256.Sum256(der)
	digest := hex.EncodeToString(sum[:])
	return "0x" + digest[:lfdiHexDigits], nil
}

// NormalizeLfdi lowercases an LFDI for comparison and storage, validating
// its shape.
func NormalizeLfdi(lfdi string) (string, error) {
	lfdi = strings.ToLower(strings.TrimSpace(lfdi))
	if len(lfdi) != LfdiLength || !strings.HasPrefix(lfdi, "0x") {
		return "", errors.NewBadRequestError(fmt.Sprintf("lfdi %q is not 0x followed by 40 hex characters", lfdi))
	}
	if _, err := hex.DecodeString(lfdi[2:]); err != nil {
		return "", errors.NewBadRequestError(fmt.Sprintf("lfdi %q is not hexadecimal", lfdi))
	}
	return lfdi, nil
}

// SfdiFromLfdi derives the Short Form Device Identifier: the leftmost
// 36 bits of the certificate fingerprint, decimal shifted one place with a
// sum check digit appended (IEEE 2030.5-2018 s6.3.4).
func SfdiFromLfdi(lfdi string) (uint64, error) {
	normalized, err := NormalizeLfdi(lfdi)
	if err != nil {
		return 0, err
	}
	truncated, err := strconv.ParseUint(normalized[2:2+sfdiHexDigits], 16, 64)
	if err != nil {
		return 0, errors.NewBadRequestError("lfdi prefix is not hexadecimal", err.Error())
	}
	return truncated*10 + sumCheckDigit(truncated), nil
}

// sumCheckDigit returns the digit that makes the decimal digit sum of
// v*10+digit a multiple of 10.
func sumCheckDigit(v uint64) uint64 {
	var sum uint64
	for n := v; n > 0; n /= 10 {
		sum += n % 10
	}
	return (10 - sum%10) % 10
}
