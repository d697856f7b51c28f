package admin

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// nmiPattern: an Australian NMI is 10 alphanumeric characters plus a
// checksum character; O and I are excluded to avoid digit confusion.
func validNmi(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 11 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z' && r != 'O' && r != 'I':
		default:
			return false
		}
	}
	return true
}

// lfdiHex accepts "0x" followed by 40 hex characters, either case.
func validLfdi(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 42 || s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		return false
	}
	for _, r := range s[2:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// RegisterValidations installs the operator surface's custom binding
// rules on gin's validator engine. Called once from router setup.
func RegisterValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("nmi", validNmi)
		_ = v.RegisterValidation("lfdi", validLfdi)
	}
}
