package domain

import (
	"fmt"
	"strings"
)

const MaxCodeLen = 16

// NormalizeCode upper-cases an event code and checks it is 1..maxLen
// alphanumeric characters.
func NormalizeCode(code string, maxLen int) (string, error) {
	if maxLen <= 0 || maxLen > MaxCodeLen {
		maxLen = MaxCodeLen
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || len(code) > maxLen {
		return "", fmt.Errorf("%w: event code must be 1-%d characters", ErrValidation, maxLen)
	}
	for _, c := range code {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return "", fmt.Errorf("%w: event code must be alphanumeric", ErrValidation)
		}
	}
	return code, nil
}
