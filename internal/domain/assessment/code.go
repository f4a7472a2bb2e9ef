package assessment

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/zivahealth/ziva/internal/platform/xerrors"
)

// CodeLength is the canonical length of an assessment access code.
const CodeLength = 12

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NormalizeCode strips separators and whitespace from user input and
// uppercases the rest. "a1b2-c3d4 e5f6" and "A1B2C3D4E5F6" normalize to the
// same canonical form.
func NormalizeCode(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidCodeFormat reports whether a normalized code has the canonical
// shape: exactly CodeLength uppercase alphanumerics.
func IsValidCodeFormat(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// GenerateCode produces a random code from the 36-character alphabet.
func GenerateCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

// CanActivate decides whether a code can be redeemed at the given instant.
// Checks run in a fixed order so the caller reports the most specific
// failure: format, then expiry, then prior use.
func CanActivate(a *AssessmentCode, now time.Time) error {
	if !IsValidCodeFormat(a.Code) {
		return fmt.Errorf("code %q: %w", a.Code, xerrors.ErrMalformed)
	}
	if a.Status == StatusExpired || now.After(a.ExpiresAt) {
		return fmt.Errorf("code expired at %s: %w", a.ExpiresAt.Format(time.RFC3339), xerrors.ErrExpired)
	}
	if a.Status == StatusUsed {
		return fmt.Errorf("code already redeemed: %w", xerrors.ErrAlreadyUsed)
	}
	return nil
}
