// README: Navigation token codec (command + ordered fields within the callback byte budget).
package token

import (
	"errors"
	"strings"
)

const (
	// Separator joins the command and its fields. Fields carry IDs and enum
	// tags only, never free text; Encode rejects values containing it.
	Separator = ";"

	// MaxBytes is the transport's callback-data limit.
	MaxBytes = 64
)

var (
	ErrTokenTooLarge = errors.New("token exceeds byte budget")
	ErrInvalidToken  = errors.New("invalid token")
)

func Encode(command string, fields ...string) (string, error) {
	if command == "" || strings.Contains(command, Separator) {
		return "", ErrInvalidToken
	}
	parts := make([]string, 0, len(fields)+1)
	parts = append(parts, command)
	for _, f := range fields {
		if strings.Contains(f, Separator) {
			return "", ErrInvalidToken
		}
		parts = append(parts, f)
	}
	t := strings.Join(parts, Separator)
	if len(t) > MaxBytes {
		return "", ErrTokenTooLarge
	}
	return t, nil
}

func Decode(t string) (string, []string, error) {
	if t == "" || len(t) > MaxBytes {
		return "", nil, ErrInvalidToken
	}
	parts := strings.Split(t, Separator)
	if parts[0] == "" {
		return "", nil, ErrInvalidToken
	}
	return parts[0], parts[1:], nil
}

// MustEncode builds tokens whose size is known statically (fixed menus).
// Dynamic keyboards go through Encode and drop oversized entries.
func MustEncode(command string, fields ...string) string {
	t, err := Encode(command, fields...)
	if err != nil {
		panic(err)
	}
	return t
}
