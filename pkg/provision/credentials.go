package provision

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/pkg/errors"
)

const (
	// UsernamePrefix is the fixed prefix of generated usernames.
	UsernamePrefix = "ghost-"

	// UsernameMax bounds the numeric suffix of generated usernames
	// (exclusive). The namespace is deliberately small and collisions with
	// accounts from earlier runs are handled by the pipeline.
	UsernameMax = 1000

	// PasswordLength is the length of generated passwords.
	PasswordLength = 10
)

// Password character classes. Every generated password contains at least one
// character from each class.
const (
	passwordLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	passwordDigits  = "0123456789"
	passwordSymbols = "!@#$%^&*"
)

// NewUsername generates a candidate username of the form ghost-<n> with n in
// [0, 1000).
func NewUsername() (string, error) {
	n, err := randIndex(UsernameMax)
	if err != nil {
		return "", errors.Wrap(err, "failed to read random bytes")
	}

	return fmt.Sprintf("%s%d", UsernamePrefix, n), nil
}

// NewPassword generates a random password containing at least one letter, one
// digit, and one symbol. The symbol set is restricted to characters that
// survive single-quoted SQL literals and shell copy/paste.
func NewPassword() (string, error) {
	classes := []string{passwordLetters, passwordDigits, passwordSymbols}
	full := passwordLetters + passwordDigits + passwordSymbols

	buf := make([]byte, 0, PasswordLength)
	for _, class := range classes {
		i, err := randIndex(len(class))
		if err != nil {
			return "", errors.Wrap(err, "failed to read random bytes")
		}

		buf = append(buf, class[i])
	}

	for len(buf) < PasswordLength {
		i, err := randIndex(len(full))
		if err != nil {
			return "", errors.Wrap(err, "failed to read random bytes")
		}

		buf = append(buf, full[i])
	}

	// Shuffle so the class-guaranteed characters are not always the prefix.
	for i := len(buf) - 1; i > 0; i-- {
		j, err := randIndex(i + 1)
		if err != nil {
			return "", errors.Wrap(err, "failed to read random bytes")
		}

		buf[i], buf[j] = buf[j], buf[i]
	}

	return string(buf), nil
}

func randIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}

	return int(v.Int64()), nil
}
