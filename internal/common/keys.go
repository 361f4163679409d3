package common

import (
	"crypto/rand"
	"fmt"
)

// KeyAlphabet is the set of symbols used for verification and password reset keys.
const KeyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// KeyLength is the length of every issued verification or password reset key.
const KeyLength = 50

// maxUnbiased is the largest multiple of len(KeyAlphabet) that fits in a byte.
// Bytes at or above it are discarded so every symbol is equally likely.
const maxUnbiased = 256 - 256%len(KeyAlphabet)

// GenerateKey returns a random string of the given length drawn uniformly
// from KeyAlphabet using crypto/rand.
func GenerateKey(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}

	out := make([]byte, 0, length)
	buf := make([]byte, length+length/4)

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= maxUnbiased {
				continue
			}
			out = append(out, KeyAlphabet[int(b)%len(KeyAlphabet)])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}
