package utils

import (
	"crypto/rand"
	"math/big"
)

const nameAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomName returns n characters drawn from uppercase letters and digits.
func RandomName(n int) (string, error) {
	if n <= 0 {
		n = 15
	}
	max := big.NewInt(int64(len(nameAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = nameAlphabet[idx.Int64()]
	}
	return string(b), nil
}
