package token

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand"
	"time"
)

const (
	// ShareTokenLength is the length of an item share token.
	// 24 base58 characters carry about 140 bits of entropy.
	ShareTokenLength = 24
	// QRTokenLength is the length of a QR transfer token.
	QRTokenLength = 32
)

// SecureToken generates a unique random token.
// The alphabet is base58 so tokens stay URL-safe and unambiguous.
func SecureToken(length int) string {
	const base58 = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

	pass := make([]byte, length)
	chars := []byte(base58)
	mrand.New(mrand.NewSource(time.Now().UnixNano())).Shuffle(len(chars), func(i, j int) {
		chars[i], chars[j] = chars[j], chars[i]
	})
	max := big.NewInt(int64(len(chars)))

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err) // should never occured because max >= 0
		}
		pass[i] = chars[int(n.Int64())]
	}

	return string(pass)
}
