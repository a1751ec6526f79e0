package derive

import (
	"encoding/base64"
	"math/big"
)

// Charset is the ordered alphabet of the printable text encoding: ASCII
// letters, digits, punctuation and space.
const Charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	"!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~" +
	" "

// EncodeText renders b, read as a big-endian unsigned integer, in base
// len(Charset). A zero value encodes as the first charset character.
func EncodeText(b []byte) string {
	num := new(big.Int).SetBytes(b)
	if num.Sign() == 0 {
		return Charset[:1]
	}

	radix := big.NewInt(int64(len(Charset)))
	rem := new(big.Int)
	var digits []byte
	for num.Sign() > 0 {
		num.QuoRem(num, radix, rem)
		digits = append(digits, Charset[rem.Int64()])
	}
	reverse(digits)
	return string(digits)
}

// EncodeClean returns the unpadded URL-safe base64 encoding of b.
func EncodeClean(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}
