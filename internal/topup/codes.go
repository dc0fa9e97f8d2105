package topup

import (
	"crypto/rand"
	"fmt"
)

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// maxUnbiasedByte is the largest multiple of len(codeCharset) that fits in
// a byte. Bytes at or above it are discarded so every charset position is
// equally likely.
const maxUnbiasedByte = byte(256 - 256%len(codeCharset))

// newCode draws a fixed-length alphanumeric voucher code from crypto/rand.
func newCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("code length must be positive")
	}

	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		for _, b := range buf {
			if b >= maxUnbiasedByte {
				continue
			}
			out = append(out, codeCharset[int(b)%len(codeCharset)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}
