package pkg

import (
	"math/rand"
	"strings"
)

// RandAddress returns a random 0x-prefixed 20-byte hex identifier, used
// by tests as identities and asset addresses.
func RandAddress() string {
	var builder strings.Builder
	builder.Grow(42)
	builder.WriteString("0x")

	const digits = "0123456789abcdef"
	for range 40 {
		builder.WriteByte(digits[rand.Intn(len(digits))]) //nolint:gosec
	}

	return builder.String()
}
