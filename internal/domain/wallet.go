package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var walletRe = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

// NormalizeWallet lowercases and validates a wallet identity.
// Wallets are 0x-prefixed 40-hex-digit addresses, stored lowercase.
func NormalizeWallet(addr string) (string, error) {
	a := strings.ToLower(strings.TrimSpace(addr))
	if !walletRe.MatchString(a) {
		return "", fmt.Errorf("%w: invalid wallet address %q", ErrInvalidRequest, addr)
	}
	return a, nil
}

// ShortWallet abbreviates a wallet address for logs: 0x1234…abcd.
func ShortWallet(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
