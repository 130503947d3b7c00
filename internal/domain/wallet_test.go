package domain

import (
	"errors"
	"testing"
)

func TestNormalizeWallet(t *testing.T) {
	got, err := NormalizeWallet("0x86EA31421E159a9020378df039c23D55C6D0C62B")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "0x86ea31421e159a9020378df039c23d55c6d0c62b"
	if got != want {
		t.Errorf("NormalizeWallet = %q, want %q", got, want)
	}
}

func TestNormalizeWalletInvalid(t *testing.T) {
	for _, in := range []string{"", "0x123", "86ea31421e159a9020378df039c23d55c6d0c62b", "0xZZea31421e159a9020378df039c23d55c6d0c62b"} {
		if _, err := NormalizeWallet(in); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("NormalizeWallet(%q) err = %v, want ErrInvalidRequest", in, err)
		}
	}
}

func TestShortWallet(t *testing.T) {
	got := ShortWallet("0x86ea31421e159a9020378df039c23d55c6d0c62b")
	if got != "0x86ea…c62b" {
		t.Errorf("ShortWallet = %q", got)
	}
}
