package auth

import (
	"errors"
	"testing"
)

func TestBcryptProviderCheck(t *testing.T) {
	hash, err := HashCredential("exam123", 4)
	if err != nil {
		t.Fatalf("HashCredential: %v", err)
	}

	provider := NewBcryptProvider(hash)

	if err := provider.Check("exam123"); err != nil {
		t.Errorf("Check with correct credential: %v", err)
	}
	if err := provider.Check("wrong"); !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("Check with wrong credential = %v, want ErrInvalidCredential", err)
	}
	if err := provider.Check(""); !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("Check with empty credential = %v, want ErrInvalidCredential", err)
	}
}

func TestHashCredentialUnique(t *testing.T) {
	h1, err := HashCredential("exam123", 4)
	if err != nil {
		t.Fatalf("HashCredential: %v", err)
	}
	h2, err := HashCredential("exam123", 4)
	if err != nil {
		t.Fatalf("HashCredential: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same credential are identical (salt missing)")
	}
}
