package auth

import "testing"

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret-password1")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if len(hash) == 0 {
		t.Fatalf("empty hash")
	}

	other, err := HashPassword("secret-password1")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if string(hash) == string(other) {
		t.Fatalf("expected different hashes for same password (bcrypt salt)")
	}
}

func TestHashPassword_Empty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatalf("expected error for empty password")
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse1")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	if !VerifyPassword("correct-horse1", hash) {
		t.Fatalf("valid password rejected")
	}
	if VerifyPassword("wrong-horse1", hash) {
		t.Fatalf("invalid password accepted")
	}
	if VerifyPassword("correct-horse1", []byte("not-a-hash")) {
		t.Fatalf("garbage hash accepted")
	}
}
