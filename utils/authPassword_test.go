package utils

import "testing"

func TestPasswordHashAndCheck(t *testing.T) {
	hashed, err := HashPassword("secret-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hashed == "secret-password" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !CheckPassword(hashed, "secret-password") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hashed, "wrong-password") {
		t.Error("wrong password accepted")
	}
	if CheckPassword("not-a-bcrypt-hash", "secret-password") {
		t.Error("malformed hash accepted")
	}
}

func TestPasswordHashesAreSalted(t *testing.T) {
	a, err := HashPassword("secret-password")
	if err != nil {
		t.Fatal(err)
	}
	b, err := HashPassword("secret-password")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two hashes of the same password should differ")
	}
}
