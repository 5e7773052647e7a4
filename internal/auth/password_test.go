package auth

import "testing"

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "secret1" {
		t.Fatal("hash must not equal the plaintext")
	}

	ok, err := VerifyPassword("secret1", hash)
	if err != nil {
		t.Fatalf("VerifyPassword error: %v", err)
	}
	if !ok {
		t.Fatal("expected matching password to verify")
	}

	ok, err = VerifyPassword("wrong", hash)
	if err != nil {
		t.Fatalf("VerifyPassword error: %v", err)
	}
	if ok {
		t.Fatal("expected non-matching password to fail")
	}
}

func TestHashNotDeterministic(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	h2, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same input must differ")
	}

	for _, h := range []string{h1, h2} {
		ok, err := VerifyPassword("secret1", h)
		if err != nil || !ok {
			t.Fatalf("expected both hashes to verify, got ok=%v err=%v", ok, err)
		}
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	t.Parallel()

	ok, err := VerifyPassword("secret1", "not-a-bcrypt-hash")
	if err == nil {
		t.Fatal("expected a distinguishable error for a malformed hash")
	}
	if ok {
		t.Fatal("malformed hash must not verify")
	}
}
