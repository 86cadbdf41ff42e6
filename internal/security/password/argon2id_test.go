package password

import (
	"strings"
	"testing"
)

// Small parameters keep the KDF fast in tests.
var testParams = Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}

func TestHashVerify_Roundtrip(t *testing.T) {
	phc, err := Hash(testParams, "correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(phc, "$argon2id$v=19$") {
		t.Fatalf("unexpected PHC prefix: %q", phc)
	}
	if !Verify("correct horse battery staple", phc) {
		t.Fatal("expected verify to succeed")
	}
	if Verify("wrong password", phc) {
		t.Fatal("expected verify to fail for wrong password")
	}
}

func TestHash_EmptyPassword(t *testing.T) {
	if _, err := Hash(testParams, ""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestHash_UniqueSalt(t *testing.T) {
	a, err := Hash(testParams, "same input")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := Hash(testParams, "same input")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password must differ by salt")
	}
}

func TestVerify_MalformedPHC(t *testing.T) {
	malformed := []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$ZGs", // wrong variant
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$ZGs",
		"$argon2id$v=19$m=oops$c2FsdA$ZGs",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$ZGs", // bad salt b64
		"$argon2id$v=19$m=8192,t=1,p=1$c2FsdA",  // missing dk
	}
	for _, phc := range malformed {
		if Verify("whatever", phc) {
			t.Fatalf("expected verify to fail for %q", phc)
		}
	}
}
