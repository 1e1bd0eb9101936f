package csr

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"strings"
	"testing"
)

func TestExtractSubject(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	pemCSR, err := GeneratePEM(key, "example.com", []string{"example.com", "www.example.com"}, false)
	if err != nil {
		t.Fatal(err)
	}

	subject, err := ExtractSubject(string(pemCSR))
	if err != nil {
		t.Fatal(err)
	}
	if subject != "example.com" {
		t.Fatalf("got subject %q expected example.com", subject)
	}
}

func TestExtractSubjectMalformedPEM(t *testing.T) {
	_, err := ExtractSubject("not a csr")
	if err == nil {
		t.Fatal("expected error for malformed PEM")
	}
}

func TestExtractSubjectNoCommonName(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	pemCSR, err := GeneratePEM(key, "", []string{"example.com"}, false)
	if err != nil {
		t.Fatal(err)
	}

	_, err = ExtractSubject(string(pemCSR))
	if !errors.Is(err, ErrNoCommonName) {
		t.Fatalf("expected ErrNoCommonName, got %v", err)
	}
}

func TestExtractSubjectOverlong(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	long := strings.Repeat("a", 65)
	pemCSR, err := GeneratePEM(key, long, []string{long}, false)
	if err != nil {
		t.Fatal(err)
	}

	// The parser itself accepts it, the bound is the caller's policy check.
	subject, err := ExtractSubject(string(pemCSR))
	if err != nil {
		t.Fatal(err)
	}
	if len(subject) <= MaxSubjectLength {
		t.Fatalf("expected subject longer than %d, got %d", MaxSubjectLength, len(subject))
	}
}

func TestGenerateMustStaple(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	der, err := Generate(key, "example.com", []string{"example.com"}, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(der) == 0 {
		t.Fatal("empty CSR")
	}
}
