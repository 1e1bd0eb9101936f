package csr

import (
	"errors"
	"fmt"

	"github.com/go-acme/lego/v4/certcrypto"
)

// MaxSubjectLength is the hard X.509 bound on the common name. Requests with
// a longer subject cannot be issued and need template changes upstream, so
// callers treat this as a non-retryable policy violation rather than a parse
// error.
const MaxSubjectLength = 64

var (
	ErrNoCommonName = errors.New("CSR has no common name")
)

// ExtractSubject parses a PEM-encoded CSR and returns its subject common
// name. The length policy is deliberately not enforced here.
func ExtractSubject(csrPEM string) (string, error) {
	req, err := certcrypto.PemDecodeTox509CSR([]byte(csrPEM))
	if err != nil {
		return "", fmt.Errorf("error decoding CSR: %w", err)
	}
	if req.Subject.CommonName == "" {
		return "", ErrNoCommonName
	}
	return req.Subject.CommonName, nil
}
