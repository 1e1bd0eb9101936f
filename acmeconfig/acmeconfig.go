package acmeconfig

import (
	"errors"
	"net/url"
	"os"
	"regexp"
)

// The reason strings double as the Blocked status text, so they are written
// for operators, not for errors.Is chains.
var (
	ErrEmailMissing  = errors.New("Email address was not provided")
	ErrServerMissing = errors.New("ACME server was not provided")
	ErrEmailInvalid  = errors.New("Invalid email address")
	ErrServerInvalid = errors.New("Invalid ACME server")

	emailRegex = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+`)
)

type AcmeConfig struct {
	// Contact email for the ACME account
	Email string
	// ACME directory URL
	Server string
}

// FromEnv reads the generic ACME settings fresh from the environment. Config
// can change between requests, so nothing here is cached.
func FromEnv() AcmeConfig {
	return AcmeConfig{
		Email:  os.Getenv("ACME_EMAIL"),
		Server: os.Getenv("ACME_SERVER"),
	}
}

// ValidateGeneric checks the generic ACME settings, returning the first
// failure in a fixed order: presence before format.
func (c AcmeConfig) ValidateGeneric() error {
	if c.Email == "" {
		return ErrEmailMissing
	}
	if c.Server == "" {
		return ErrServerMissing
	}
	if !emailIsValid(c.Email) {
		return ErrEmailInvalid
	}
	if !serverIsValid(c.Server) {
		return ErrServerInvalid
	}
	return nil
}

func emailIsValid(email string) bool {
	return emailRegex.MatchString(email)
}

// serverIsValid requires an absolute URL with both a scheme and a host.
func serverIsValid(server string) bool {
	parts, err := url.Parse(server)
	if err != nil {
		return false
	}
	return parts.Scheme != "" && parts.Host != ""
}
