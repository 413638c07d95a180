// Package validation holds the pure input checks shared by the client
// pieces and the REST handlers, so bad input is rejected before it
// reaches the network and rejected again authoritatively on the server.
package validation

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const passwordSymbols = "!@#$%^&*()_+={}[]:;\"'<>,.?/~\\`|-"

// ValidateSignup checks signup credentials and returns every violation at
// once rather than stopping at the first, so a form can show all problems
// together. confirm may be nil when no confirmation field was shown.
func ValidateSignup(email, password string, confirm *string) []string {
	var errs []string

	if !emailRe.MatchString(email) {
		errs = append(errs, "Please provide a valid email address.")
	}

	if len(password) < 8 {
		errs = append(errs, "Password must be at least 8 characters long.")
	}

	// Only latin letters, digits, spaces, and the symbol set are allowed;
	// any other character fails the strength check outright.
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	outsideAlphabet := false
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		case r == ' ':
		default:
			outsideAlphabet = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSymbol || outsideAlphabet {
		errs = append(errs, "Password must contain an uppercase letter, a lowercase letter, a number, and a special character.")
	}

	if confirm != nil && password != *confirm {
		errs = append(errs, "Passwords do not match.")
	}

	return errs
}

// ErrInvalidJobLink is returned for job links that are not absolute
// http/https URLs with a real hostname.
var ErrInvalidJobLink = errors.New("Job link must be a valid URL")

// ValidateJobLink accepts an empty link (the field is optional). A
// non-empty link must be an absolute http or https URL whose hostname
// contains a dot, which rules out bare hostnames without a TLD.
func ValidateJobLink(link string) error {
	if link == "" {
		return nil
	}

	u, err := url.Parse(link)
	if err != nil {
		return ErrInvalidJobLink
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidJobLink
	}
	if !strings.Contains(u.Hostname(), ".") {
		return ErrInvalidJobLink
	}
	return nil
}
