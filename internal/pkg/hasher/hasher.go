// Package hasher computes and verifies adaptive password hashes and
// enforces the registration password-strength policy.
package hasher

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Cost is tuned so a verification takes on the order of 100ms on
// commodity hardware.
const Cost = 12

const minPasswordLength = 8

// maxPasswordBytes is bcrypt's input limit; anything longer must be
// rejected by the policy, not by a hashing failure.
const maxPasswordBytes = 72

// SpecialChars is the accepted symbol set for the strength policy.
const SpecialChars = "!@#$%^&*()-_=+[]{};:,.<>?/|~"

// ErrCorruptCredential marks a stored hash that bcrypt cannot parse.
// It is distinct from a password mismatch: corrupted storage must never
// be reported as a wrong password.
var ErrCorruptCredential = errors.New("stored credential hash is malformed")

// Issue is one unmet password-policy rule with a remediation hint.
type Issue struct {
	Rule string `json:"rule"`
	Hint string `json:"hint"`
}

// Policy rule identifiers.
const (
	RuleMinLength = "min_length"
	RuleMaxLength = "max_length"
	RuleUppercase = "uppercase"
	RuleLowercase = "lowercase"
	RuleDigit     = "digit"
	RuleSymbol    = "symbol"
)

// Hash computes a salted bcrypt hash of the plaintext.
func Hash(plaintext string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), Cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(h), nil
}

// Verify compares plaintext against a stored hash. A malformed stored hash
// surfaces as ErrCorruptCredential, never as a false mismatch.
func Verify(plaintext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrCorruptCredential, err)
	}
}

// CheckStrength evaluates the password policy and returns every unmet
// rule. An empty slice means the password is acceptable.
func CheckStrength(plaintext string) []Issue {
	var issues []Issue
	if len(plaintext) < minPasswordLength {
		issues = append(issues, Issue{
			Rule: RuleMinLength,
			Hint: fmt.Sprintf("use at least %d characters", minPasswordLength),
		})
	}
	if len(plaintext) > maxPasswordBytes {
		issues = append(issues, Issue{
			Rule: RuleMaxLength,
			Hint: fmt.Sprintf("use at most %d bytes", maxPasswordBytes),
		})
	}

	var upper, lower, digit, symbol bool
	for _, r := range plaintext {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(SpecialChars, r):
			symbol = true
		}
	}
	if !upper {
		issues = append(issues, Issue{Rule: RuleUppercase, Hint: "add an uppercase letter"})
	}
	if !lower {
		issues = append(issues, Issue{Rule: RuleLowercase, Hint: "add a lowercase letter"})
	}
	if !digit {
		issues = append(issues, Issue{Rule: RuleDigit, Hint: "add a digit"})
	}
	if !symbol {
		issues = append(issues, Issue{Rule: RuleSymbol, Hint: "add a symbol such as " + SpecialChars[:6]})
	}
	return issues
}
