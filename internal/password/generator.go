package password

import (
	"errors"
	"fmt"
	"unicode/utf8"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultTemporaryAlphabet is lowercase letters and digits.
const DefaultTemporaryAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// DefaultTemporaryLength is the length of generated temporary passwords.
const DefaultTemporaryLength = 8

const maxGenerateAttempts = 256

var ErrGeneratorExhausted = errors.New("could not generate a policy-compliant temporary password")

// Generator issues temporary passwords. Every character is drawn uniformly
// from Alphabet; candidates that fail the policy are discarded and drawn again.
type Generator struct {
	length   int
	alphabet string
	policy   *Policy
}

// NewGenerator rejects settings under which no candidate could ever pass the policy.
func NewGenerator(length int, alphabet string, policy *Policy) (*Generator, error) {
	if length <= 0 {
		return nil, fmt.Errorf("temporary password length must be positive, got %d", length)
	}
	if alphabet == "" {
		return nil, errors.New("temporary password alphabet is empty")
	}
	if length < policy.MinLength {
		return nil, fmt.Errorf("temporary password length %d is below the policy minimum %d", length, policy.MinLength)
	}
	if length*maxRuneBytes(alphabet) > policy.MaxBytes() {
		return nil, fmt.Errorf("temporary password length %d can exceed the policy maximum of %d bytes", length, policy.MaxBytes())
	}
	if covered := policy.CoveredClasses(alphabet); covered < policy.RequiredClasses {
		return nil, fmt.Errorf("temporary password alphabet covers %d character classes, policy requires %d", covered, policy.RequiredClasses)
	}
	if length < policy.RequiredClasses {
		return nil, fmt.Errorf("temporary password length %d cannot hold %d character classes", length, policy.RequiredClasses)
	}
	return &Generator{length: length, alphabet: alphabet, policy: policy}, nil
}

// Length returns the configured length.
func (g *Generator) Length() int { return g.length }

// Generate returns a fresh temporary password.
func (g *Generator) Generate() (string, error) {
	for i := 0; i < maxGenerateAttempts; i++ {
		candidate, err := gonanoid.Generate(g.alphabet, g.length)
		if err != nil {
			return "", err
		}
		if g.policy.Validate(candidate) == nil {
			return candidate, nil
		}
	}
	return "", ErrGeneratorExhausted
}

func maxRuneBytes(alphabet string) int {
	widest := 0
	for _, r := range alphabet {
		if n := utf8.RuneLen(r); n > widest {
			widest = n
		}
	}
	return widest
}
