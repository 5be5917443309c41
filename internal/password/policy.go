package password

import (
	"fmt"
	"strings"
	"unicode"
)

// CharClass is a named set of characters counted toward class diversity.
type CharClass struct {
	Name     string
	Contains func(r rune) bool
}

var (
	ClassLetter = CharClass{Name: "letter", Contains: unicode.IsLetter}
	ClassDigit  = CharClass{Name: "digit", Contains: unicode.IsDigit}
	ClassLower  = CharClass{Name: "lower", Contains: unicode.IsLower}
	ClassUpper  = CharClass{Name: "upper", Contains: unicode.IsUpper}
	ClassSymbol = CharClass{Name: "symbol", Contains: isSymbol}
)

// Named class sets selectable from configuration.
const (
	ClassSetLettersDigits = "letters-digits"
	ClassSetFourClass     = "four-class"
)

// ClassSet returns the character classes registered under name.
func ClassSet(name string) ([]CharClass, error) {
	switch name {
	case ClassSetLettersDigits:
		return []CharClass{ClassLetter, ClassDigit}, nil
	case ClassSetFourClass:
		return []CharClass{ClassLower, ClassUpper, ClassDigit, ClassSymbol}, nil
	}
	return nil, fmt.Errorf("unknown password class set %q", name)
}

// Reason is a machine-readable policy failure.
type Reason string

const (
	ReasonTooShort       Reason = "too_short"
	ReasonTooLong        Reason = "too_long"
	ReasonClassDiversity Reason = "insufficient_class_diversity"
	ReasonReused         Reason = "reused"
)

// MaxBcryptBytes is the longest input bcrypt accepts.
const MaxBcryptBytes = 72

// PolicyError lists every rule a candidate password failed.
type PolicyError struct {
	Reasons []Reason
}

func (e *PolicyError) Error() string {
	parts := make([]string, len(e.Reasons))
	for i, r := range e.Reasons {
		parts[i] = string(r)
	}
	return "password policy violation: " + strings.Join(parts, ", ")
}

// Has reports whether reason is among the failures.
func (e *PolicyError) Has(reason Reason) bool {
	for _, r := range e.Reasons {
		if r == reason {
			return true
		}
	}
	return false
}

// Policy is the single password format policy applied to self-service
// changes, administrative resets and account creation alike.
type Policy struct {
	// MinLength counts runes, not bytes
	MinLength int

	// MaxLength counts bytes. 0 means MaxBcryptBytes.
	MaxLength int

	// RequiredClasses is how many of Classes a password must touch
	RequiredClasses int

	Classes []CharClass

	// HistoryCount is how many recent passwords, the current one included,
	// may not be reused. 0 disables the check.
	HistoryCount int
}

// DefaultPolicy is 8 characters drawn from at least letters and digits.
func DefaultPolicy() *Policy {
	classes, _ := ClassSet(ClassSetLettersDigits)
	return &Policy{
		MinLength:       8,
		MaxLength:       MaxBcryptBytes,
		RequiredClasses: 2,
		Classes:         classes,
	}
}

// MaxBytes returns the effective byte limit.
func (p *Policy) MaxBytes() int {
	if p.MaxLength <= 0 || p.MaxLength > MaxBcryptBytes {
		return MaxBcryptBytes
	}
	return p.MaxLength
}

// Validate checks the format rules. It returns nil or a *PolicyError.
func (p *Policy) Validate(plaintext string) error {
	var reasons []Reason

	if len([]rune(plaintext)) < p.MinLength {
		reasons = append(reasons, ReasonTooShort)
	}
	if len(plaintext) > p.MaxBytes() {
		reasons = append(reasons, ReasonTooLong)
	}
	if p.countClasses(plaintext) < p.RequiredClasses {
		reasons = append(reasons, ReasonClassDiversity)
	}

	if len(reasons) > 0 {
		return &PolicyError{Reasons: reasons}
	}
	return nil
}

// CoveredClasses returns how many configured classes appear in s.
func (p *Policy) CoveredClasses(s string) int {
	return p.countClasses(s)
}

func (p *Policy) countClasses(s string) int {
	count := 0
	for _, class := range p.Classes {
		for _, r := range s {
			if class.Contains(r) {
				count++
				break
			}
		}
	}
	return count
}

// Describe renders the policy for read-only display.
func (p *Policy) Describe() PolicyDescription {
	names := make([]string, len(p.Classes))
	for i, c := range p.Classes {
		names[i] = c.Name
	}
	return PolicyDescription{
		MinLength:       p.MinLength,
		MaxLength:       p.MaxBytes(),
		RequiredClasses: p.RequiredClasses,
		Classes:         names,
		HistoryCount:    p.HistoryCount,
	}
}

// PolicyDescription is the serializable form of a Policy.
type PolicyDescription struct {
	MinLength       int      `json:"minLength"`
	MaxLength       int      `json:"maxLength"`
	RequiredClasses int      `json:"requiredClasses"`
	Classes         []string `json:"classes"`
	HistoryCount    int      `json:"historyCount"`
}

func isSymbol(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
