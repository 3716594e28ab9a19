// Package issue holds the problems reported against a hand.
package issue

import (
	"fmt"
	"strings"

	"github.com/lox/handcheck/internal/hand"
)

// Kind groups problems by the component that found them.
type Kind int

const (
	Structural Kind = iota
	Legality
	Pot
)

func (k Kind) String() string {
	return [...]string{"structural", "legality", "pot"}[k]
}

// Problem is one non-fatal finding. Code is stable across releases; Message is for humans.
type Problem struct {
	Kind    Kind
	Code    string
	Street  hand.Street
	Order   int
	Message string
}

// String renders "[kind] Street #order: message", leaving out the parts that are unset.
func (p Problem) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", p.Kind)
	if p.Street != hand.StreetUnset {
		b.WriteString(" ")
		b.WriteString(p.Street.String())
	}
	if p.Order > 0 {
		fmt.Fprintf(&b, " #%d", p.Order)
	}
	b.WriteString(": ")
	b.WriteString(p.Message)
	return b.String()
}

func Structuralf(code, format string, args ...any) Problem {
	return Problem{Kind: Structural, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Legalityf(code, format string, args ...any) Problem {
	return Problem{Kind: Legality, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Potf(code, format string, args ...any) Problem {
	return Problem{Kind: Pot, Code: code, Message: fmt.Sprintf(format, args...)}
}

// At attaches an action location to the problem.
func (p Problem) At(a hand.Action) Problem {
	p.Street = a.Street
	p.Order = a.Order
	return p
}

// On attaches a street to the problem.
func (p Problem) On(s hand.Street) Problem {
	p.Street = s
	return p
}

// List is an ordered collection of problems.
type List []Problem

// Strings renders every problem for the report.
func (l List) Strings() []string {
	out := make([]string, len(l))
	for i, p := range l {
		out[i] = p.String()
	}
	return out
}

// Codes returns the problem codes in order, mostly for tests.
func (l List) Codes() []string {
	out := make([]string, len(l))
	for i, p := range l {
		out[i] = p.Code
	}
	return out
}

// Has reports whether any problem carries the code.
func (l List) Has(code string) bool {
	for _, p := range l {
		if p.Code == code {
			return true
		}
	}
	return false
}

// Count returns how many problems are of the given kind.
func (l List) Count(k Kind) int {
	n := 0
	for _, p := range l {
		if p.Kind == k {
			n++
		}
	}
	return n
}
