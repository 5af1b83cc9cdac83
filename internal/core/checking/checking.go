// Package checking defines the closed set of checks callers can request from
// the resolver, the priority tiers that order them, and helpers to normalize
// a requested sequence
package checking

import (
	"fmt"
	"sort"
	"strings"
)

// Kind enumerates the checking variants
type Kind uint8

const (
	// KindRange asserts an explicit caller supplied span
	KindRange Kind = iota + 1
	// KindRegex searches the text with a caller supplied pattern
	KindRegex
	// KindAction adopts markers already attached to the text
	KindAction
	// KindDate asks the content detector for date expressions
	KindDate
	// KindLink asks the content detector for URLs
	KindLink
	// KindAddress asks the content detector for postal addresses
	KindAddress
	// KindPhoneNumber asks the content detector for phone numbers
	KindPhoneNumber
	// KindTransitInformation asks the content detector for flight references
	KindTransitInformation
)

var kindNames = map[Kind]string{
	KindRange:              "range",
	KindRegex:              "regex",
	KindAction:             "action",
	KindDate:               "date",
	KindLink:               "link",
	KindAddress:            "address",
	KindPhoneNumber:        "phone_number",
	KindTransitInformation: "transit_information",
}

// String returns the canonical lowercase name of the kind
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is one of the declared kinds
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Tier returns the priority group used to settle overlap conflicts.
// Lower tiers claim spans first: explicit ranges, then patterns, then
// adopted markers, then everything the content detector reports
func (k Kind) Tier() int {
	switch k {
	case KindRange:
		return 0
	case KindRegex:
		return 1
	case KindAction:
		return 2
	default:
		return 3
	}
}

// Content reports whether the kind is served by the content detector
func (k Kind) Content() bool {
	switch k {
	case KindDate, KindLink, KindAddress, KindPhoneNumber, KindTransitInformation:
		return true
	default:
		return false
	}
}

// Span is a half open [Start, End) byte range over the subject text
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the byte length of the span
func (s Span) Len() int { return s.End - s.Start }

// ValidFor reports whether the span is well formed, non empty and inside a
// text of n bytes
func (s Span) ValidFor(n int) bool {
	return s.Start >= 0 && s.Start < s.End && s.End <= n
}

// Overlaps reports whether two spans share at least one byte
func (s Span) Overlaps(o Span) bool {
	return !(o.End <= s.Start || o.Start >= s.End)
}

// Checking is one requested check. Values are comparable; a request sequence
// is deduplicated by equality with the first occurrence kept, so two Regex
// checks with different patterns are distinct requests while two Date checks
// collapse into one
type Checking struct {
	kind    Kind
	span    Span
	pattern string
}

// Range builds a check asserting that sp is a detection as given
func Range(sp Span) Checking { return Checking{kind: KindRange, span: sp} }

// Regex builds a check that searches the text with pattern
func Regex(pattern string) Checking { return Checking{kind: KindRegex, pattern: pattern} }

// Action builds a check that adopts pre attached markers
func Action() Checking { return Checking{kind: KindAction} }

// Date builds a content check for date expressions
func Date() Checking { return Checking{kind: KindDate} }

// Link builds a content check for URLs
func Link() Checking { return Checking{kind: KindLink} }

// Address builds a content check for postal addresses
func Address() Checking { return Checking{kind: KindAddress} }

// PhoneNumber builds a content check for phone numbers
func PhoneNumber() Checking { return Checking{kind: KindPhoneNumber} }

// TransitInformation builds a content check for flight references
func TransitInformation() Checking { return Checking{kind: KindTransitInformation} }

// Kind returns the variant tag
func (c Checking) Kind() Kind { return c.kind }

// Span returns the explicit range payload; ok is false unless the kind is Range
func (c Checking) Span() (Span, bool) {
	if c.kind != KindRange {
		return Span{}, false
	}
	return c.span, true
}

// Pattern returns the search payload; ok is false unless the kind is Regex
func (c Checking) Pattern() (string, bool) {
	if c.kind != KindRegex {
		return "", false
	}
	return c.pattern, true
}

// String renders the check for logs and test failures
func (c Checking) String() string {
	switch c.kind {
	case KindRange:
		return fmt.Sprintf("range[%d,%d)", c.span.Start, c.span.End)
	case KindRegex:
		return "regex(" + c.pattern + ")"
	default:
		return c.kind.String()
	}
}

// DefaultKinds returns the content detector set resolved when a caller asks
// for detection without naming kinds. Callers pass it explicitly; nothing in
// the resolver falls back to it on its own
func DefaultKinds() []Checking {
	return []Checking{Date(), Link(), Address(), PhoneNumber(), TransitInformation()}
}

// Normalize deduplicates a requested sequence by equality (first occurrence
// kept) and orders it ascending by tier. Ties within a tier preserve the
// requested order
func Normalize(kinds []Checking) []Checking {
	if len(kinds) == 0 {
		return nil
	}
	seen := make(map[Checking]struct{}, len(kinds))
	out := make([]Checking, 0, len(kinds))
	for _, c := range kinds {
		if !c.kind.Valid() {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].kind.Tier() < out[j].kind.Tier()
	})
	return out
}

// ParseKinds parses a comma separated list of kind names, e.g.
// "date,link,phone_number". Range and regex cannot be named here because they
// carry payloads; requesting them by name is an error
func ParseKinds(csv string) ([]Checking, error) {
	parts := strings.Split(csv, ",")
	out := make([]Checking, 0, len(parts))
	for _, p := range parts {
		name := strings.ToLower(strings.TrimSpace(p))
		if name == "" {
			continue
		}
		ck, err := byName(name)
		if err != nil {
			return nil, err
		}
		out = append(out, ck)
	}
	return out, nil
}

func byName(name string) (Checking, error) {
	switch name {
	case "action":
		return Action(), nil
	case "date":
		return Date(), nil
	case "link":
		return Link(), nil
	case "address":
		return Address(), nil
	case "phone_number":
		return PhoneNumber(), nil
	case "transit_information":
		return TransitInformation(), nil
	case "range", "regex":
		return Checking{}, fmt.Errorf("checking: kind %q needs a payload and cannot be named", name)
	default:
		return Checking{}, fmt.Errorf("checking: unknown kind %q", name)
	}
}
