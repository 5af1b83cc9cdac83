package resolve

import (
	"time"

	"marginalia/internal/core/checking"
)

// Result is the typed payload of one detection. The concrete type always
// agrees with the checking kind that produced the entry, so consumers can
// type-switch exhaustively over the eight variants
type Result interface {
	Kind() checking.Kind
	detectionResult()
}

// RangeResult covers an explicit caller-supplied range
type RangeResult struct {
	Text string
}

// RegexResult is one pattern match
type RegexResult struct {
	Text string
}

// ActionResult adopts a pre-attached marker
type ActionResult struct {
	Payload string
}

// DateResult is a detected date or time expression. When is absent whenever
// the detector could not anchor the expression to an absolute instant;
// Duration is 0 unless the expression names a span of time
type DateResult struct {
	When     *time.Time
	Duration time.Duration
	Zone     string
}

// LinkResult is a detected URL, already resolved
type LinkResult struct {
	URL string
}

// AddressResult is a detected postal address. Fields absent from the source
// text stay nil
type AddressResult struct {
	Name         *string
	JobTitle     *string
	Organization *string
	Street       *string
	City         *string
	State        *string
	PostalCode   *string
	Country      *string
	Phone        *string
}

// PhoneResult is a detected phone number in normalized form
type PhoneResult struct {
	Number string
}

// TransitResult is a detected flight reference. At least one field is set
type TransitResult struct {
	Airline *string
	Flight  *string
}

// Kind implements Result
func (RangeResult) Kind() checking.Kind { return checking.KindRange }

// Kind implements Result
func (RegexResult) Kind() checking.Kind { return checking.KindRegex }

// Kind implements Result
func (ActionResult) Kind() checking.Kind { return checking.KindAction }

// Kind implements Result
func (DateResult) Kind() checking.Kind { return checking.KindDate }

// Kind implements Result
func (LinkResult) Kind() checking.Kind { return checking.KindLink }

// Kind implements Result
func (AddressResult) Kind() checking.Kind { return checking.KindAddress }

// Kind implements Result
func (PhoneResult) Kind() checking.Kind { return checking.KindPhoneNumber }

// Kind implements Result
func (TransitResult) Kind() checking.Kind { return checking.KindTransitInformation }

func (RangeResult) detectionResult()   {}
func (RegexResult) detectionResult()   {}
func (ActionResult) detectionResult()  {}
func (DateResult) detectionResult()    {}
func (LinkResult) detectionResult()    {}
func (AddressResult) detectionResult() {}
func (PhoneResult) detectionResult()   {}
func (TransitResult) detectionResult() {}
