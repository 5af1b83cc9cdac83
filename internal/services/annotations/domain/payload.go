package domain

import (
	"time"

	"marginalia/internal/core/checking"
	"marginalia/internal/core/resolve"
	perr "marginalia/internal/platform/errors"
)

// Payload is the storage form of a resolve.Result. One struct covers every
// kind; per-kind fields are omitted from the JSON when unused
type Payload struct {
	Kind string `json:"kind"`

	// range, regex
	Text string `json:"text,omitempty"`

	// action
	Marker string `json:"marker,omitempty"`

	// date
	When            *time.Time `json:"when,omitempty"`
	DurationSeconds int64      `json:"duration_seconds,omitempty"`
	Zone            string     `json:"zone,omitempty"`

	// link
	URL string `json:"url,omitempty"`

	// address
	Name         *string `json:"name,omitempty"`
	JobTitle     *string `json:"job_title,omitempty"`
	Organization *string `json:"organization,omitempty"`
	Street       *string `json:"street,omitempty"`
	City         *string `json:"city,omitempty"`
	State        *string `json:"state,omitempty"`
	PostalCode   *string `json:"postal_code,omitempty"`
	Country      *string `json:"country,omitempty"`
	Phone        *string `json:"phone,omitempty"`

	// phone_number
	Number string `json:"number,omitempty"`

	// transit_information
	Airline *string `json:"airline,omitempty"`
	Flight  *string `json:"flight,omitempty"`
}

// FromResult converts a typed result into its storage payload
func FromResult(r resolve.Result) Payload {
	p := Payload{Kind: r.Kind().String()}
	switch v := r.(type) {
	case resolve.RangeResult:
		p.Text = v.Text
	case resolve.RegexResult:
		p.Text = v.Text
	case resolve.ActionResult:
		p.Marker = v.Payload
	case resolve.DateResult:
		p.When = v.When
		p.DurationSeconds = int64(v.Duration / time.Second)
		p.Zone = v.Zone
	case resolve.LinkResult:
		p.URL = v.URL
	case resolve.AddressResult:
		p.Name = v.Name
		p.JobTitle = v.JobTitle
		p.Organization = v.Organization
		p.Street = v.Street
		p.City = v.City
		p.State = v.State
		p.PostalCode = v.PostalCode
		p.Country = v.Country
		p.Phone = v.Phone
	case resolve.PhoneResult:
		p.Number = v.Number
	case resolve.TransitResult:
		p.Airline = v.Airline
		p.Flight = v.Flight
	}
	return p
}

// Result rebuilds the typed result from a stored payload
func (p Payload) Result() (resolve.Result, error) {
	switch p.Kind {
	case checking.KindRange.String():
		return resolve.RangeResult{Text: p.Text}, nil
	case checking.KindRegex.String():
		return resolve.RegexResult{Text: p.Text}, nil
	case checking.KindAction.String():
		return resolve.ActionResult{Payload: p.Marker}, nil
	case checking.KindDate.String():
		return resolve.DateResult{
			When:     p.When,
			Duration: time.Duration(p.DurationSeconds) * time.Second,
			Zone:     p.Zone,
		}, nil
	case checking.KindLink.String():
		return resolve.LinkResult{URL: p.URL}, nil
	case checking.KindAddress.String():
		return resolve.AddressResult{
			Name:         p.Name,
			JobTitle:     p.JobTitle,
			Organization: p.Organization,
			Street:       p.Street,
			City:         p.City,
			State:        p.State,
			PostalCode:   p.PostalCode,
			Country:      p.Country,
			Phone:        p.Phone,
		}, nil
	case checking.KindPhoneNumber.String():
		return resolve.PhoneResult{Number: p.Number}, nil
	case checking.KindTransitInformation.String():
		return resolve.TransitResult{Airline: p.Airline, Flight: p.Flight}, nil
	}
	return nil, perr.InvalidArgf("annotations: unknown payload kind %q", p.Kind)
}
