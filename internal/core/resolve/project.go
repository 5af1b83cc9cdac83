package resolve

import "marginalia/internal/core/detector"

// projectMatch converts a raw detector match into the typed result for its
// category. Returns false when the match lacks the data its payload
// requires; such matches are dropped rather than surfaced half-empty
func projectMatch(m detector.Match) (Result, bool) {
	switch m.Category {
	case detector.CategoryDate:
		if m.Date == nil {
			return nil, false
		}
		r := DateResult{Duration: m.Date.Duration, Zone: m.Date.Zone}
		if m.Date.When != nil {
			w := *m.Date.When
			r.When = &w
		}
		return r, true

	case detector.CategoryLink:
		if m.Link == nil || m.Link.URL == "" {
			return nil, false
		}
		return LinkResult{URL: m.Link.URL}, true

	case detector.CategoryAddress:
		if m.Address.Empty() {
			return nil, false
		}
		return AddressResult{
			Name:         copyStr(m.Address.Name),
			JobTitle:     copyStr(m.Address.JobTitle),
			Organization: copyStr(m.Address.Organization),
			Street:       copyStr(m.Address.Street),
			City:         copyStr(m.Address.City),
			State:        copyStr(m.Address.State),
			PostalCode:   copyStr(m.Address.PostalCode),
			Country:      copyStr(m.Address.Country),
			Phone:        copyStr(m.Address.Phone),
		}, true

	case detector.CategoryPhone:
		if m.Phone == nil || m.Phone.Number == "" {
			return nil, false
		}
		return PhoneResult{Number: m.Phone.Number}, true

	case detector.CategoryTransit:
		if m.Transit == nil || (m.Transit.Airline == nil && m.Transit.Flight == nil) {
			return nil, false
		}
		return TransitResult{
			Airline: copyStr(m.Transit.Airline),
			Flight:  copyStr(m.Transit.Flight),
		}, true
	}
	return nil, false
}

// copyStr clones an optional string so map entries never alias detector
// internals
func copyStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
