package resolve

import (
	"marginalia/internal/core/checking"
	"marginalia/internal/core/detector"
)

// The five content checking kinds map one-to-one onto detector categories.
// Anything the detector reports outside this table is discarded
var kindToCategory = map[checking.Kind]detector.Category{
	checking.KindDate:               detector.CategoryDate,
	checking.KindLink:               detector.CategoryLink,
	checking.KindAddress:            detector.CategoryAddress,
	checking.KindPhoneNumber:        detector.CategoryPhone,
	checking.KindTransitInformation: detector.CategoryTransit,
}

var categoryToKind = func() map[detector.Category]checking.Kind {
	m := make(map[detector.Category]checking.Kind, len(kindToCategory))
	for k, c := range kindToCategory {
		m[c] = k
	}
	return m
}()

func kindCategory(k checking.Kind) (detector.Category, bool) {
	c, ok := kindToCategory[k]
	return c, ok
}

func categoryKind(c detector.Category) (checking.Kind, bool) {
	k, ok := categoryToKind[c]
	return k, ok
}
