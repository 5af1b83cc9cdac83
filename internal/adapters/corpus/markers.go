package corpus

import "marginalia/internal/core/normalize"

// DeriveMarkers returns markup-derived marker spans for text: fenced and
// inline code plus quoted lines. Used at extract time when a record carries
// no explicit markers, so action checking still has highlight ranges to adopt
func DeriveMarkers(text string) []RecordMarker {
	zs := normalize.DetectZones(text)
	if len(zs) == 0 {
		return nil
	}
	out := make([]RecordMarker, 0, len(zs))
	for _, z := range zs {
		out = append(out, RecordMarker{Start: z.Start, End: z.End, Payload: "zone:" + string(z.Type)})
	}
	return out
}
