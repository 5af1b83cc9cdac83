// Package resolve folds heterogeneous detections over a text into a
// conflict-free range map. Explicit ranges beat regex matches, regex
// matches beat adopted action markers, and markers beat content detections;
// within a tier the earlier candidate wins. The resolver is a pure
// function of its inputs: same text and kinds, same map
package resolve

import (
	"errors"
	"regexp"

	"marginalia/internal/core/checking"
	"marginalia/internal/core/detector"
)

// Marker is an annotation already attached to the text by an external
// source, adopted as a detection when the Action kind is requested
type Marker struct {
	Span    checking.Span
	Payload string
}

// Text is the subject of a resolution: the body plus whatever markers
// arrived with it
type Text struct {
	Body    string
	Markers []Marker
}

// Resolver resolves requested checking kinds against texts. A nil detector
// is tolerated: content kinds then contribute nothing
type Resolver struct {
	det *detector.Detector
}

// New creates a Resolver backed by det, which may be nil
func New(det *detector.Detector) *Resolver {
	return &Resolver{det: det}
}

var errNoDetector = errors.New("resolve: content detector unavailable")

// candidate is one (range, result) pair offered by a matcher, before the
// map's duplicate and overlap rules accept or reject it
type candidate struct {
	span checking.Span
	res  Result
}

// outcome is a single kind's contribution. A kind that failed (bad pattern,
// missing detector) reports err and no candidates; resolution of the other
// kinds proceeds regardless
type outcome struct {
	candidates []candidate
	err        error
}

// Resolve runs every requested kind over text and merges the results.
// Kinds are deduplicated keeping the first occurrence, then processed in
// tier order; candidate ranges that duplicate or overlap an accepted range
// are skipped. Never returns an error: a kind that cannot run simply
// contributes nothing
func (r *Resolver) Resolve(text Text, kinds []checking.Checking) *Map {
	m := &Map{}
	kinds = checking.Normalize(kinds)
	if len(kinds) == 0 || text.Body == "" {
		return m
	}

	// one detector pass covers all five content categories
	var content []detector.Match
	scanned := false

	for _, k := range kinds {
		out := r.collect(text, k, &content, &scanned)
		for _, c := range out.candidates {
			m.insert(c.span, k, c.res)
		}
	}
	return m
}

func (r *Resolver) collect(text Text, k checking.Checking, content *[]detector.Match, scanned *bool) outcome {
	switch k.Kind() {
	case checking.KindRange:
		sp, _ := k.Span()
		if !sp.ValidFor(len(text.Body)) {
			return outcome{}
		}
		return outcome{candidates: []candidate{{
			span: sp,
			res:  RangeResult{Text: text.Body[sp.Start:sp.End]},
		}}}

	case checking.KindRegex:
		pat, _ := k.Pattern()
		re, err := regexp.Compile("(?i)" + pat)
		if err != nil {
			return outcome{err: err}
		}
		var cs []candidate
		for _, pr := range re.FindAllStringIndex(text.Body, -1) {
			if pr[0] == pr[1] {
				continue
			}
			cs = append(cs, candidate{
				span: checking.Span{Start: pr[0], End: pr[1]},
				res:  RegexResult{Text: text.Body[pr[0]:pr[1]]},
			})
		}
		return outcome{candidates: cs}

	case checking.KindAction:
		var cs []candidate
		for _, mk := range text.Markers {
			if !mk.Span.ValidFor(len(text.Body)) {
				continue
			}
			cs = append(cs, candidate{span: mk.Span, res: ActionResult{Payload: mk.Payload}})
		}
		return outcome{candidates: cs}
	}

	// content kinds
	if r.det == nil {
		return outcome{err: errNoDetector}
	}
	cat, ok := kindCategory(k.Kind())
	if !ok {
		return outcome{}
	}
	if !*scanned {
		*content = r.det.Scan(text.Body)
		*scanned = true
	}
	var cs []candidate
	for _, dm := range *content {
		if dm.Category != cat {
			continue
		}
		res, ok := projectMatch(dm)
		if !ok {
			continue
		}
		cs = append(cs, candidate{
			span: checking.Span{Start: dm.Start, End: dm.End},
			res:  res,
		})
	}
	return outcome{candidates: cs}
}
