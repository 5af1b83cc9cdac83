package detector

// Aho-Corasick over byte strings, used for literal phrase dictionaries
// like the airline table. Terms are ASCII-lowered before insert and the
// scan input is the lowered shadow text, so matching is case-blind
// without any folding in the loop. A dense 256-entry edge table per
// node keeps the scan free of map lookups

type acNode struct {
	edges [256]int32 // next state per input byte, -1 when absent
	link  int32      // longest proper suffix state
	terms []int32    // IDs of terms ending at this state
}

type acAutomaton struct {
	nodes []acNode
	lens  []int32 // term ID -> byte length, turns match ends into spans
}

func blankNode() acNode {
	var n acNode
	for i := range n.edges {
		n.edges[i] = -1
	}
	return n
}

func newAutomaton() *acAutomaton {
	return &acAutomaton{nodes: []acNode{blankNode()}}
}

// AddTerm inserts a dictionary term and returns its ID. The empty term
// still gets an ID but no trie path, so it can never match
func (a *acAutomaton) AddTerm(term string) int {
	id := len(a.lens)
	a.lens = append(a.lens, int32(len(term)))
	if term == "" {
		return id
	}
	state := int32(0)
	for i := 0; i < len(term); i++ {
		next := a.nodes[state].edges[term[i]]
		if next < 0 {
			next = int32(len(a.nodes))
			a.nodes[state].edges[term[i]] = next
			a.nodes = append(a.nodes, blankNode())
		}
		state = next
	}
	a.nodes[state].terms = append(a.nodes[state].terms, int32(id))
	return id
}

// Build wires the suffix links breadth first. Each state also absorbs
// the terms reachable through its link, so FindAll reports every match
// without walking links on a hit. Call once, after the last AddTerm
func (a *acAutomaton) Build() {
	queue := make([]int32, 0, len(a.nodes))
	for _, s := range a.nodes[0].edges {
		if s >= 0 {
			queue = append(queue, s) // depth-1 states keep link == root
		}
	}
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		for b := 0; b < 256; b++ {
			s := a.nodes[cur].edges[b]
			if s < 0 {
				continue
			}
			queue = append(queue, s)

			// walk the parent's suffix chain until some state has a
			// b-edge; root absorbs everything that falls off the end
			link := a.nodes[cur].link
			for link != 0 && a.nodes[link].edges[b] < 0 {
				link = a.nodes[link].link
			}
			if next := a.nodes[link].edges[b]; next >= 0 {
				a.nodes[s].link = next
			}
			a.nodes[s].terms = append(a.nodes[s].terms, a.nodes[a.nodes[s].link].terms...)
		}
	}
}

// FindAll reports every dictionary occurrence in text as
// cb(start, end, id), with start computed from the recorded term
// length. Returning false from cb stops the scan
func (a *acAutomaton) FindAll(text string, cb func(start, end, id int) bool) {
	state := int32(0)
	for i := 0; i < len(text); i++ {
		b := text[i]
		for state != 0 && a.nodes[state].edges[b] < 0 {
			state = a.nodes[state].link
		}
		if next := a.nodes[state].edges[b]; next >= 0 {
			state = next
		}
		for _, tid := range a.nodes[state].terms {
			end := i + 1
			if !cb(end-int(a.lens[tid]), end, int(tid)) {
				return
			}
		}
	}
}
