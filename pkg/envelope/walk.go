package envelope

// EdgeType names the traversal edge used to reach a node during Walk.
type EdgeType int

const (
	EdgeNone EdgeType = iota
	EdgeSubject
	EdgePredicate
	EdgeObject
	EdgeWrapped
	EdgeAssertion
)

// Visitor is called once per node visited by Walk, in pre-order. path is
// the sequence of envelopes from the root (inclusive) to node (inclusive).
// Envelopes are a read-only DAG — shared subtrees are visited once per
// path that reaches them, never detected or skipped as cycles, since the
// tree itself is guaranteed acyclic.
type Visitor func(node *Envelope, edge EdgeType, path []*Envelope)

// Walk performs a deterministic pre-order traversal of e, descending
// through every axis (subject, predicate, object, wrapped, assertions in
// stored order). The root is visited first, with edge EdgeNone.
func Walk(e *Envelope, visit Visitor) {
	walk(e, EdgeNone, nil, visit)
}

func walk(e *Envelope, edge EdgeType, prefix []*Envelope, visit Visitor) {
	path := append(append([]*Envelope(nil), prefix...), e)
	visit(e, edge, path)

	switch e.kind {
	case CaseNode:
		walk(e.subject, EdgeSubject, path, visit)
		for _, a := range e.assertions {
			walk(a, EdgeAssertion, path, visit)
		}
	case CaseAssertion:
		walk(e.predicate, EdgePredicate, path, visit)
		walk(e.object, EdgeObject, path, visit)
	case CaseWrapped:
		walk(e.inner, EdgeWrapped, path, visit)
	}
}
