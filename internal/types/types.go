// Package types holds the small value types shared across the engine:
// conversion candidates and forced-segment ranges.
package types

// Candidate is one (surface, reading) pair offered for a clause, with
// the resolver cost it was found at.
type Candidate struct {
	Surface string  `json:"surface"`
	Yomi    string  `json:"yomi"`
	Cost    float32 `json:"cost"`
	// CompoundWord marks candidates assembled from shorter lattice
	// nodes during breakdown collection.
	CompoundWord bool `json:"compound_word,omitempty"`
}

// NewCandidate builds a Candidate for the given reading and surface.
func NewCandidate(yomi, surface string, cost float32) Candidate {
	return Candidate{Surface: surface, Yomi: yomi, Cost: cost}
}

// Key returns the "surface/yomi" form used as a language-model key.
func (c Candidate) Key() string {
	return c.Surface + "/" + c.Yomi
}

// Range is a half-open byte range [Start, End) of the reading that must
// appear as a segment (a user-forced clause boundary).
type Range struct {
	Start int
	End   int
}

// Len returns the byte length of the range.
func (r Range) Len() int { return r.End - r.Start }
