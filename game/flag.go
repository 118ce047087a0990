// Package game holds the authoritative flag-assembly state: three
// colored parts that scatter on a shake and must be dragged back to
// their canonical bands.
package game

import "math/rand"

type Part struct {
	ID    string
	Color string
	// Order is the band the part currently sits in. In the assembled
	// flag it equals the part's canonical index; while broken it is the
	// player's latest placement and may transiently collide with
	// another part's.
	Order int
}

// State is the internal truth for one player's flag.
type State struct {
	Broken bool
	Parts  [PartCount]*Part
}

func NewState() *State {
	s := &State{}
	for i, id := range canonicalIDs {
		s.Parts[i] = &Part{ID: id, Color: partColors[id], Order: i}
	}
	return s
}

// Shuffle deals the parts a fresh random band assignment and marks the
// flag broken. rand.Perm keeps every one of the 6 permutations equally
// likely; the identity permutation is allowed, the flag still breaks.
func (s *State) Shuffle(rng *rand.Rand) {
	perm := rng.Perm(PartCount)
	for i, p := range s.Parts {
		p.Order = perm[i]
	}
	s.Broken = true
}

// AttemptPlacement records that partID was dropped onto band
// targetIndex. It commits and returns true only when that band's
// canonical occupant is exactly partID; any other drop leaves the state
// untouched.
func (s *State) AttemptPlacement(partID string, targetIndex int) bool {
	if targetIndex < 0 || targetIndex >= PartCount {
		return false
	}
	if canonicalIDs[targetIndex] != partID {
		return false
	}
	p := s.part(partID)
	if p == nil {
		return false
	}
	p.Order = targetIndex
	return true
}

// Reset restores the fixed canonical flag: orange 0, white 1, green 2.
func (s *State) Reset() {
	for i, id := range canonicalIDs {
		s.Parts[i].ID = id
		s.Parts[i].Color = partColors[id]
		s.Parts[i].Order = i
	}
	s.Broken = false
}

// Assembled reports whether every part sits in its canonical band.
// Whether that counts as "solved" is the presentation layer's call.
func (s *State) Assembled() bool {
	for i, p := range s.Parts {
		if p.Order != i {
			return false
		}
	}
	return true
}

func (s *State) part(id string) *Part {
	for _, p := range s.Parts {
		if p.ID == id {
			return p
		}
	}
	return nil
}
