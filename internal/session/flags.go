package session

import "sort"

// FlagSet holds the questions a student marked for review. Advisory only.
type FlagSet struct {
	ids map[int]struct{}
}

// NewFlagSet returns an empty flag set.
func NewFlagSet() *FlagSet {
	return &FlagSet{ids: make(map[int]struct{})}
}

// Toggle flips the flag and returns whether the question is now flagged.
func (f *FlagSet) Toggle(questionID int) bool {
	if _, ok := f.ids[questionID]; ok {
		delete(f.ids, questionID)
		return false
	}
	f.ids[questionID] = struct{}{}
	return true
}

// Set flags a question. Setting an already flagged question is a no-op.
func (f *FlagSet) Set(questionID int) {
	f.ids[questionID] = struct{}{}
}

// IsFlagged reports whether the question is marked for review.
func (f *FlagSet) IsFlagged(questionID int) bool {
	_, ok := f.ids[questionID]
	return ok
}

func (f *FlagSet) Len() int { return len(f.ids) }

func (f *FlagSet) IDs() []int {
	out := make([]int, 0, len(f.ids))
	for id := range f.ids {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
