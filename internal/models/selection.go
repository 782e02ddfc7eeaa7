package models

import "sort"

// CardSelection is a caller-owned set of target card ids. It is built up by
// repeated add/remove actions and handed to engine operations as a plain list.
type CardSelection struct {
	ids map[int64]struct{}
}

// NewCardSelection returns a selection holding ids.
func NewCardSelection(ids ...int64) *CardSelection {
	s := &CardSelection{ids: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s *CardSelection) Add(id int64) {
	if s.ids == nil {
		s.ids = make(map[int64]struct{})
	}
	s.ids[id] = struct{}{}
}

func (s *CardSelection) Remove(id int64) {
	delete(s.ids, id)
}

func (s *CardSelection) Clear() {
	s.ids = make(map[int64]struct{})
}

func (s *CardSelection) Contains(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *CardSelection) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids in ascending order.
func (s *CardSelection) IDs() []int64 {
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
