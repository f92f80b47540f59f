package dragdrop

// Selection is the multi-select set a drag may start from. It remembers insertion order;
// Start re-sorts by reading order anyway.
type Selection struct {
	ids []string
}

func (s *Selection) Has(id string) bool {
	return containsID(s.ids, id)
}

// Toggle adds or removes id and reports whether it is now selected.
func (s *Selection) Toggle(id string) bool {
	if id == "" {
		return false
	}
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return false
		}
	}
	s.ids = append(s.ids, id)
	return true
}

func (s *Selection) Clear() { s.ids = nil }

func (s *Selection) Len() int { return len(s.ids) }

func (s *Selection) IDs() []string { return append([]string(nil), s.ids...) }

// Prune drops ids the keep func rejects, e.g. nodes removed by a delete.
func (s *Selection) Prune(keep func(id string) bool) {
	out := s.ids[:0]
	for _, id := range s.ids {
		if keep(id) {
			out = append(out, id)
		}
	}
	s.ids = out
}
