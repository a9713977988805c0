package entity

// IDSet is an insertion-ordered set of ids. The zero value is empty and ready
// to use.
type IDSet []string

func (s IDSet) Has(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Add appends id when absent and reports whether it was added.
func (s *IDSet) Add(id string) bool {
	if s.Has(id) {
		return false
	}
	*s = append(*s, id)
	return true
}

// Remove drops id and reports whether it was present.
func (s *IDSet) Remove(id string) bool {
	for i, v := range *s {
		if v == id {
			*s = append((*s)[:i:i], (*s)[i+1:]...)
			return true
		}
	}
	return false
}

func (s IDSet) Len() int { return len(s) }

// Clone returns an independent copy.
func (s IDSet) Clone() IDSet {
	if s == nil {
		return nil
	}
	out := make(IDSet, len(s))
	copy(out, s)
	return out
}
