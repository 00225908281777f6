package tree

// Equal reports deep structural equality. Mapping entries must appear in the
// same order.
func Equal(a, b Node) bool {
	return equal(OrNull(a), OrNull(b), true)
}

// EqualUnordered is Equal with mappings compared as sets of entries.
func EqualUnordered(a, b Node) bool {
	return equal(OrNull(a), OrNull(b), false)
}

func equal(a, b Node, ordered bool) bool {
	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	default:
		return false
	case Null:
		return true
	case Scalar:
		bv := b.(Scalar)
		return av.ScalarKind() == bv.ScalarKind() && av.Value() == bv.Value()
	case Sequence:
		bv := b.(Sequence)
		if av.Len() != bv.Len() {
			return false
		}

		for i := range av.items {
			if !equal(av.items[i], bv.items[i], ordered) {
				return false
			}
		}

		return true
	case Mapping:
		bv := b.(Mapping)
		if av.Len() != bv.Len() {
			return false
		}

		for i, e := range av.entries {
			if ordered && bv.entries[i].Key != e.Key {
				return false
			}

			other, ok := bv.Get(e.Key)
			if !ok || !equal(e.Value, other, ordered) {
				return false
			}
		}

		return true
	}
}
