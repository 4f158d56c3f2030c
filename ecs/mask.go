package ecs

import "fmt"

const (
	bitsPerWord = 64
	maskWords   = 4

	// MaxKinds is the number of component kinds a single Kinds registry can hold.
	MaxKinds = maskWords * bitsPerWord
)

// mask is the canonical archetype key: one bit per component kind.
type mask [maskWords]uint64

// has checks if the mask has a specific kind.
func (m mask) has(k Kind) bool {
	word := int(k / bitsPerWord)
	if word >= maskWords {
		return false
	}
	return m[word]&(1<<(k%bitsPerWord)) != 0
}

// with returns a copy of m with k set.
func (m mask) with(k Kind) mask {
	word := int(k / bitsPerWord)
	if word >= maskWords {
		panic(fmt.Sprintf("ecs: kind %d exceeds maximum (%d)", k, MaxKinds))
	}
	m[word] |= 1 << (k % bitsPerWord)
	return m
}

// without returns a copy of m with k cleared.
func (m mask) without(k Kind) mask {
	word := int(k / bitsPerWord)
	if word >= maskWords {
		return m
	}
	m[word] &^= 1 << (k % bitsPerWord)
	return m
}

// empty reports whether no bit is set.
func (m mask) empty() bool {
	return m == mask{}
}

// kinds returns the set bits in ascending order, which is the sorted form of
// the archetype key.
func (m mask) kinds() []Kind {
	var out []Kind
	for w := 0; w < maskWords; w++ {
		word := m[w]
		for b := 0; word != 0; b++ {
			if word&1 != 0 {
				out = append(out, Kind(w*bitsPerWord+b))
			}
			word >>= 1
		}
	}
	return out
}

// makeMask creates a mask from a list of kinds. Duplicates collapse.
func makeMask(ks []Kind) mask {
	var m mask
	for _, k := range ks {
		m = m.with(k)
	}
	return m
}
