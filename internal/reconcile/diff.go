package reconcile

import "sort"

type KeySet map[string]struct{}

func NewKeySet(keys ...string) KeySet {
	set := make(KeySet, len(keys))
	for _, key := range keys {
		set.Add(key)
	}
	return set
}

func (s KeySet) Add(key string) {
	s[key] = struct{}{}
}

func (s KeySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Sorted returns the members in ascending order.
func (s KeySet) Sorted() []string {
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Difference returns reference keys absent from observed, ascending.
func Difference(reference []string, observed KeySet) []string {
	missing := NewKeySet()
	for _, key := range reference {
		if !observed.Has(key) {
			missing.Add(key)
		}
	}
	return missing.Sorted()
}
