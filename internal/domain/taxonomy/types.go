// Package taxonomy owns the user's category tree and the resolvers that map
// free-text descriptions onto it. Resolvers only ever return canonical keys
// that exist in the set; they never create categories.
package taxonomy

import "strings"

// Category is the data attached to a canonical category key.
type Category struct {
	Color         string
	Subcategories []string
}

// CategorySet is an insertion-ordered map from canonical category key to its
// data. Keys are case-sensitive exactly as stored; resolvers compare them
// case-insensitively but always hand back the stored spelling. Order matters:
// the first key is the documented fallback when nothing else resolves.
type CategorySet struct {
	keys []string
	data map[string]Category
}

// NewCategorySet returns an empty set.
func NewCategorySet() *CategorySet {
	return &CategorySet{data: make(map[string]Category)}
}

// Add inserts or replaces a category. Insertion order of new keys is kept.
func (s *CategorySet) Add(key string, c Category) {
	if key == "" {
		return
	}
	if _, exists := s.data[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.data[key] = c
}

// Get returns the category data for a canonical key.
func (s *CategorySet) Get(key string) (Category, bool) {
	c, ok := s.data[key]
	return c, ok
}

// Keys returns the canonical keys in insertion order.
func (s *CategorySet) Keys() []string {
	return s.keys
}

// Len reports the number of categories.
func (s *CategorySet) Len() int {
	return len(s.keys)
}

// KeyFor resolves a case-insensitive spelling back to the canonical key.
func (s *CategorySet) KeyFor(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, k := range s.keys {
		if strings.ToLower(k) == lower {
			return k, true
		}
	}
	return "", false
}

// Subcategories returns the ordered subcategory list for a canonical key.
func (s *CategorySet) Subcategories(key string) []string {
	return s.data[key].Subcategories
}
