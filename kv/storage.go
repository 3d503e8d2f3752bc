// Package kv implements an ordered multimap of strings with case-insensitive keys.
package kv

import (
	"iter"

	"github.com/indigo-web/utils/strcomp"
)

type Pair struct {
	Key, Value string
}

// Storage keeps the pairs in insertion order and looks them up linearly. Headers, query
// parameters and cookies rarely hold more than a couple dozen entries, where scanning a
// slice beats hashing.
type Storage struct {
	pairs []Pair
}

func New() *Storage {
	return new(Storage)
}

func NewPrealloc(n int) *Storage {
	return &Storage{pairs: make([]Pair, 0, n)}
}

// NewFromMap fills a new storage from the map. The order of keys is unspecified.
func NewFromMap(m map[string][]string) *Storage {
	s := NewPrealloc(len(m))
	for key, values := range m {
		for _, value := range values {
			s.Add(key, value)
		}
	}

	return s
}

// index returns the position of the first pair with the key at or after the offset, or -1.
func (s *Storage) index(key string, offset int) int {
	for i := offset; i < len(s.pairs); i++ {
		if strcomp.EqualFold(key, s.pairs[i].Key) {
			return i
		}
	}

	return -1
}

func (s *Storage) Add(key, value string) *Storage {
	s.pairs = append(s.pairs, Pair{Key: key, Value: value})
	return s
}

// Set replaces all the values of the key with the single one, keeping the position of the
// first occurrence.
func (s *Storage) Set(key, value string) *Storage {
	i := s.index(key, 0)
	if i == -1 {
		return s.Add(key, value)
	}

	s.pairs[i].Value = value
	s.drop(key, i+1)

	return s
}

// Delete removes all the pairs of the key.
func (s *Storage) Delete(key string) *Storage {
	s.drop(key, 0)
	return s
}

func (s *Storage) drop(key string, offset int) {
	s.pairs = append(s.pairs[:offset], filter(s.pairs[offset:], key)...)
}

// filter keeps the pairs of any other key. Works in-place.
func filter(pairs []Pair, key string) []Pair {
	n := 0
	for _, pair := range pairs {
		if !strcomp.EqualFold(key, pair.Key) {
			pairs[n] = pair
			n++
		}
	}

	return pairs[:n]
}

// Get returns the first value of the key.
func (s *Storage) Get(key string) (value string, found bool) {
	if i := s.index(key, 0); i != -1 {
		return s.pairs[i].Value, true
	}

	return "", false
}

// Value is Get without the flag.
func (s *Storage) Value(key string) string {
	value, _ := s.Get(key)
	return value
}

func (s *Storage) ValueOr(key, or string) string {
	if value, found := s.Get(key); found {
		return value
	}

	return or
}

func (s *Storage) Has(key string) bool {
	return s.index(key, 0) != -1
}

// Values iterates over all the values of the key.
func (s *Storage) Values(key string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for i := s.index(key, 0); i != -1; i = s.index(key, i+1) {
			if !yield(s.pairs[i].Value) {
				return
			}
		}
	}
}

// Keys iterates over distinct keys, in order of their first appearance. Keys differing in
// case only are the same key, reported as first spelled.
func (s *Storage) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for i, pair := range s.pairs {
			if s.index(pair.Key, 0) == i && !yield(pair.Key) {
				return
			}
		}
	}
}

func (s *Storage) Pairs() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, pair := range s.pairs {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

func (s *Storage) Len() int {
	return len(s.pairs)
}

func (s *Storage) Empty() bool {
	return len(s.pairs) == 0
}

// Clone returns a deep copy, safe to retain after the request is processed.
func (s *Storage) Clone() *Storage {
	clone := NewPrealloc(len(s.pairs))
	clone.pairs = append(clone.pairs, s.pairs...)

	return clone
}

// Expose returns the underlying slice. It must not be retained.
func (s *Storage) Expose() []Pair {
	return s.pairs
}

// Clear drops all the pairs, keeping the allocated memory.
func (s *Storage) Clear() *Storage {
	s.pairs = s.pairs[:0]
	return s
}
