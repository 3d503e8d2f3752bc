// Package codecutil keeps the codec instances of a single connection.
package codecutil

import (
	"strings"

	"github.com/indigo-web/utils/strcomp"

	"github.com/indigo-web/wire/http/codec"
)

// Cache is shared by copying: all the copies refer to the same instances.
type Cache struct {
	accept  string
	entries []entry
}

type entry struct {
	codec    codec.Codec
	instance codec.Instance
}

func NewCache(codecs []codec.Codec) Cache {
	entries := make([]entry, len(codecs))
	for i, c := range codecs {
		entries[i].codec = c
	}

	return Cache{
		accept:  AcceptEncoding(codecs),
		entries: entries,
	}
}

// Get returns an instance of the codec matching the token, or nil if there's none.
// Instances are created on the first request.
func (c Cache) Get(token string) codec.Instance {
	token = strings.TrimSpace(token)

	for i := range c.entries {
		e := &c.entries[i]
		if !strcomp.EqualFold(e.codec.Token(), token) {
			continue
		}

		if e.instance == nil {
			e.instance = e.codec.New()
		}

		return e.instance
	}

	return nil
}

// AcceptEncoding is a ready Accept-Encoding value.
func (c Cache) AcceptEncoding() string {
	return c.accept
}

// AcceptEncoding lists the tokens of the codecs, or returns identity if there are none.
func AcceptEncoding(codecs []codec.Codec) string {
	if len(codecs) == 0 {
		return "identity"
	}

	tokens := make([]string, len(codecs))
	for i, c := range codecs {
		tokens[i] = c.Token()
	}

	return strings.Join(tokens, ", ")
}
