package cookie

import (
	"errors"
	"iter"
	"strings"

	"github.com/indigo-web/wire/kv"
)

// Jar is an ordered storage of cookies, keyed by their names. Names are case-sensitive, and
// a cookie with already present name replaces the old one.
type Jar struct {
	cookies []Cookie
}

func NewJar() *Jar {
	return new(Jar)
}

func NewJarPrealloc(n int) *Jar {
	return &Jar{cookies: make([]Cookie, 0, n)}
}

func (j *Jar) Set(c Cookie) {
	for i := range j.cookies {
		if j.cookies[i].Name == c.Name {
			j.cookies[i] = c
			return
		}
	}

	j.cookies = append(j.cookies, c)
}

func (j *Jar) Get(name string) (c Cookie, found bool) {
	for _, c = range j.cookies {
		if c.Name == name {
			return c, true
		}
	}

	return Cookie{}, false
}

// Value returns the value of the cookie or an empty string, if there's no such.
func (j *Jar) Value(name string) string {
	c, _ := j.Get(name)
	return c.Value
}

func (j *Jar) Has(name string) bool {
	_, found := j.Get(name)
	return found
}

func (j *Jar) Len() int {
	return len(j.cookies)
}

// All returns an iterator over stored cookies in order of their first insertion.
func (j *Jar) All() iter.Seq[Cookie] {
	return func(yield func(Cookie) bool) {
		for _, c := range j.cookies {
			if !yield(c) {
				return
			}
		}
	}
}

func (j *Jar) Clear() *Jar {
	j.cookies = j.cookies[:0]
	return j
}

var ErrBadCookie = errors.New("cookie has a malformed syntax")

// Parse parses cookies, received from a user-agent. These are basically key-value pairs,
// so the function isn't applicable for Set-Cookie values
func Parse(jar *Jar, data string) error {
	for len(data) > 0 {
		var statement string
		statement, data, _ = strings.Cut(data, ";")

		statement = strings.TrimSpace(statement)
		if len(statement) == 0 {
			continue
		}

		name, value, err := splitPair(statement)
		if err != nil {
			return err
		}

		jar.Set(Cookie{Name: name, Value: value})
	}

	return nil
}

// ParseSetCookie parses a single Set-Cookie value. Attributes must be key-value pairs, except
// the known flags, which may go without a value.
func ParseSetCookie(data string) (Cookie, error) {
	statement, data, _ := strings.Cut(data, ";")
	name, value, err := splitPair(strings.TrimSpace(statement))
	if err != nil {
		return Cookie{}, err
	}

	c := Cookie{Name: name, Value: value, Attrs: kv.New()}

	for len(data) > 0 {
		statement, data, _ = strings.Cut(data, ";")

		statement = strings.TrimSpace(statement)
		if len(statement) == 0 {
			continue
		}

		if isFlag(statement) {
			c.Attrs.Add(statement, "")
			continue
		}

		key, value, err := splitPair(statement)
		if err != nil {
			return Cookie{}, err
		}

		c.Attrs.Add(key, value)
	}

	return c, nil
}

func splitPair(statement string) (key, value string, err error) {
	key, value, found := strings.Cut(statement, "=")
	key = strings.TrimSpace(key)
	if !found || len(key) == 0 {
		return "", "", ErrBadCookie
	}

	return key, strings.TrimSpace(value), nil
}

func isFlag(attr string) bool {
	switch {
	case strings.EqualFold(attr, "Secure"),
		strings.EqualFold(attr, "HttpOnly"),
		strings.EqualFold(attr, "Partitioned"):
		return true
	default:
		return false
	}
}
