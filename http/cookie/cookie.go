package cookie

import (
	"strconv"
	"strings"
	"time"

	"github.com/indigo-web/wire/kv"
)

// Cookie is a single cookie with its attributes. Attributes are stored as they were received
// (or set via Builder) and are typed on read. Flag attributes, like Secure or HttpOnly, are
// stored with an empty value.
type Cookie struct {
	Name  string
	Value string
	Attrs *kv.Storage
}

func New(name, value string) Cookie {
	return Cookie{Name: name, Value: value, Attrs: kv.New()}
}

func (c Cookie) Attr(key string) (value string, found bool) {
	if c.Attrs == nil {
		return "", false
	}

	return c.Attrs.Get(key)
}

func (c Cookie) attr(key string) string {
	value, _ := c.Attr(key)
	return value
}

func (c Cookie) Path() string {
	return c.attr("Path")
}

func (c Cookie) Domain() string {
	return c.attr("Domain")
}

// MaxAge returns the Max-Age attribute in seconds. Missing or malformed attribute results
// in ok=false.
func (c Cookie) MaxAge() (seconds int, ok bool) {
	value, found := c.Attr("Max-Age")
	if !found {
		return 0, false
	}

	seconds, err := strconv.Atoi(value)
	return seconds, err == nil
}

// Expires returns the Expires attribute. Zero time is returned if it's missing or malformed.
func (c Cookie) Expires() time.Time {
	value, found := c.Attr("Expires")
	if !found {
		return time.Time{}
	}

	expires, err := time.Parse(timeFormat, value)
	if err != nil {
		return time.Time{}
	}

	return expires
}

func (c Cookie) Secure() bool {
	return c.Attrs != nil && c.Attrs.Has("Secure")
}

func (c Cookie) HttpOnly() bool {
	return c.Attrs != nil && c.Attrs.Has("HttpOnly")
}

func (c Cookie) SameSite() SameSite {
	return c.attr("SameSite")
}

func (c Cookie) Priority() string {
	return c.attr("Priority")
}

// Append serializes the cookie in the Set-Cookie value form. Path is always written first,
// defaulting to the root if unset.
func (c Cookie) Append(buff []byte) []byte {
	buff = append(buff, c.Name...)
	buff = append(buff, '=')
	buff = append(buff, c.Value...)
	buff = append(buff, "; Path="...)

	path := c.Path()
	if len(path) == 0 {
		path = "/"
	}

	buff = append(buff, path...)

	if c.Attrs == nil {
		return buff
	}

	for key, value := range c.Attrs.Pairs() {
		if strings.EqualFold(key, "Path") {
			continue
		}

		buff = append(buff, ';', ' ')
		buff = append(buff, key...)
		if len(value) > 0 {
			buff = append(buff, '=')
			buff = append(buff, value...)
		}
	}

	return buff
}

func (c Cookie) String() string {
	return string(c.Append(nil))
}

const timeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

type Builder struct {
	cookie Cookie
}

// Build is a chainable constructor for cookies. A preferred way of instantiation
func Build(name, value string) Builder {
	return Builder{New(name, value)}
}

func (b Builder) Path(path string) Builder {
	b.cookie.Attrs.Set("Path", path)
	return b
}

func (b Builder) Domain(domain string) Builder {
	b.cookie.Attrs.Set("Domain", domain)
	return b
}

func (b Builder) Expires(expires time.Time) Builder {
	b.cookie.Attrs.Set("Expires", expires.UTC().Format(timeFormat))
	return b
}

// MaxAge defines a delta in seconds, when the cookie should be dropped.
// Note, that zero is treated as a zero-value, so will be ignored. In order
// to be added with a value of zero, it must be negative. -1 is the conventional
// value for this purpose
func (b Builder) MaxAge(maxAge int) Builder {
	switch {
	case maxAge == 0:
		b.cookie.Attrs.Delete("Max-Age")
	case maxAge < 0:
		b.cookie.Attrs.Set("Max-Age", "0")
	default:
		b.cookie.Attrs.Set("Max-Age", strconv.Itoa(maxAge))
	}

	return b
}

func (b Builder) SameSite(sameSite SameSite) Builder {
	b.cookie.Attrs.Set("SameSite", sameSite)
	return b
}

func (b Builder) Priority(priority string) Builder {
	b.cookie.Attrs.Set("Priority", priority)
	return b
}

func (b Builder) Secure(secure bool) Builder {
	return b.flag("Secure", secure)
}

func (b Builder) HttpOnly(httpOnly bool) Builder {
	return b.flag("HttpOnly", httpOnly)
}

// Attr sets an arbitrary extension attribute.
func (b Builder) Attr(key, value string) Builder {
	b.cookie.Attrs.Set(key, value)
	return b
}

func (b Builder) flag(key string, set bool) Builder {
	if set {
		b.cookie.Attrs.Set(key, "")
	} else {
		b.cookie.Attrs.Delete(key)
	}

	return b
}

// Cookie returns the built cookie instance
func (b Builder) Cookie() Cookie {
	return b.cookie
}

type SameSite = string

const (
	SameSiteLax    SameSite = "Lax"
	SameSiteStrict SameSite = "Strict"
	SameSiteNone   SameSite = "None"
)
