package config

import (
	"io"
	"time"

	json "github.com/json-iterator/go"

	"github.com/indigo-web/wire/http/mime"
)

type (
	HeadersNumber struct {
		Default, Maximal int
	}

	NETWriteBufferSize struct {
		Default, Maximal int
	}
)

type (
	URI struct {
		// MaxLineLength limits the start line (method, request target and protocol) of a
		// request or the status line of a response. Exceeding it results in
		// status.ErrRequestLineTooLong.
		MaxLineLength int
		// ParamsPrealloc is the initial capacity of the query parameters storage.
		ParamsPrealloc int
	}

	Headers struct {
		// MaxLineLength limits every single header (and trailer) field line. Exceeding it
		// results in status.ErrHeaderLineTooLong.
		MaxLineLength int
		// Number is responsible for headers storage size.
		// Default value is an initial size of allocated headers storage.
		// Maximal value is maximum number of headers allowed to be presented
		Number HeadersNumber
		// CookiesPrealloc defines the initial cookie.Jar capacity.
		CookiesPrealloc int
		// Default headers are headers to be included into every response implicitly, unless
		// explicitly overridden.
		Default map[string]string `test:"nullable"`
	}

	Body struct {
		// MaxSize describes the maximal size of a body, that can be processed. In order to
		// disable the setting, use the math.MaxUint64 value.
		MaxSize uint64
		// MaxChunkHexDigits limits the number of hex digits in a chunk size line, therefore
		// implicitly limiting a single chunk to 2^(4*n) bytes.
		MaxChunkHexDigits int
	}

	NET struct {
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// socket
		ReadBufferSize int
		// ReadTimeout controls the maximal lifetime of IDLE connections. If no data was
		// received in this period of time, it'll be closed.
		ReadTimeout time.Duration
		// WriteBufferSize stores the HTTP response, which is going to be transmitted.
		// Bodies are flushed every time the default size is filled, however the head is
		// always written at once. If it grew the buffer beyond the maximal size, the
		// buffer is shrunk back afterward.
		WriteBufferSize NETWriteBufferSize
		// AcceptLoopInterruptPeriod defines how often the listener wakes up in order to
		// check whether it was stopped.
		AcceptLoopInterruptPeriod time.Duration
	}

	Ranges struct {
		// BoundaryLength is the number of random characters in a multipart/byteranges
		// boundary token.
		BoundaryLength int
		// DefaultPartType is used as a Content-Type of every byterange part, if the
		// resource's own MIME type is unknown.
		DefaultPartType mime.MIME
		// MaxParts limits the number of ranges in a single Range header. Longer lists are
		// refused as unsatisfiable.
		MaxParts int
	}
)

// Config holds settings used across the parser, serializer and the server, mainly
// restrictions, limitations and pre-allocations.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	URI     URI
	Headers Headers
	Body    Body
	NET     NET
	Ranges  Ranges
}

// Default returns default config. Line ceilings are tight, as lines longer than 1kb are
// rarely legit.
func Default() *Config {
	return &Config{
		URI: URI{
			MaxLineLength:  1024,
			ParamsPrealloc: 5,
		},
		Headers: Headers{
			MaxLineLength: 1024,
			Number: HeadersNumber{
				Default: 10,
				Maximal: 50,
			},
			CookiesPrealloc: 5,
			Default:         make(map[string]string),
		},
		Body: Body{
			MaxSize:           512 * 1024 * 1024, // 512 megabytes
			MaxChunkHexDigits: 16,
		},
		NET: NET{
			ReadBufferSize: 4 * 1024,
			ReadTimeout:    90 * time.Second,
			WriteBufferSize: NETWriteBufferSize{
				Default: 2 * 1024,
				Maximal: 64 * 1024,
			},
			AcceptLoopInterruptPeriod: 5 * time.Second,
		},
		Ranges: Ranges{
			BoundaryLength:  24,
			DefaultPartType: mime.OctetStream,
			MaxParts:        16,
		},
	}
}

var strict = json.Config{
	DisallowUnknownFields: true,
}.Froze()

// FromJSON overlays the JSON document on top of the default config. Fields missing in
// the document keep their default values.
func FromJSON(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := strict.NewDecoder(r).Decode(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
