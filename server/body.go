package server

import (
	"io"

	"github.com/indigo-web/wire/protocol/http1"
	"github.com/indigo-web/wire/transport"
)

// bodyReader retrieves the body of the current request, reading more from the client
// whenever the parser has nothing buffered.
type bodyReader struct {
	client transport.Client
	parser *http1.Parser
}

func newBodyReader(client transport.Client, parser *http1.Parser) *bodyReader {
	return &bodyReader{
		client: client,
		parser: parser,
	}
}

func (b *bodyReader) Retrieve() ([]byte, error) {
	for {
		if b.parser.Buffered() > 0 {
			data := b.parser.TakeAll()
			if b.parser.IsExhausted() {
				return data, io.EOF
			}

			return data, nil
		}

		if !b.parser.CanStillReadBody() {
			return nil, io.EOF
		}

		data, err := b.client.Read()
		switch err {
		case nil:
		case io.EOF:
			return nil, io.ErrUnexpectedEOF
		default:
			return nil, err
		}

		if len(data) == 0 {
			continue
		}

		if _, err = b.parser.Feed(data); err != nil {
			return nil, err
		}
	}
}

// drain consumes the rest of the body.
func (b *bodyReader) drain() error {
	for {
		_, err := b.Retrieve()
		switch err {
		case nil:
		case io.EOF:
			return nil
		default:
			return err
		}
	}
}
