package http1

import (
	"bytes"

	"github.com/indigo-web/wire/internal/buffer"
)

type scanStatus uint8

const (
	lineComplete scanStatus = iota
	lineIncomplete
	lineTooLong
)

var crlf = []byte("\r\n")

// scanLine looks for the next CRLF-terminated line. The line is returned without its
// terminator. A line longer than the ceiling is reported as too long even when its terminator
// is already in place, as well as an unterminated tail, which already exceeds the ceiling.
func scanLine(data []byte, ceiling int) (line, rest []byte, status scanStatus) {
	i := bytes.Index(data, crlf)
	if i == -1 {
		pending := len(data)
		if pending > 0 && data[pending-1] == '\r' {
			// might be the first half of the terminator
			pending--
		}

		if pending > ceiling {
			return nil, data, lineTooLong
		}

		return nil, data, lineIncomplete
	}

	if i > ceiling {
		return nil, data, lineTooLong
	}

	return data[:i], data[i+2:], lineComplete
}

// lineReader glues lines split across multiple feeds. Lines, which arrived whole, are
// returned as sub-slices of the input, so they must not be retained by the caller.
type lineReader struct {
	pending *buffer.Buffer
}

func newLineReader(maxLineLength int) lineReader {
	// extra byte is for the carriage return, which may await its line feed
	return lineReader{pending: buffer.New(64, maxLineLength+1)}
}

func (l lineReader) next(data []byte, ceiling int) (line, rest []byte, status scanStatus) {
	if l.pending.Len() == 0 {
		line, rest, status = scanLine(data, ceiling)
		if status == lineIncomplete && !l.pending.Append(data) {
			return nil, nil, lineTooLong
		}

		return line, rest, status
	}

	if held := l.pending.Preview(); held[len(held)-1] == '\r' && data[0] == '\n' {
		line = held[:len(held)-1]
		if len(line) > ceiling {
			return nil, nil, lineTooLong
		}

		l.pending.Clear()
		return line, data[1:], lineComplete
	}

	line, rest, status = scanLine(data, ceiling-l.pending.Len())
	switch status {
	case lineComplete:
		if !l.pending.Append(line) {
			return nil, nil, lineTooLong
		}

		line = l.pending.Preview()
		l.pending.Clear()
		return line, rest, lineComplete
	case lineIncomplete:
		if !l.pending.Append(data) {
			return nil, nil, lineTooLong
		}

		return nil, nil, lineIncomplete
	default:
		return nil, nil, lineTooLong
	}
}

func (l lineReader) reset() {
	l.pending.Clear()
}
