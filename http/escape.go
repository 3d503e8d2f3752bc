package http

// Escape makes the string safe to be printed, replacing non-printable characters with their
// C-like escape sequences, or \? if there's no such. Printable strings are returned as is.
func Escape(str string) string {
	var (
		buff   []byte
		offset int
	)

	for i := 0; i < len(str); i++ {
		if isPrintable(str[i]) {
			continue
		}

		if buff == nil {
			buff = make([]byte, 0, len(str)+len(str)/2)
		}

		buff = append(buff, str[offset:i]...)
		buff = append(buff, '\\', escapeChar(str[i]))
		offset = i + 1
	}

	if buff == nil {
		return str
	}

	return string(append(buff, str[offset:]...))
}

func isPrintable(c byte) bool {
	return c >= 0x20 && c <= 0x7e
}

func escapeChar(c byte) byte {
	switch c {
	case 0:
		return '0'
	case '\a':
		return 'a'
	case '\b':
		return 'b'
	case '\t':
		return 't'
	case '\n':
		return 'n'
	case '\v':
		return 'v'
	case '\f':
		return 'f'
	case '\r':
		return 'r'
	default:
		return '?'
	}
}
