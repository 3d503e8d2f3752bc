package hexconv

// Invalid marks bytes that aren't hex digits in the Halfbyte table.
const Invalid = 0xFF

// Halfbyte maps an ASCII hex digit into its value. All other bytes are mapped into Invalid.
var Halfbyte = func() (table [256]byte) {
	for i := range table {
		table[i] = Invalid
	}

	for c := '0'; c <= '9'; c++ {
		table[c] = byte(c - '0')
	}

	for c := 'a'; c <= 'f'; c++ {
		table[c] = byte(c-'a') + 10
		table[c-'a'+'A'] = byte(c-'a') + 10
	}

	return table
}()

// Parse decodes a hex number. An empty input, an invalid digit or an overflow of 64 bits
// result in ok=false.
func Parse(digits []byte) (value uint64, ok bool) {
	if len(digits) == 0 || len(digits) > 16 {
		return 0, false
	}

	for _, char := range digits {
		half := Halfbyte[char]
		if half == Invalid {
			return 0, false
		}

		value = (value << 4) | uint64(half)
	}

	return value, true
}
