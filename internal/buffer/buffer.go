package buffer

// Buffer is a growable byte sequence holding the data that isn't consumed yet. It's used both
// for the incomplete lines, waiting for their terminator, and for the body bytes, waiting to be
// taken. The amount of held data is limited by maxSize.
type Buffer struct {
	memory  []byte
	begin   int
	maxSize int
}

func New(initialSize, maxSize int) *Buffer {
	return &Buffer{
		memory:  make([]byte, 0, initialSize),
		maxSize: maxSize,
	}
}

// Append writes data, checking whether the new amount of held bytes doesn't exceed the
// limit, otherwise discarding the data and returning false.
func (b *Buffer) Append(elements []byte) (ok bool) {
	if b.Len()+len(elements) > b.maxSize {
		return false
	}

	if b.begin > 0 && len(b.memory)+len(elements) > cap(b.memory) {
		b.compact()
	}

	b.memory = append(b.memory, elements...)
	return true
}

// Preview returns the held data without consuming it. The returned slice is valid only until
// the next Append, Take or Clear call.
func (b *Buffer) Preview() []byte {
	return b.memory[b.begin:]
}

// Take consumes at most n bytes, returning their copy. The rest stays buffered. A negative
// n takes nothing.
func (b *Buffer) Take(n int) []byte {
	n = min(max(n, 0), b.Len())

	taken := make([]byte, n)
	copy(taken, b.memory[b.begin:])
	b.begin += n
	if b.begin == len(b.memory) {
		b.Clear()
	}

	return taken
}

// TakeAll hands the held data over to the caller and empties the buffer. The underlying
// memory isn't reused afterward, so the returned slice stays valid.
func (b *Buffer) TakeAll() []byte {
	if b.Len() == 0 {
		return nil
	}

	data := b.memory[b.begin:]
	b.memory = make([]byte, 0, cap(b.memory))
	b.begin = 0

	return data
}

// Len returns the number of held bytes.
func (b *Buffer) Len() int {
	return len(b.memory) - b.begin
}

// Clear just resets the pointers, so old values may be overridden by new ones.
func (b *Buffer) Clear() {
	b.begin = 0
	b.memory = b.memory[:0]
}

func (b *Buffer) compact() {
	n := copy(b.memory, b.memory[b.begin:])
	b.memory = b.memory[:n]
	b.begin = 0
}
