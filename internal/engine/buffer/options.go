package buffer

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithLines sets the initial content of the buffer.
func WithLines(lines []string) Option {
	return func(b *Buffer) {
		b.lines = b.lines[:0]
		for _, text := range lines {
			b.lines = append(b.lines, b.newLine(text))
		}
	}
}

// WithCurrent sets the initial current-line pointer.
// Out of range values are clamped to the sentinels.
func WithCurrent(addr int) Option {
	return func(b *Buffer) {
		b.current = addr
	}
}
