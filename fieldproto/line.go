package fieldproto

// Line is the per-line request state: a fixed-capacity buffer and the field
// table produced by the last Parse. The zero value is an empty line.
//
// Parse rewrites delimiters in the buffer, so the raw text does not survive
// it; copy Bytes first if it is needed afterwards.
type Line struct {
	buf    [MaxChars + 1]byte
	n      int
	fields FieldTable
}

// Reset empties the line and forgets its fields.
func (l *Line) Reset() {
	l.n = 0
	l.buf[0] = Terminator
	l.fields = FieldTable{}
}

// Load replaces the line with s, keeping at most MaxChars bytes. It returns
// the number of bytes kept.
func (l *Line) Load(s string) int {
	l.Reset()
	l.n = copy(l.buf[:MaxChars], s)
	l.buf[l.n] = Terminator
	return l.n
}

// Append adds c to the end of the line. It reports false when the line is full.
func (l *Line) Append(c byte) bool {
	if l.n >= MaxChars {
		return false
	}
	l.buf[l.n] = c
	l.n++
	l.buf[l.n] = Terminator
	return true
}

// Backspace removes the last character. It reports false on an empty line.
func (l *Line) Backspace() bool {
	if l.n == 0 {
		return false
	}
	l.n--
	l.buf[l.n] = Terminator
	return true
}

// Len returns the number of characters in the line.
func (l *Line) Len() int {
	return l.n
}

// Bytes returns the line contents, without the trailing terminator. The
// slice aliases the line buffer.
func (l *Line) Bytes() []byte {
	return l.buf[:l.n]
}

// String returns the current line contents.
func (l *Line) String() string {
	return string(l.buf[:l.n])
}

// Parse tokenizes the line in place and stores the resulting field table.
func (l *Line) Parse() *FieldTable {
	l.fields = Tokenize(l.buf[:l.n])
	return &l.fields
}

// Fields returns the table produced by the last Parse.
func (l *Line) Fields() *FieldTable {
	return &l.fields
}

// Field returns a view of field i.
func (l *Line) Field(i int) ([]byte, bool) {
	return l.fields.Field(l.Bytes(), i)
}

// FieldString returns field i as a string.
func (l *Line) FieldString(i int) (string, bool) {
	return l.fields.FieldString(l.Bytes(), i)
}

// FieldInteger returns field i parsed as an unsigned integer, or 0.
func (l *Line) FieldInteger(i int) uint32 {
	return l.fields.FieldInteger(l.Bytes(), i)
}

// FieldIntegerChecked returns field i parsed as an unsigned integer.
func (l *Line) FieldIntegerChecked(i int) (uint32, error) {
	return l.fields.FieldIntegerChecked(l.Bytes(), i)
}

// IsCommand reports whether the line's verb is verb with at least minArgs
// arguments.
func (l *Line) IsCommand(verb string, minArgs int) bool {
	return l.fields.IsCommand(l.Bytes(), verb, minArgs)
}
