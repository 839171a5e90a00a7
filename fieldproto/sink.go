package fieldproto

import (
	"io"
	"strconv"
)

// Sink is an unbuffered text output, the write side of a character stream.
type Sink interface {
	WriteText(s string) error
	WriteChar(c byte) error
}

// TextWriter is a Sink over an io.Writer.
type TextWriter struct {
	w io.Writer

	// Newline ends each line written by WriteLine and WriteResponse.
	// Raw terminals and serial links need "\r\n".
	Newline string
}

// NewTextWriter creates a TextWriter with "\n" line endings.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w, Newline: "\n"}
}

// WriteText writes s as is.
func (tw *TextWriter) WriteText(s string) error {
	_, err := io.WriteString(tw.w, s)
	return err
}

// WriteChar writes a single byte.
func (tw *TextWriter) WriteChar(c byte) error {
	_, err := tw.w.Write([]byte{c})
	return err
}

// WriteInt writes v in decimal, with a leading '-' when negative.
func (tw *TextWriter) WriteInt(v int64) error {
	var buf [20]byte
	return tw.WriteText(string(strconv.AppendInt(buf[:0], v, 10)))
}

// WriteLine writes s followed by Newline.
func (tw *TextWriter) WriteLine(s string) error {
	if err := tw.WriteText(s); err != nil {
		return err
	}
	return tw.WriteText(tw.Newline)
}

// WriteResponse writes the response data as one line. Error responses are
// written the same way; the stream transport has no status channel.
func (tw *TextWriter) WriteResponse(r Response) error {
	return tw.WriteLine(r.Data)
}
