package fieldproto

import (
	"bufio"
	"io"
)

// Control characters recognized by CharReader.
const (
	charBackspace = 8
	charEnter     = 13
	charDelete    = 127
)

// CharReader assembles lines from a character stream such as a raw terminal
// or a serial link, one byte at a time.
//
// Editing rules:
//   - BS (8) and DEL (127) remove the last buffered character, if any.
//   - CR (13) ends the line. LF and other control characters are ignored.
//   - Printable characters (32..126) are buffered while the line has room;
//     characters past MaxChars are dropped.
//   - Bytes outside 7-bit ASCII are ignored.
type CharReader struct {
	r    io.ByteReader
	echo io.Writer

	// Newline is echoed when a line ends. Only used with an echo writer.
	Newline string
}

// NewCharReader reads characters from r. When echo is non-nil, accepted
// characters and erasures are echoed to it.
func NewCharReader(r io.Reader, echo io.Writer) *CharReader {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReaderSize(r, 1)
	}
	return &CharReader{r: br, echo: echo, Newline: "\r\n"}
}

// ReadLine resets l and fills it with the next line.
//
// EOF after some characters ends the line normally; EOF on an empty line is
// returned as io.EOF.
func (cr *CharReader) ReadLine(l *Line) error {
	l.Reset()

	for {
		c, err := cr.r.ReadByte()
		if err != nil {
			if err == io.EOF && l.Len() > 0 {
				return nil
			}
			return err
		}

		switch {
		case c == charBackspace || c == charDelete:
			if l.Backspace() {
				cr.echoText("\b \b")
			}
		case c == charEnter:
			cr.echoText(cr.Newline)
			return nil
		case c >= ' ' && c < charDelete:
			if l.Append(c) {
				cr.echoText(string(c))
			}
		}
	}
}

func (cr *CharReader) echoText(s string) {
	if cr.echo == nil {
		return
	}
	io.WriteString(cr.echo, s)
}
