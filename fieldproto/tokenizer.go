package fieldproto

// FieldType classifies a field by its first character.
type FieldType byte

const (
	// FieldAlpha marks a field that starts with an ASCII letter.
	FieldAlpha FieldType = 'a'
	// FieldNumeric marks a field that starts with an ASCII digit.
	FieldNumeric FieldType = 'n'
)

// String returns "alpha" or "numeric".
func (t FieldType) String() string {
	switch t {
	case FieldAlpha:
		return "alpha"
	case FieldNumeric:
		return "numeric"
	default:
		return "none"
	}
}

// FieldTable records where each field of a tokenized line starts and how it
// was classified. Entries at or beyond Count are never returned.
type FieldTable struct {
	count    int
	position [MaxFields]int
	typ      [MaxFields]FieldType
}

// Count returns the number of recorded fields, at most MaxFields.
func (t *FieldTable) Count() int {
	return t.count
}

// Position returns the buffer offset where field i starts.
func (t *FieldTable) Position(i int) (int, bool) {
	if !t.valid(i) {
		return 0, false
	}
	return t.position[i], true
}

// Type returns the type of field i.
func (t *FieldTable) Type(i int) (FieldType, bool) {
	if !t.valid(i) {
		return 0, false
	}
	return t.typ[i], true
}

func (t *FieldTable) valid(i int) bool {
	return i >= 0 && i < t.count && i < MaxFields
}

// Tokenize splits buf into fields in place.
//
// Every byte that is not an ASCII letter or digit is a delimiter and is
// overwritten with Terminator. A field is recorded on each transition from
// delimiter to alphanumeric while the table has room; its type comes from
// that first character only. Once MaxFields fields are recorded the scan
// keeps rewriting delimiters but records nothing more.
//
// The slice length marks the end of the line. Terminators already present
// are delimiters, so tokenizing a tokenized buffer again yields the same
// table.
func Tokenize(buf []byte) FieldTable {
	var t FieldTable
	inField := false

	for i, c := range buf {
		var typ FieldType
		switch {
		case isAlpha(c):
			typ = FieldAlpha
		case isDigit(c):
			typ = FieldNumeric
		default:
			buf[i] = Terminator
			inField = false
			continue
		}

		if !inField && t.count < MaxFields {
			t.position[t.count] = i
			t.typ[t.count] = typ
			t.count++
		}
		inField = true
	}

	return t
}

func isAlpha(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlnum(c byte) bool {
	return isAlpha(c) || isDigit(c)
}
