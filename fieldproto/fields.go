package fieldproto

import "math"

// Field returns a read-only view of field i, running from its start to the
// next Terminator or the end of buf. It reports false when the field is
// absent.
func (t *FieldTable) Field(buf []byte, i int) ([]byte, bool) {
	pos, ok := t.Position(i)
	if !ok || pos >= len(buf) {
		return nil, false
	}
	end := pos
	for end < len(buf) && buf[end] != Terminator {
		end++
	}
	return buf[pos:end:end], true
}

// FieldString returns field i as a string.
func (t *FieldTable) FieldString(buf []byte, i int) (string, bool) {
	b, ok := t.Field(buf, i)
	if !ok {
		return "", false
	}
	return string(b), true
}

// FieldInteger parses field i as an unsigned decimal number.
//
// It returns 0 when the field is absent or not numeric, so a zero result is
// ambiguous; check Count and Type, or use FieldIntegerChecked. Digits are
// accumulated until the first non-digit ("12ab" is 12) and the result wraps
// on overflow.
func (t *FieldTable) FieldInteger(buf []byte, i int) uint32 {
	b, ok := t.numericField(buf, i)
	if !ok {
		return 0
	}
	var result uint32
	for _, c := range b {
		if !isDigit(c) {
			break
		}
		result = result*10 + uint32(c-'0')
	}
	return result
}

// FieldIntegerChecked is FieldInteger with explicit failures: a *FieldError
// wrapping ErrFieldAbsent, ErrFieldNotNumeric or ErrIntegerOverflow.
func (t *FieldTable) FieldIntegerChecked(buf []byte, i int) (uint32, error) {
	b, ok := t.Field(buf, i)
	if !ok {
		return 0, &FieldError{Index: i, Err: ErrFieldAbsent}
	}
	if typ, _ := t.Type(i); typ != FieldNumeric {
		return 0, &FieldError{Index: i, Value: string(b), Err: ErrFieldNotNumeric}
	}

	var result uint64
	for _, c := range b {
		if !isDigit(c) {
			break
		}
		result = result*10 + uint64(c-'0')
		if result > math.MaxUint32 {
			return 0, &FieldError{Index: i, Value: string(b), Err: ErrIntegerOverflow}
		}
	}
	return uint32(result), nil
}

func (t *FieldTable) numericField(buf []byte, i int) ([]byte, bool) {
	if typ, ok := t.Type(i); !ok || typ != FieldNumeric {
		return nil, false
	}
	return t.Field(buf, i)
}

// IsCommand reports whether field 0 equals verb exactly (case-sensitive,
// same length) and at least minArgs fields follow it. An empty line matches
// nothing.
func (t *FieldTable) IsCommand(buf []byte, verb string, minArgs int) bool {
	typed, ok := t.Field(buf, 0)
	if !ok || len(typed) != len(verb) {
		return false
	}
	for i := 0; i < len(verb); i++ {
		if typed[i] != verb[i] {
			return false
		}
	}
	return t.count-1 >= minArgs
}
