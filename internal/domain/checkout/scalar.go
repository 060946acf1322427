package checkout

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// Bounds for parsed numbers. They are checked on the exponent and digit
// count before any arithmetic, since rescaling a value like 1e50000000
// allocates one digit per unit of exponent.
const (
	maxIntegerDigits  = 15
	maxFractionDigits = 20
)

type scalarKind uint8

const (
	scalarAbsent scalarKind = iota
	scalarNumber
	scalarText
	scalarOther
)

// Scalar is a JSON value that clients send either as a number or as a
// numeric string. Values of any other JSON type are kept so that parsing
// fails later with a validation error instead of at decode time.
type Scalar struct {
	text string
	kind scalarKind
}

// Number returns a Scalar holding a JSON number literal.
func Number(v string) Scalar {
	return Scalar{text: v, kind: scalarNumber}
}

// Text returns a Scalar holding a JSON string.
func Text(v string) Scalar {
	return Scalar{text: v, kind: scalarText}
}

// IsSet reports whether the value was present and not null.
func (s Scalar) IsSet() bool {
	return s.kind != scalarAbsent
}

// String returns the textual form of the value.
func (s Scalar) String() string {
	return s.text
}

// Decimal parses the value as a decimal number. Values with more than
// 15 integer digits or 20 fraction digits are rejected.
func (s Scalar) Decimal() (decimal.Decimal, error) {
	switch s.kind {
	case scalarNumber, scalarText:
		d, err := decimal.NewFromString(s.text)
		if err != nil {
			return decimal.Zero, err
		}
		if exp := int(d.Exponent()); exp < -maxFractionDigits || d.NumDigits()+exp > maxIntegerDigits {
			return decimal.Zero, errors.Errorf("value %q is out of range", s.text)
		}
		return d, nil
	case scalarAbsent:
		return decimal.Zero, errors.New("value is missing")
	default:
		return decimal.Zero, errors.Errorf("value %q is not numeric", s.text)
	}
}

// Int parses the value as a whole number.
func (s Scalar) Int() (int, error) {
	d, err := s.Decimal()
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, errors.Errorf("value %s is not an integer", d)
	}
	n := d.IntPart()
	if int64(int(n)) != n {
		return 0, errors.Errorf("value %s overflows int", d)
	}
	return int(n), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	d := jx.DecodeBytes(data)
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return errors.Wrap(err, "decode number")
		}
		*s = Number(n.String())
	case jx.String:
		v, err := d.Str()
		if err != nil {
			return errors.Wrap(err, "decode string")
		}
		*s = Text(v)
	case jx.Null:
		*s = Scalar{}
	default:
		raw, err := d.Raw()
		if err != nil {
			return errors.Wrap(err, "decode value")
		}
		*s = Scalar{text: raw.String(), kind: scalarOther}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s Scalar) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	switch s.kind {
	case scalarAbsent:
		e.Null()
	case scalarNumber:
		e.Num(jx.Num(s.text))
	case scalarOther:
		e.Raw([]byte(s.text))
	default:
		e.Str(s.text)
	}
	return e.Bytes(), nil
}
