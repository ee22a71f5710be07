package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Unit is the suffix scale of a Magnitude.
type Unit string

const (
	UnitNone     Unit = ""
	UnitThousand Unit = "K"
	UnitMillion  Unit = "M"
	UnitBillion  Unit = "B"
	UnitTrillion Unit = "T"
)

// Multiplier returns the absolute scale of the unit.
func (u Unit) Multiplier() float64 {
	switch u {
	case UnitThousand:
		return 1e3
	case UnitMillion:
		return 1e6
	case UnitBillion:
		return 1e9
	case UnitTrillion:
		return 1e12
	default:
		return 1
	}
}

// Magnitude is a suffixed quantity such as "23.4B".
// Value holds the mantissa as written; Unit the suffix.
type Magnitude struct {
	Value float64
	Unit  Unit
}

// ParseMagnitude parses strings like "23.4B", "520M" or "1200".
// Characters other than digits and dots are dropped from the mantissa, which
// is then read up to its second dot: "1.2.3B" is 1.2 billion.
func ParseMagnitude(s string) (Magnitude, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Magnitude{}, fmt.Errorf("empty magnitude")
	}

	unit := UnitNone
	switch strings.ToUpper(s[len(s)-1:]) {
	case "K":
		unit = UnitThousand
	case "M":
		unit = UnitMillion
	case "B":
		unit = UnitBillion
	case "T":
		unit = UnitTrillion
	}
	if unit != UnitNone {
		s = s[:len(s)-1]
	}

	var b strings.Builder
	dot := false
	for _, r := range s {
		if r == '.' {
			if dot {
				break
			}
			dot = true
		} else if r < '0' || r > '9' {
			continue
		}
		b.WriteRune(r)
	}

	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return Magnitude{}, fmt.Errorf("parsing magnitude %q: %w", s, err)
	}
	return Magnitude{Value: v, Unit: unit}, nil
}

// MustMagnitude is ParseMagnitude for literals known to be valid.
func MustMagnitude(s string) Magnitude {
	m, err := ParseMagnitude(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Float returns the absolute quantity.
func (m Magnitude) Float() float64 {
	return m.Value * m.Unit.Multiplier()
}

// Billions returns the quantity expressed in billions.
func (m Magnitude) Billions() float64 {
	return m.Float() / 1e9
}

// String formats the magnitude back to its suffixed form.
func (m Magnitude) String() string {
	return strconv.FormatFloat(m.Value, 'f', -1, 64) + string(m.Unit)
}

// MarshalText implements encoding.TextMarshaler.
func (m Magnitude) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Magnitude) UnmarshalText(text []byte) error {
	parsed, err := ParseMagnitude(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
