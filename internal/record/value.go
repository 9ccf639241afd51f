package record

import "time"

// Value is a sealed interface over the scalar types a property (or a
// customer-id value) may hold. Only Null, String, Int, Float, Bool, Time,
// and Bytes implement it.
type Value interface {
	propertyValue() // Sealed - only these types implement it
}

// Null represents an explicit null value.
// Using a concrete type keeps nil out of the sealed interface.
type Null struct{}

func (Null) propertyValue() {}

// String represents a string value.
type String string

func (String) propertyValue() {}

// Int represents an integer value. Always int64.
type Int int64

func (Int) propertyValue() {}

// Float represents a floating-point value.
type Float float64

func (Float) propertyValue() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) propertyValue() {}

// Time represents a date value.
type Time time.Time

func (Time) propertyValue() {}

// Bytes represents an opaque binary value.
type Bytes []byte

func (Bytes) propertyValue() {}

// Property is a single key/value attribute attached to a record.
// Properties have no lifecycle of their own - they are written and deleted
// with their parent record.
type Property struct {
	Key   string
	Value Value
}

// P is a shorthand constructor for ergonomic property-list literals.
// Example: PropertiesField{Properties: []Property{P("screen", String("home"))}}
func P(key string, value Value) Property {
	return Property{Key: key, Value: value}
}
