// Package testfixtures provides types used for testing the resolver, the
// converter graph, and the emitter.
package testfixtures

import (
	"time"

	"github.com/google/uuid"
)

// Person carries a date, which needs a converter once time.Time is
// registered with one.
type Person struct {
	Name     string    `json:"name"`
	Birthday time.Time `json:"birthday"`
}

// Address has no converter anywhere in its closure.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
}

// Customer refers to a convertible type through a slice.
type Customer struct {
	ID       uuid.UUID `json:"id"`
	Contacts []Person  `json:"contacts"`
	Home     *Address  `json:"home,omitempty"`
}

// A and B refer to each other and contain no converter.
type A struct {
	B *B `json:"b"`
}

// B is the other half of the A/B cycle.
type B struct {
	A *A `json:"a"`
}

// Tree is self-referential.
type Tree struct {
	Label    string  `json:"label"`
	Children []*Tree `json:"children"`
}

// Event is self-referential and carries a date.
type Event struct {
	At     time.Time `json:"at"`
	Parent *Event    `json:"parent,omitempty"`
}

// Status is an enumeration registered by tests.
type Status int

// Status values.
const (
	StatusActive Status = iota
	StatusDisabled
)

// UserID is a defined type over a basic kind.
type UserID string

// Shape is a polymorphic base.
type Shape struct {
	Color string `json:"color"`
}

// Circle embeds Shape.
type Circle struct {
	Shape
	Radius float64 `json:"radius"`
}

// Square embeds Shape.
type Square struct {
	Shape
	Side float64 `json:"side"`
}

// Drawing holds shapes through the base type only.
type Drawing struct {
	Shapes []Shape `json:"shapes"`
}

// Unsupported has a field that cannot cross the wire.
type Unsupported struct {
	OK   string       `json:"ok"`
	Done chan bool    `json:"done"`
	Tags []chan error `json:"tags"`
}

// Millis is a timestamp in milliseconds, registered by tests with its own
// date converter.
type Millis int64

// Lease carries two date encodings under one target alias.
type Lease struct {
	Created time.Time `json:"created"`
	Expires Millis    `json:"expires"`
}

// Named is a candidate interface implemented by Badge.
type Named interface{ DisplayName() string }

// Stamped is a second, unrelated candidate interface implemented by Badge.
type Stamped interface{ StampedAt() time.Time }

// Badge implements both Named and Stamped.
type Badge struct {
	Label string `json:"label"`
}

func (b Badge) DisplayName() string { return b.Label }

func (Badge) StampedAt() time.Time { return time.Time{} }
