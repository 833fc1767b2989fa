// Package pizza holds the sized, priced and toppable pizza sold by the box-box
// services. It has no I/O and no locking: a Pizza belongs to whoever built it.
package pizza

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// ErrInvalidSize is returned when a pizza is built from something that is not
// a catalogue size.
var ErrInvalidSize = errors.New("invalid pizza size")

// InvalidSizeError carries the rejected size. Name is set when the size came
// in as a raw string.
type InvalidSizeError struct {
	Size Size
	Name string
}

func (e *InvalidSizeError) Error() string {
	if e.Name != "" || e.Size == 0 {
		return fmt.Sprintf("%s: %q", ErrInvalidSize, e.Name)
	}
	return fmt.Sprintf("%s: %d", ErrInvalidSize, int(e.Size))
}

func (e *InvalidSizeError) Unwrap() error { return ErrInvalidSize }

// Pizza is a single pizza with one size and an ordered set of toppings.
type Pizza struct {
	size     Size
	toppings []string
}

// New returns a plain pizza of the given size.
func New(size Size) (*Pizza, error) {
	if !size.Valid() {
		return nil, &InvalidSizeError{Size: size}
	}
	return &Pizza{size: size}, nil
}

// Size returns the size the pizza was built with.
func (p *Pizza) Size() Size {
	return p.size
}

// Toppings returns a copy of the toppings in the order they were added.
func (p *Pizza) Toppings() []string {
	return append([]string(nil), p.toppings...)
}

// AddTopping appends name unless the exact same string is already on the
// pizza. Names are not normalised: "Ham" and "ham" are two toppings.
func (p *Pizza) AddTopping(name string) {
	if lo.Contains(p.toppings, name) {
		return
	}
	p.toppings = append(p.toppings, name)
}

// Price depends on size and number of toppings.
func (p *Pizza) Price() int {
	return PriceFor(p.size, len(p.toppings))
}

// Describe returns e.g. "small pizza with mushroom, tomato" or
// "small plain pizza".
func (p *Pizza) Describe() string {
	if len(p.toppings) == 0 {
		return NameOf(p.size) + " plain pizza"
	}
	return NameOf(p.size) + " pizza with " + strings.Join(p.toppings, ", ")
}

// String implements fmt.Stringer.
func (p *Pizza) String() string {
	return p.Describe()
}

// Build parses size and adds toppings in order, the way every service turns
// an incoming request into a Pizza.
func Build(size string, toppings []string) (*Pizza, error) {
	s, err := ParseSize(size)
	if err != nil {
		return nil, err
	}
	p, err := New(s)
	if err != nil {
		return nil, err
	}
	for _, t := range toppings {
		p.AddTopping(t)
	}
	return p, nil
}
