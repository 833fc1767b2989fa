package pizza

import (
	"fmt"

	"github.com/samber/lo"
)

// Size is one of the fixed pizza sizes on the menu. The zero value is not a
// valid size.
type Size int

const (
	Small Size = iota + 1
	Medium
	Large
	Jumbo
)

// Prices is the immutable price record attached to a Size.
type Prices struct {
	Base    int `json:"base"`
	Topping int `json:"topping"`
}

var catalog = map[Size]struct {
	name   string
	prices Prices
}{
	Small:  {name: "small", prices: Prices{Base: 120, Topping: 20}},
	Medium: {name: "medium", prices: Prices{Base: 200, Topping: 25}},
	Large:  {name: "large", prices: Prices{Base: 280, Topping: 30}},
	Jumbo:  {name: "jumbo", prices: Prices{Base: 500, Topping: 50}},
}

// Sizes returns every size in menu order.
func Sizes() []Size {
	return []Size{Small, Medium, Large, Jumbo}
}

// SizeNames returns the canonical names of every size in menu order.
func SizeNames() []string {
	return lo.Map(Sizes(), func(s Size, _ int) string { return s.String() })
}

// ParseSize converts a canonical size name into a Size.
func ParseSize(name string) (Size, error) {
	for _, s := range Sizes() {
		if catalog[s].name == name {
			return s, nil
		}
	}
	return 0, &InvalidSizeError{Name: name}
}

// Valid reports whether s is a member of the catalogue.
func (s Size) Valid() bool {
	_, ok := catalog[s]
	return ok
}

// String implements fmt.Stringer.
func (s Size) String() string {
	entry, ok := catalog[s]
	if !ok {
		return fmt.Sprintf("Size(%d)", int(s))
	}
	return entry.name
}

// Prices returns the price record of s, or the zero record for an invalid size.
func (s Size) Prices() Prices {
	return catalog[s].prices
}

// NameOf returns the lowercase name used in pizza descriptions.
func NameOf(s Size) string {
	return s.String()
}

// PriceFor returns the price of a pizza of the given size carrying
// toppingCount toppings. A negative count is a caller bug and panics.
func PriceFor(s Size, toppingCount int) int {
	if toppingCount < 0 {
		panic(fmt.Sprintf("pizza: negative topping count %d", toppingCount))
	}
	p := s.Prices()
	return p.Base + p.Topping*toppingCount
}
