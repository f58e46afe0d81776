package firedoc

import "fmt"

// DefaultMaxDepth bounds wrapper nesting when Options.MaxDepth is zero.
const DefaultMaxDepth = 64

// NumberPolicy selects the tag the encoder gives plain numbers.
type NumberPolicy uint8

const (
	// NumbersAsInteger tags every number as integerValue.
	NumbersAsInteger NumberPolicy = iota
	// FractionalAsDouble tags numbers written with a decimal point or an
	// exponent as doubleValue and the rest as integerValue.
	FractionalAsDouble
)

// String returns the policy name accepted by ParseNumberPolicy.
func (p NumberPolicy) String() string {
	switch p {
	case NumbersAsInteger:
		return "integer"
	case FractionalAsDouble:
		return "fractional-double"
	default:
		return fmt.Sprintf("NumberPolicy(%d)", uint8(p))
	}
}

// ParseNumberPolicy parses a policy name. The empty string selects
// NumbersAsInteger.
func ParseNumberPolicy(s string) (NumberPolicy, error) {
	switch s {
	case "", "integer":
		return NumbersAsInteger, nil
	case "fractional-double":
		return FractionalAsDouble, nil
	default:
		return 0, fmt.Errorf("firedoc: unknown number policy %q", s)
	}
}

// DropFunc observes a wrapper dropped for carrying no recognized tag.
// keys lists the wrapper's keys in sorted order.
type DropFunc func(path Path, keys []string)

// Options configures a Decoder or an Encoder.
type Options struct {
	// MaxDepth bounds wrapper nesting. Zero means DefaultMaxDepth.
	MaxDepth int

	// Strict fails decoding when any wrapper carries no recognized tag.
	// All such wrappers are reported together.
	Strict bool

	// OnDrop, when set, is called for every dropped wrapper.
	OnDrop DropFunc

	// NumberPolicy selects how the encoder tags numbers.
	NumberPolicy NumberPolicy
}

// DefaultOptions returns lenient options with the default depth bound.
func DefaultOptions() Options {
	return Options{MaxDepth: DefaultMaxDepth}
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}
