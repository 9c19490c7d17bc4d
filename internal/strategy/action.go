package strategy

import "strings"

// Action is a player decision on a hand
type Action int

const (
	Hit Action = iota
	Stand
	Double
	Split
	Surrender
)

func (a Action) String() string {
	switch a {
	case Hit:
		return "hit"
	case Stand:
		return "stand"
	case Double:
		return "double"
	case Split:
		return "split"
	case Surrender:
		return "surrender"
	default:
		return "unknown"
	}
}

// ActionSet is a set of actions currently legal on a hand
type ActionSet uint8

// NewActionSet builds a set from the given actions
func NewActionSet(actions ...Action) ActionSet {
	var s ActionSet
	for _, a := range actions {
		s = s.With(a)
	}
	return s
}

// AllActions is the set of every action
var AllActions = NewActionSet(Hit, Stand, Double, Split, Surrender)

// Has reports whether a is in the set
func (s ActionSet) Has(a Action) bool {
	return s&(1<<a) != 0
}

// With returns the set with a added
func (s ActionSet) With(a Action) ActionSet {
	return s | 1<<a
}

// Without returns the set with a removed
func (s ActionSet) Without(a Action) ActionSet {
	return s &^ (1 << a)
}

// Actions lists the members in declaration order
func (s ActionSet) Actions() []Action {
	var out []Action
	for a := Hit; a <= Surrender; a++ {
		if s.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

func (s ActionSet) String() string {
	names := []string{}
	for _, a := range s.Actions() {
		names = append(names, a.String())
	}
	return strings.Join(names, ",")
}
