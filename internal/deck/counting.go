package deck

import (
	"errors"
	"fmt"
	"strings"
)

// CountingSystem identifies a card counting tally table
type CountingSystem int

const (
	HiLo CountingSystem = iota
	KO
	OmegaII
	HiOptI
	HiOptII
)

// ErrUnknownSystem is returned when a counting system name is not recognised
var ErrUnknownSystem = errors.New("unknown counting system")

// CountingSystems lists every supported system
var CountingSystems = [...]CountingSystem{HiLo, KO, OmegaII, HiOptI, HiOptII}

// weights are indexed by Rank; index 0 is unused
var weights = map[CountingSystem][14]int{
	//         -  A  2  3  4  5  6  7  8  9  T  J  Q  K
	HiLo:    {0, -1, 1, 1, 1, 1, 1, 0, 0, 0, -1, -1, -1, -1},
	KO:      {0, -1, 1, 1, 1, 1, 1, 1, 0, 0, -1, -1, -1, -1},
	OmegaII: {0, 0, 1, 1, 2, 2, 2, 1, 0, -1, -2, -2, -2, -2},
	HiOptI:  {0, 0, 0, 1, 1, 1, 1, 0, 0, 0, -1, -1, -1, -1},
	HiOptII: {0, 0, 1, 1, 2, 2, 1, 1, 0, 0, -2, -2, -2, -2},
}

var systemNames = map[CountingSystem]string{
	HiLo:    "hi-lo",
	KO:      "ko",
	OmegaII: "omega-ii",
	HiOptI:  "hi-opt-i",
	HiOptII: "hi-opt-ii",
}

// Weight returns the tally weight for a rank under this system
func (cs CountingSystem) Weight(r Rank) int {
	w, ok := weights[cs]
	if !ok || r < Ace || r > King {
		return 0
	}
	return w[r]
}

func (cs CountingSystem) String() string {
	if name, ok := systemNames[cs]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether cs is a supported system
func (cs CountingSystem) Valid() bool {
	_, ok := weights[cs]
	return ok
}

// MarshalText encodes the system by name
func (cs CountingSystem) MarshalText() ([]byte, error) {
	if !cs.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSystem, int(cs))
	}
	return []byte(cs.String()), nil
}

// UnmarshalText decodes a system name
func (cs *CountingSystem) UnmarshalText(text []byte) error {
	parsed, err := ParseCountingSystem(string(text))
	if err != nil {
		return err
	}
	*cs = parsed
	return nil
}

// ParseCountingSystem accepts names like "hi-lo", "HiLo", "omega ii" or "hi_opt_2"
func ParseCountingSystem(name string) (CountingSystem, error) {
	key := strings.ToLower(name)
	key = strings.NewReplacer("-", "", "_", "", " ", "", "2", "ii", "1", "i").Replace(key)
	switch key {
	case "hilo":
		return HiLo, nil
	case "ko", "knockout":
		return KO, nil
	case "omegaii":
		return OmegaII, nil
	case "hiopti":
		return HiOptI, nil
	case "hioptii":
		return HiOptII, nil
	}
	return HiLo, fmt.Errorf("%w: %q", ErrUnknownSystem, name)
}
