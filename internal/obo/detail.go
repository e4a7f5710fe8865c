package obo

import (
	"fmt"
)

// Tier classifies a statement for detail filtering
type Tier int

const (
	// TierCore holds labels, definitions, subclass axioms and deprecation
	TierCore Tier = iota
	// TierDirect holds the simplified triples derived from relationship and intersection_of
	TierDirect
	// TierFragment holds restriction fragments built from blank nodes
	TierFragment
	// TierFull holds everything else
	TierFull
)

func (t Tier) String() string {
	switch t {
	case TierCore:
		return "core"
	case TierDirect:
		return "direct"
	case TierFragment:
		return "fragment"
	default:
		return "full"
	}
}

// Detail is the output verbosity
type Detail int

const (
	DetailMax Detail = iota
	DetailMinPlus
	DetailMin
)

// ParseDetail parses min, min+ or max. The empty string means max.
func ParseDetail(s string) (Detail, error) {
	switch s {
	case "", "max":
		return DetailMax, nil
	case "min+":
		return DetailMinPlus, nil
	case "min":
		return DetailMin, nil
	default:
		return DetailMax, fmt.Errorf("unknown detail level %q (want min, min+ or max)", s)
	}
}

func (d Detail) String() string {
	switch d {
	case DetailMin:
		return "min"
	case DetailMinPlus:
		return "min+"
	default:
		return "max"
	}
}

// Allows reports whether statements of tier t are written at this detail level
func (d Detail) Allows(t Tier) bool {
	switch d {
	case DetailMin:
		return t == TierCore || t == TierDirect
	case DetailMinPlus:
		return t != TierFull
	default:
		return true
	}
}
