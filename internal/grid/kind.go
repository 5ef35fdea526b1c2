package grid

import "fmt"

// Kind selects which accumulation array a contribution lands in.
type Kind int

const (
	// Bulk segments cross a frequency bin completely.
	Bulk Kind = iota
	// Birth segments start at the formation frequency.
	Birth
	// Merger segments end the trajectory, at contact or where the
	// available evolution time runs out.
	Merger

	numKinds
)

// Kinds lists every contribution kind in storage order.
var Kinds = [numKinds]Kind{Bulk, Birth, Merger}

func (k Kind) String() string {
	switch k {
	case Bulk:
		return "bulk"
	case Birth:
		return "birth"
	case Merger:
		return "merger"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown contribution kind %q", s)
}
