package score

import "fmt"

// Ordering is the result of comparing two score pairs.
type Ordering int

const (
	Incomparable Ordering = iota
	Less
	Equal
	Greater
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "less"
	case Equal:
		return "equal"
	case Greater:
		return "greater"
	default:
		return "incomparable"
	}
}

// Scores is a two-team score. Ordered scores know which value belongs to
// which side; unordered scores only know the two values.
type Scores struct {
	Values  [2]int
	Ordered bool
}

func New(first, second int, ordered bool) Scores {
	return Scores{Values: [2]int{first, second}, Ordered: ordered}
}

func (s Scores) String() string {
	if s.Ordered {
		return fmt.Sprintf("%d-%d", s.Values[0], s.Values[1])
	}
	return fmt.Sprintf("%d-%d (unordered)", s.Values[0], s.Values[1])
}

// Compare is a partial order. Pairs where one side is ahead on one value and
// behind on the other are Incomparable.
func Compare(a, b Scores) Ordering {
	left, right := a.Values, b.Values
	if !a.Ordered || !b.Ordered {
		left = sortPair(left)
		right = sortPair(right)
	}

	switch {
	case left == right:
		return Equal
	case left[0] >= right[0] && left[1] >= right[1]:
		return Greater
	case left[0] <= right[0] && left[1] <= right[1]:
		return Less
	default:
		return Incomparable
	}
}

func (s Scores) GreaterOrEqual(other Scores) bool {
	o := Compare(s, other)
	return o == Greater || o == Equal
}

func (s Scores) LessOrEqual(other Scores) bool {
	o := Compare(s, other)
	return o == Less || o == Equal
}

func (s Scores) Greater(other Scores) bool {
	return Compare(s, other) == Greater
}

func sortPair(v [2]int) [2]int {
	if v[0] > v[1] {
		return [2]int{v[1], v[0]}
	}
	return v
}
