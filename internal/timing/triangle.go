package timing

// Direction is the stepping direction of a Triangle.
type Direction int

const (
	Rising Direction = iota
	Falling
)

func (d Direction) String() string {
	if d == Falling {
		return "falling"
	}
	return "rising"
}

// Triangle produces an integer triangle wave that bounces between two
// bounds, one unit per step.
//
// The sequence starts at the first bound given to NewTriangle. When the
// bounds are given in descending order the wave starts at the upper bound
// and falls first; the bounce points are the same either way.
type Triangle struct {
	low     int
	high    int
	current int
	dir     Direction
}

// NewTriangle creates a Triangle starting at start and bouncing between
// start and end. It returns ErrEqualBounds if start == end.
func NewTriangle(start, end int) (*Triangle, error) {
	if start == end {
		return nil, ErrEqualBounds
	}
	t := &Triangle{low: start, high: end, current: start, dir: Rising}
	if start > end {
		t.low, t.high = end, start
		t.dir = Falling
	}
	return t, nil
}

// Next returns the current value and advances the wave by one step.
func (t *Triangle) Next() int {
	v := t.current
	if t.current == t.high {
		t.dir = Falling
	}
	if t.current == t.low {
		t.dir = Rising
	}
	if t.dir == Rising {
		t.current++
	} else {
		t.current--
	}
	return v
}

// Low returns the lower bound.
func (t *Triangle) Low() int { return t.low }

// High returns the upper bound.
func (t *Triangle) High() int { return t.high }

// Direction returns the direction of the next step.
func (t *Triangle) Direction() Direction { return t.dir }
