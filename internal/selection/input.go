package selection

import "math"

type Direction int

const (
	None Direction = iota
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "none"
	}
}

// ParseDirection accepts left/right and the decision names skip/accept.
func ParseDirection(s string) Direction {
	switch s {
	case "right", "accept":
		return Right
	case "left", "skip":
		return Left
	default:
		return None
	}
}

// KeyDirection maps keyboard keys: right arrow, Enter and space accept;
// left arrow and Escape skip.
func KeyDirection(key string) Direction {
	switch key {
	case "ArrowRight", "Enter", " ", "Space":
		return Right
	case "ArrowLeft", "Escape":
		return Left
	default:
		return None
	}
}

// Gesture tracks one horizontal drag. Moving only changes the offset; the
// direction is decided at release.
type Gesture struct {
	threshold float64
	start     float64
	offset    float64
	active    bool
	moved     bool
}

func NewGesture(threshold float64) Gesture {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Gesture{threshold: threshold}
}

func (g *Gesture) Begin(x float64) {
	g.start = x
	g.offset = 0
	g.active = true
	g.moved = false
}

func (g *Gesture) Move(x float64) float64 {
	if !g.active {
		return 0
	}
	g.offset = x - g.start
	g.moved = true
	return g.offset
}

// Release ends the drag. A displacement strictly greater than the threshold
// commits: positive is Right, negative is Left. Anything shorter snaps the
// offset back and returns None.
func (g *Gesture) Release() Direction {
	if !g.active {
		return None
	}
	dx := g.offset
	moved := g.moved
	g.Cancel()
	if !moved || math.Abs(dx) <= g.threshold {
		return None
	}
	if dx > 0 {
		return Right
	}
	return Left
}

func (g *Gesture) Cancel() {
	g.active = false
	g.moved = false
	g.offset = 0
}

func (g *Gesture) Offset() float64 { return g.offset }

func (g *Gesture) Active() bool { return g.active }
