package arrow

import (
	"fmt"
	"strings"
)

// Arrow is one of the directional icons shown during a dance round.
// Its ordinal indexes per-class collections.
type Arrow int

const (
	Up Arrow = iota
	Down
	Left
	Right
)

// Count is the number of arrow classes
const Count = 4

// All returns every arrow in declaration order
func All() []Arrow {
	return []Arrow{Up, Down, Left, Right}
}

// String returns the asset file stem for the arrow
func (a Arrow) String() string {
	switch a {
	case Up:
		return "Up"
	case Down:
		return "Down"
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
		return fmt.Sprintf("Arrow(%d)", int(a))
	}
}

// Key returns the keyboard identifier pressed for this arrow
func (a Arrow) Key() string {
	return strings.ToLower(a.String())
}

// Valid reports whether a is one of the declared arrows
func (a Arrow) Valid() bool {
	return a >= Up && a <= Right
}

// Parse converts a name ("up", "Up", "UP") to an Arrow
func Parse(name string) (Arrow, error) {
	for _, a := range All() {
		if strings.EqualFold(a.String(), strings.TrimSpace(name)) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown arrow %q", name)
}

// Join renders a move list as "Up,Left,Right"
func Join(moves []Arrow) string {
	names := make([]string, len(moves))
	for i, m := range moves {
		names[i] = m.String()
	}
	return strings.Join(names, ",")
}
