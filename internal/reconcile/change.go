package reconcile

// Direction of the latest price move.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionUp
	DirectionDown
	DirectionFlat
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	case DirectionFlat:
		return "flat"
	default:
		return "none"
	}
}

// Change is the price header state: the current price and its delta from
// the previous observation.
type Change struct {
	Current   float64
	Delta     float64
	Direction Direction
	Known     bool
}

// PriceChange compares the current price with the previous one. A nil
// previous yields DirectionNone; a missing current price yields the zero
// Change, which renders as a neutral header.
func PriceChange(previous *float64, current float64, hasCurrent bool) Change {
	if !hasCurrent {
		return Change{}
	}
	c := Change{Current: current, Known: true}
	if previous == nil {
		return c
	}
	c.Delta = current - *previous
	switch {
	case c.Delta > 0:
		c.Direction = DirectionUp
	case c.Delta < 0:
		c.Direction = DirectionDown
	default:
		c.Direction = DirectionFlat
	}
	return c
}
