package player

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSpeedIndex = errors.New("invalid speed index")
	ErrInvalidPresets    = errors.New("invalid speed presets")
)

// DefaultPresets are the steps-per-second options offered by the speed slider.
var DefaultPresets = Presets{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000, 10000, 20000}

// Presets is an ordered, read-only table of playback rates in steps per second.
// It may be shared by any number of controllers.
type Presets []int

// NewPresets validates and copies a table of rates. Rates must be positive and strictly
// increasing.
func NewPresets(rates ...int) (Presets, error) {
	if len(rates) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPresets)
	}
	for i, r := range rates {
		if r <= 0 {
			return nil, fmt.Errorf("%w: rate %d at %d is not positive", ErrInvalidPresets, r, i)
		}
		if i > 0 && r <= rates[i-1] {
			return nil, fmt.Errorf("%w: rate %d at %d is not increasing", ErrInvalidPresets, r, i)
		}
	}
	return append(Presets(nil), rates...), nil
}

// Rate returns the steps per second at index.
func (p Presets) Rate(index int) (int, error) {
	if index < 0 || index >= len(p) {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidSpeedIndex, index, len(p))
	}
	return p[index], nil
}

// Labels returns slider labels, abbreviating thousands ("1K", "20K").
func (p Presets) Labels() []string {
	labels := make([]string, len(p))
	for i, r := range p {
		if r >= 1000 && r%1000 == 0 {
			labels[i] = fmt.Sprintf("%dK", r/1000)
		} else {
			labels[i] = fmt.Sprint(r)
		}
	}
	return labels
}
