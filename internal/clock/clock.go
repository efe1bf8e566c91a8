package clock

import "time"

// Layout is the 24-hour hours:minutes layout shown on the overlay.
const Layout = "15:04"

// Clock provides time to the ticker.
// Tests substitute a fixed implementation.
type Clock interface {
	Now() time.Time
}

// Real uses the system clock.
var Real Clock = realClock{}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Fixed always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// Format renders t in local time as HH:MM.
func Format(t time.Time) string {
	return t.Local().Format(Layout)
}
