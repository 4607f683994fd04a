package entrain

import "fmt"

// BeatKind discriminates Beat values.
type BeatKind int

// Beat kinds. The zero value is NoBeat.
const (
	NoBeat BeatKind = iota
	Static
	Ramp
)

func (k BeatKind) String() string {
	switch k {
	case Static:
		return "static"
	case Ramp:
		return "ramp"
	}
	return "none"
}

// Beat is the beat of one layer: absent, a constant frequency, or a ramp
// from Start to End. For a static beat End equals Start.
type Beat struct {
	Kind       BeatKind
	Start, End float64
}

// StaticBeat returns a constant beat of f Hz.
func StaticBeat(f float64) Beat { return Beat{Kind: Static, Start: f, End: f} }

// RampBeat returns a beat moving from start to end Hz.
func RampBeat(start, end float64) Beat { return Beat{Kind: Ramp, Start: start, End: end} }

// Mean returns the beat's average frequency, used for harmony checks.
func (b Beat) Mean() float64 { return (b.Start + b.End) / 2 }

// Final returns the frequency the beat settles on.
func (b Beat) Final() float64 { return b.End }

func (b Beat) String() string {
	switch b.Kind {
	case Static:
		return fmt.Sprintf("%.2fHz", b.Start)
	case Ramp:
		return fmt.Sprintf("%.2f->%.2fHz", b.Start, b.End)
	}
	return "none"
}
