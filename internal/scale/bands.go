package scale

// Band is one step of a descending step function: inputs at or above
// Threshold (and below the previous band's threshold) map to Value.
type Band struct {
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Value     float64 `json:"value" yaml:"value"`
}

// tolerance absorbs float noise from averaging, so a mean that should be
// exactly 3.7 is not pushed into the band below by 3.6999999999999997.
const tolerance = 1e-9

// Bands is a step function given as bands sorted by Threshold, highest first.
// The last band is the bottom tier and catches every input below it.
type Bands []Band

// Lookup returns the Value of the first band whose Threshold x meets.
// Inputs below every threshold get the bottom tier. Empty Bands yield 0.
func (bs Bands) Lookup(x float64) float64 {
	if len(bs) == 0 {
		return 0
	}
	for _, b := range bs {
		if x >= b.Threshold-tolerance {
			return b.Value
		}
	}
	return bs[len(bs)-1].Value
}

// Sorted reports whether thresholds strictly decrease.
func (bs Bands) Sorted() bool {
	for i := 1; i < len(bs); i++ {
		if bs[i].Threshold >= bs[i-1].Threshold {
			return false
		}
	}
	return true
}

// Monotone reports whether values never increase as thresholds fall.
func (bs Bands) Monotone() bool {
	for i := 1; i < len(bs); i++ {
		if bs[i].Value > bs[i-1].Value {
			return false
		}
	}
	return true
}

func (bs Bands) clone() Bands {
	out := make(Bands, len(bs))
	copy(out, bs)
	return out
}
