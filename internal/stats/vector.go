package stats

import "math"

// VectorStats evaluates the same kind set over each axis of a
// 3-component stream plus the stream of Euclidean magnitudes, so an
// anisotropic error shows up per axis while the magnitude bundle gives a
// single scalar for threshold checks.
type VectorStats struct {
	x, y, z *SignalStats
	mag     *SignalStats
}

// NewVectorStats builds four bundles sharing one kind set.
func NewVectorStats(kinds ...Kind) (*VectorStats, error) {
	v := &VectorStats{}
	for _, dst := range []**SignalStats{&v.x, &v.y, &v.z, &v.mag} {
		s, err := NewSignalStats(kinds...)
		if err != nil {
			return nil, err
		}
		*dst = s
	}
	return v, nil
}

// InsertData feeds the components into the axis bundles and their
// Euclidean norm into the magnitude bundle.
func (v *VectorStats) InsertData(x, y, z float64) {
	v.x.InsertData(x)
	v.y.InsertData(y)
	v.z.InsertData(z)
	v.mag.InsertData(math.Sqrt(x*x + y*y + z*z))
}

func (v *VectorStats) X() *SignalStats   { return v.x }
func (v *VectorStats) Y() *SignalStats   { return v.y }
func (v *VectorStats) Z() *SignalStats   { return v.z }
func (v *VectorStats) Mag() *SignalStats { return v.mag }

// Count reports how many vectors have been inserted.
func (v *VectorStats) Count() uint64 { return v.mag.Count() }

// Reset clears all four bundles.
func (v *VectorStats) Reset() {
	v.x.Reset()
	v.y.Reset()
	v.z.Reset()
	v.mag.Reset()
}
