package spectral

// BandEnergy sums the PSD values whose bin frequency lies in [low, high],
// both bounds inclusive
func BandEnergy(est *Estimate, low, high float64) float64 {
	if est == nil {
		return 0
	}

	energy := 0.0
	for i, f := range est.Frequencies {
		if f >= low && f <= high {
			energy += est.Power[i]
		}
	}
	return energy
}
