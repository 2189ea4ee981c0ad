package legend

import (
	"gonum.org/v1/gonum/stat"
)

// ConfidenceSummary describes the recognition confidence of one region kind.
type ConfidenceSummary struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
}

// ConfidenceStats summarizes symbol and text confidence for the drawing.
func (d *Drawing) ConfidenceStats() (symbols, texts ConfidenceSummary) {
	sc := make([]float64, len(d.Symbols))
	for i, s := range d.Symbols {
		sc[i] = s.Confidence
	}
	tc := make([]float64, len(d.Texts))
	for i, t := range d.Texts {
		tc[i] = t.Confidence
	}
	return summarize(sc), summarize(tc)
}

func summarize(values []float64) ConfidenceSummary {
	if len(values) == 0 {
		return ConfidenceSummary{}
	}
	sum := ConfidenceSummary{Count: len(values), Min: values[0]}
	for _, v := range values[1:] {
		if v < sum.Min {
			sum.Min = v
		}
	}
	if len(values) == 1 {
		sum.Mean = values[0]
		return sum
	}
	sum.Mean, sum.StdDev = stat.MeanStdDev(values, nil)
	return sum
}
