package legend

// SampleCatalog returns the built-in legend sheets used when no catalog file
// is configured.
func SampleCatalog() *Catalog {
	return &Catalog{Drawings: []*Drawing{
		{
			ID:     "legend-001",
			Name:   "P&ID Valve Legend",
			Width:  800,
			Height: 600,
			Symbols: []RecognizedSymbol{
				{ID: "sym-001", X: 50, Y: 50, Width: 40, Height: 40, Shape: "M0,0 L40,40 M40,0 L0,40", Confidence: 0.95},
				{ID: "sym-002", X: 50, Y: 120, Width: 40, Height: 40, Shape: "M0,0 L40,40 M40,0 L0,40 M20,20 m-8,0 a8,8 0 1,0 16,0 a8,8 0 1,0 -16,0", Confidence: 0.88},
				{ID: "sym-003", X: 50, Y: 190, Width: 40, Height: 40, Shape: "M0,0 L40,40 L40,0 Z", Confidence: 0.92},
			},
			Texts: []RecognizedText{
				{ID: "txt-001", X: 110, Y: 60, Width: 100, Height: 20, Text: "Gate Valve", Confidence: 0.98},
				{ID: "txt-002", X: 110, Y: 130, Width: 100, Height: 20, Text: "Globe Valve", Confidence: 0.96},
				{ID: "txt-003", X: 110, Y: 200, Width: 100, Height: 20, Text: "Check Valve", Confidence: 0.94},
			},
		},
		{
			ID:     "legend-002",
			Name:   "Instrument Legend",
			Width:  1000,
			Height: 700,
			Symbols: []RecognizedSymbol{
				{ID: "sym-101", X: 80, Y: 80, Width: 50, Height: 50, Shape: "M25,0 a25,25 0 1,0 0.1,0", Confidence: 0.91},
				{ID: "sym-102", X: 80, Y: 170, Width: 50, Height: 50, Shape: "M0,0 H50 V50 H0 Z M25,0 a25,25 0 1,0 0.1,0", Confidence: 0.83},
			},
			Texts: []RecognizedText{
				{ID: "txt-101", X: 150, Y: 95, Width: 160, Height: 20, Text: "Field Instrument", Confidence: 0.97},
				{ID: "txt-102", X: 150, Y: 185, Width: 180, Height: 20, Text: "Panel Mounted Instrument", Confidence: 0.89},
			},
		},
	}}
}
