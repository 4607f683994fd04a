package intent

// GoldenRatio is φ.
const GoldenRatio = 1.618033988749895

// SchumannResonances are the first eight Earth-ionosphere cavity modes in Hz.
var SchumannResonances = [...]float64{7.83, 14.3, 20.8, 27.3, 33.8, 39.3, 45.9, 52.8}

// SolfeggioFrequencies are the nine Solfeggio tones in Hz.
var SolfeggioFrequencies = [...]float64{174, 285, 396, 417, 528, 639, 741, 852, 963}

// IntegrationTone is the frequency of the closing integration layer.
const IntegrationTone = 528.0
