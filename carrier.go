package mpx

import "math"

// carrier is a phase-continuous table oscillator. The table holds one
// full cycle, so stepping one entry per output sample produces the
// carrier frequency exactly and all carriers built from the same rate
// stay phase locked at sample zero.
type carrier struct {
	table []float64
	pos   int
}

func newCarrier(samplesPerCycle int) *carrier {
	return &carrier{table: sineTable(samplesPerCycle)}
}

// Next returns the next carrier sample.
func (c *carrier) Next() float64 {
	v := c.table[c.pos]
	c.pos++
	if c.pos == len(c.table) {
		c.pos = 0
	}
	return v
}

// sineTable returns one full cycle of a unit sine sampled at n points.
func sineTable(n int) []float64 {
	table := make([]float64, n)
	for i := range table {
		table[i] = math.Sin(2 * math.Pi * float64(i) / float64(n))
	}
	return table
}
