package palette

// Counting pairs a palette color with how many studs use it.
type Counting struct {
	Color
	Count int
}

// Counter tallies colors in a table addressed by color id.
type Counter struct {
	table []*Counting
	n     int
	total int
}

// NewCounter returns a Counter sized for ids up to maxID. Larger ids grow the
// table on demand.
func NewCounter(maxID int) *Counter {
	return &Counter{table: make([]*Counting, max(maxID+1, 0))}
}

// Add counts one more stud of c and reports whether c was seen for the first
// time. Negative ids are ignored.
func (k *Counter) Add(c Color) bool {
	if c.ID < 0 {
		return false
	}
	if c.ID >= len(k.table) {
		k.table = append(k.table, make([]*Counting, c.ID+1-len(k.table))...)
	}
	k.total++
	if e := k.table[c.ID]; e != nil {
		e.Count++
		return false
	}
	k.table[c.ID] = &Counting{Color: c, Count: 1}
	k.n++
	return true
}

// Len is the number of distinct colors counted.
func (k *Counter) Len() int { return k.n }

// Total is the number of studs counted.
func (k *Counter) Total() int { return k.total }

// Counts returns the non-zero entries ordered by id.
func (k *Counter) Counts() []Counting {
	out := make([]Counting, 0, k.n)
	for _, e := range k.table {
		if e != nil {
			out = append(out, *e)
		}
	}
	return out
}

// UpdateLegend copies the counts of current into legend by color id. Legend
// entries whose color is absent from current are reset to zero and kept, so
// a legend keeps a stable row order while the selection changes.
func UpdateLegend(legend []Counting, current []Counting) {
	byID := make(map[int]int, len(current))
	for _, c := range current {
		byID[c.ID] = c.Count
	}
	for i := range legend {
		legend[i].Count = byID[legend[i].ID]
	}
}

// Legend returns a zero-count entry for every color of p, in palette order.
func Legend(p Palette) []Counting {
	out := make([]Counting, len(p))
	for i, c := range p {
		out[i] = Counting{Color: c}
	}
	return out
}
