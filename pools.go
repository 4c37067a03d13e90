package efr

// floatSlicePool recycles the per-information-set value slices of repeated
// walks. A nil pool allocates fresh slices.
type floatSlicePool struct {
	pool [][]float64
}

func (p *floatSlicePool) alloc(n int) []float64 {
	if p == nil {
		return make([]float64, n)
	}

	if len(p.pool) > 0 {
		m := len(p.pool)
		next := p.pool[m-1]
		p.pool = p.pool[:m-1]
		return append(next, make([]float64, n)...)
	}

	return make([]float64, n)
}

func (p *floatSlicePool) free(s []float64) {
	if p != nil && cap(s) > 0 {
		p.pool = append(p.pool, s[:0])
	}
}

type keyIntMapPool struct {
	pool []map[string]int
}

func (p *keyIntMapPool) alloc() map[string]int {
	if len(p.pool) > 0 {
		m := len(p.pool)
		next := p.pool[m-1]
		p.pool = p.pool[:m-1]
		return next
	}

	return make(map[string]int)
}

func (p *keyIntMapPool) free(m map[string]int) {
	for k := range m {
		delete(m, k)
	}

	p.pool = append(p.pool, m)
}
