package tournament

import (
	"sync"
)

// Pool runs functions on at most a fixed number of goroutines at a time.
type Pool struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

// NewPool returns a pool running at most n functions concurrently. With
// n <= 1, Go runs each function to completion before returning.
func NewPool(n int) *Pool {
	if n < 1 {
		n = 1
	}

	return &Pool{sem: make(chan struct{}, n)}
}

// Go runs f, blocking while the pool is full.
func (p *Pool) Go(f func()) {
	if cap(p.sem) == 1 {
		f()
		return
	}

	p.sem <- struct{}{}
	p.wg.Add(1)
	go func() {
		defer func() {
			<-p.sem
			p.wg.Done()
		}()

		f()
	}()
}

// Wait blocks until every function passed to Go has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}
