package engine

import (
	"math/rand"
	"time"
)

// Pool deals optional candidate assets (covers, backgrounds) across the jobs
// of a batch. The deck is shuffled, dealt round-robin, and reshuffled when
// exhausted, so every candidate is reused approximately evenly no matter how
// many jobs draw from it.
type Pool struct {
	rnd   *rand.Rand
	items []string
	next  int
}

// NewPool builds a pool over items. A nil source seeds from the clock; tests
// pass a fixed source for reproducible deals.
func NewPool(items []string, rnd *rand.Rand) *Pool {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	p := &Pool{rnd: rnd, items: append([]string(nil), items...)}
	p.shuffle()
	return p
}

func (p *Pool) shuffle() {
	p.rnd.Shuffle(len(p.items), func(i, j int) {
		p.items[i], p.items[j] = p.items[j], p.items[i]
	})
	p.next = 0
}

// Next deals the next candidate. The second return is false only when the
// pool holds no items at all.
func (p *Pool) Next() (string, bool) {
	if len(p.items) == 0 {
		return "", false
	}
	if p.next >= len(p.items) {
		p.shuffle()
	}
	item := p.items[p.next]
	p.next++
	return item, true
}

// Len reports the number of distinct candidates.
func (p *Pool) Len() int { return len(p.items) }
