// Package freq counts string occurrences and ranks them deterministically.
package freq

import (
	pq "github.com/emirpasic/gods/queues/priorityqueue"
)

// Entry is a key and its count.
type Entry struct {
	Key   string
	Count int
}

// Dist is a frequency distribution that remembers the order in which keys
// were first seen.
type Dist struct {
	counts map[string]int
	keys   []string
	total  int
}

func New() *Dist {
	return &Dist{counts: make(map[string]int)}
}

// Add counts one occurrence of key.
func (d *Dist) Add(key string) {
	d.AddN(key, 1)
}

// AddN counts n occurrences of key.
func (d *Dist) AddN(key string, n int) {
	if _, ok := d.counts[key]; !ok {
		d.keys = append(d.keys, key)
	}

	d.counts[key] += n
	d.total += n
}

func (d *Dist) Count(key string) int {
	return d.counts[key]
}

// Len returns the number of distinct keys.
func (d *Dist) Len() int {
	return len(d.keys)
}

// Total returns the sum of all counts.
func (d *Dist) Total() int {
	return d.total
}

type ranked struct {
	Entry
	seen int
}

// MostCommon returns up to n entries ordered by count, highest first. Ties
// are broken by first-seen order. n <= 0 returns every entry.
func (d *Dist) MostCommon(n int) []Entry {
	if n <= 0 || n > len(d.keys) {
		n = len(d.keys)
	}

	q := pq.NewWith(func(a, b any) int {
		ra, rb := a.(ranked), b.(ranked)
		switch {
		case ra.Count > rb.Count:
			return -1
		case ra.Count < rb.Count:
			return 1
		case ra.seen < rb.seen:
			return -1
		case ra.seen > rb.seen:
			return 1
		}
		return 0
	})

	for i, k := range d.keys {
		q.Enqueue(ranked{Entry: Entry{Key: k, Count: d.counts[k]}, seen: i})
	}

	entries := make([]Entry, 0, n)
	for range n {
		v, ok := q.Dequeue()
		if !ok {
			break
		}
		entries = append(entries, v.(ranked).Entry)
	}

	return entries
}
