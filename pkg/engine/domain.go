// Package engine provides the propagation core of a finite-domain
// constraint solver.
//
// This file defines Domain, the immutable set of integers a variable may
// still take. Domains are bitsets anchored at an arbitrary base value, so
// negative and offset ranges cost the same as 1..n.
package engine

import (
	"fmt"
	"math/bits"
	"strings"
)

// Domain is an immutable finite set of integers.
//
// All operations return new domains; the receiver is never modified. This
// lets the trail keep the previous domain of a variable by reference and
// restore it on backtrack without copying.
//
// The zero Domain is empty.
type Domain struct {
	base  int      // value represented by bit 0 of words[0]
	words []uint64 // bit i set means base+i is in the domain
	count int
}

// MaxDomainWidth bounds hi-lo+1 of any domain, since a domain is a dense
// bitset over that range.
const MaxDomainWidth = 1 << 24

// ValidateSpan reports whether {lo..hi} fits in a domain. The width is
// computed without overflow, so extreme ints are rejected rather than
// wrapped.
func ValidateSpan(lo, hi int) error {
	if lo > hi {
		return fmt.Errorf("span %d..%d is empty: %w", lo, hi, ErrInvalidDomain)
	}
	if _, ok := spanWidth(lo, hi); !ok {
		return fmt.Errorf("span %d..%d is wider than %d values: %w", lo, hi, MaxDomainWidth, ErrInvalidDomain)
	}
	return nil
}

// spanWidth returns hi-lo+1 for lo <= hi, or false when it exceeds
// MaxDomainWidth.
func spanWidth(lo, hi int) (int, bool) {
	w := uint64(hi) - uint64(lo)
	if w >= MaxDomainWidth {
		return 0, false
	}
	return int(w) + 1, true
}

func mustSpanWidth(lo, hi int) int {
	n, ok := spanWidth(lo, hi)
	if !ok {
		panic(ValidateSpan(lo, hi))
	}
	return n
}

// NewIntervalDomain returns the domain {lo..hi}. It is empty when lo > hi.
// It panics when the interval is wider than MaxDomainWidth; use
// ValidateSpan to check untrusted bounds first.
func NewIntervalDomain(lo, hi int) Domain {
	if lo > hi {
		return Domain{}
	}
	n := mustSpanWidth(lo, hi)
	d := Domain{base: lo, words: make([]uint64, (n+63)/64), count: n}
	for i := 0; i < n/64; i++ {
		d.words[i] = ^uint64(0)
	}
	if rem := n % 64; rem != 0 {
		d.words[n/64] = (uint64(1) << uint(rem)) - 1
	}
	return d
}

// NewDomainFromValues returns the domain containing exactly the given values.
// Duplicates are ignored. Like NewIntervalDomain it panics when the values
// span more than MaxDomainWidth.
func NewDomainFromValues(values ...int) Domain {
	if len(values) == 0 {
		return Domain{}
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	n := mustSpanWidth(lo, hi)
	d := Domain{base: lo, words: make([]uint64, (n+63)/64)}
	for _, v := range values {
		i := v - lo
		mask := uint64(1) << uint(i%64)
		if d.words[i/64]&mask == 0 {
			d.words[i/64] |= mask
			d.count++
		}
	}
	return d
}

// Count returns the number of values in the domain.
func (d Domain) Count() int { return d.count }

// IsEmpty reports whether the domain has no values left.
func (d Domain) IsEmpty() bool { return d.count == 0 }

// IsSingleton reports whether the domain holds exactly one value.
func (d Domain) IsSingleton() bool { return d.count == 1 }

// Has reports whether v is in the domain.
func (d Domain) Has(v int) bool {
	i := v - d.base
	if d.count == 0 || i < 0 || i >= len(d.words)*64 {
		return false
	}
	return d.words[i/64]&(uint64(1)<<uint(i%64)) != 0
}

// Min returns the smallest value. Returns 0 for an empty domain.
func (d Domain) Min() int {
	for i, w := range d.words {
		if w != 0 {
			return d.base + i*64 + bits.TrailingZeros64(w)
		}
	}
	return 0
}

// Max returns the largest value. Returns 0 for an empty domain.
func (d Domain) Max() int {
	for i := len(d.words) - 1; i >= 0; i-- {
		if w := d.words[i]; w != 0 {
			return d.base + i*64 + 63 - bits.LeadingZeros64(w)
		}
	}
	return 0
}

// SingletonValue returns the only value of a singleton domain.
// The second result is false when the domain is not a singleton.
func (d Domain) SingletonValue() (int, bool) {
	if d.count != 1 {
		return 0, false
	}
	return d.Min(), true
}

// IterateValues calls f for each value in ascending order.
func (d Domain) IterateValues(f func(v int)) {
	for i, w := range d.words {
		for w != 0 {
			off := bits.TrailingZeros64(w)
			f(d.base + i*64 + off)
			w &= w - 1
		}
	}
}

// Values returns the values of the domain in ascending order.
func (d Domain) Values() []int {
	values := make([]int, 0, d.count)
	d.IterateValues(func(v int) { values = append(values, v) })
	return values
}

// Remove returns the domain without v.
func (d Domain) Remove(v int) Domain {
	if !d.Has(v) {
		return d
	}
	nd := d.clone()
	i := v - d.base
	nd.words[i/64] &^= uint64(1) << uint(i%64)
	nd.count--
	return nd
}

// RemoveBelow returns the domain without values < threshold.
func (d Domain) RemoveBelow(threshold int) Domain {
	if d.count == 0 || threshold <= d.Min() {
		return d
	}
	return d.filter(func(v int) bool { return v >= threshold })
}

// RemoveAbove returns the domain without values > threshold.
func (d Domain) RemoveAbove(threshold int) Domain {
	if d.count == 0 || threshold >= d.Max() {
		return d
	}
	return d.filter(func(v int) bool { return v <= threshold })
}

// Intersect returns the values present in both domains.
func (d Domain) Intersect(other Domain) Domain {
	return d.filter(other.Has)
}

// Shift returns the domain with offset added to every value.
func (d Domain) Shift(offset int) Domain {
	if offset == 0 || d.count == 0 {
		return d
	}
	nd := d.clone()
	nd.base += offset
	return nd
}

// Equal reports whether both domains hold the same values.
func (d Domain) Equal(other Domain) bool {
	if d.count != other.count {
		return false
	}
	equal := true
	d.IterateValues(func(v int) {
		if equal && !other.Has(v) {
			equal = false
		}
	})
	return equal
}

// String renders the domain as {}, {v}, {lo..hi} or {a,b,c}.
func (d Domain) String() string {
	switch d.count {
	case 0:
		return "{}"
	case 1:
		return fmt.Sprintf("{%d}", d.Min())
	}
	lo, hi := d.Min(), d.Max()
	if hi-lo+1 == d.count {
		return fmt.Sprintf("{%d..%d}", lo, hi)
	}

	var b strings.Builder
	b.WriteString("{")
	i := 0
	d.IterateValues(func(v int) {
		switch {
		case i < 20:
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, "%d", v)
		case i == 20:
			fmt.Fprintf(&b, ",...+%d more", d.count-20)
		}
		i++
	})
	b.WriteString("}")
	return b.String()
}

func (d Domain) clone() Domain {
	words := make([]uint64, len(d.words))
	copy(words, d.words)
	return Domain{base: d.base, words: words, count: d.count}
}

// filter returns the sub-domain of values satisfying keep, re-anchored at
// its new minimum so long-lived domains shrink as they are pruned.
func (d Domain) filter(keep func(v int) bool) Domain {
	kept := make([]int, 0, d.count)
	d.IterateValues(func(v int) {
		if keep(v) {
			kept = append(kept, v)
		}
	})
	if len(kept) == d.count {
		return d
	}
	return NewDomainFromValues(kept...)
}
