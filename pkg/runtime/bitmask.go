package runtime

import "math/bits"

// SlotsPerWord is the number of slot bits held by one Bitmask word. The top
// bit of every word is reserved so that the all-dirty state can never be
// produced by setting real slots.
const SlotsPerWord = 63

const allWord = ^uint64(0)

// Bitmask is the set of slots changed since the last flush.
//
// Patch functions test slots with a single AND against a mask built once:
//
//	var nameBits = runtime.Mask(slotName)
//
//	func (f *field) Patch(s *runtime.State, dirty runtime.Bitmask) {
//	    if dirty.Any(0, nameBits) {
//	        f.input.SetAttribute("name", s.String(slotName))
//	    }
//	}
type Bitmask []uint64

// Clean returns an empty bitmask sized for n slots.
func Clean(n int) Bitmask {
	return make(Bitmask, wordsFor(n))
}

// All returns a bitmask in the all-dirty state sized for n slots.
func All(n int) Bitmask {
	b := Clean(n)
	b.Fill()
	return b
}

func wordsFor(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + SlotsPerWord - 1) / SlotsPerWord
}

// Bit returns the word index and bit for a slot.
func Bit(slot int) (word int, bit uint64) {
	return slot / SlotsPerWord, 1 << (slot % SlotsPerWord)
}

// Mask returns the bits for slots that live in the same word. It panics if
// the slots span words, since the result could not be tested with one AND.
func Mask(slots ...int) uint64 {
	var m uint64
	word := -1
	for _, s := range slots {
		w, bit := Bit(s)
		if word >= 0 && w != word {
			panic("runtime: Mask slots span more than one word")
		}
		word = w
		m |= bit
	}
	return m
}

// Set marks slot as dirty.
func (b Bitmask) Set(slot int) {
	w, bit := Bit(slot)
	b[w] |= bit
}

// Has reports whether slot is dirty. Every slot is dirty in the all-dirty
// state.
func (b Bitmask) Has(slot int) bool {
	w, bit := Bit(slot)
	return w < len(b) && b[w]&bit != 0
}

// Any reports whether any bit of mask is set in the given word.
func (b Bitmask) Any(word int, mask uint64) bool {
	return word < len(b) && b[word]&mask != 0
}

// IsAll reports whether b is in the all-dirty state.
func (b Bitmask) IsAll() bool {
	if len(b) == 0 {
		return false
	}
	for _, w := range b {
		if w != allWord {
			return false
		}
	}
	return true
}

// IsClean reports whether no slot is dirty.
func (b Bitmask) IsClean() bool {
	for _, w := range b {
		if w != 0 {
			return false
		}
	}
	return true
}

// Count returns the number of dirty slots among the first n.
func (b Bitmask) Count(n int) int {
	if b.IsAll() {
		return n
	}
	total := 0
	for _, w := range b {
		total += bits.OnesCount64(w)
	}
	return total
}

// Slots returns the dirty slot indices below n in ascending order.
func (b Bitmask) Slots(n int) []int {
	var out []int
	for i := 0; i < n; i++ {
		if b.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

// Union sets every bit of other in b.
func (b Bitmask) Union(other Bitmask) {
	for i := 0; i < len(b) && i < len(other); i++ {
		b[i] |= other[i]
	}
}

// Clone returns a copy of b.
func (b Bitmask) Clone() Bitmask {
	out := make(Bitmask, len(b))
	copy(out, b)
	return out
}

// Reset clears every bit.
func (b Bitmask) Reset() {
	for i := range b {
		b[i] = 0
	}
}

// Fill puts b in the all-dirty state.
func (b Bitmask) Fill() {
	for i := range b {
		b[i] = allWord
	}
}
