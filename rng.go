package bms

import "fmt"

// RNG is the only abstraction the random interpreter depends on: drawing a
// value in 1..=max for each executed #RANDOM. Swapping the implementation
// for a deterministic mock must reproduce byte-identical Bms output.
type RNG interface {
	Gen(max uint32) uint32
}

// RngMock replays a fixed sequence of draws, for deterministic tests. Once
// the sequence is exhausted it wraps around and starts again from the
// beginning, so a short list (even a single element) can still drive a
// chart whose active region reaches more #RANDOM sites than the list has
// entries — the list only needs to cover the distinct draws that matter,
// not every draw actually taken.
type RngMock struct {
	seq []uint32
	pos int
}

// NewRngMock builds an RngMock that yields each element of seq in order,
// cycling back to the start once exhausted. seq must be non-empty.
func NewRngMock(seq ...uint32) *RngMock {
	if len(seq) == 0 {
		panic("bms: NewRngMock requires at least one value")
	}
	return &RngMock{seq: seq}
}

func (m *RngMock) Gen(max uint32) uint32 {
	v := m.seq[m.pos%len(m.seq)]
	m.pos++
	if v < 1 || v > max {
		panic(fmt.Sprintf("bms: RngMock draw %d out of range 1..%d", v, max))
	}
	return v
}

// Consumed reports how many draws have been taken from the mock so far.
func (m *RngMock) Consumed() int { return m.pos }
