package bms

import (
	"sort"
	"strconv"
	"strings"
)

// Obj is a single decoded object placement: track, exact rational position
// within the track, which channel it was defined on, and which ObjId it
// references. denominator > 0 and 0 < numerator <= denominator always hold;
// comparisons use cross-multiplication rather than a reduced fraction.
type Obj struct {
	Track   uint16
	Num     uint32
	Den     uint32
	Channel Channel
	ObjID   ObjId
}

// BpmEvent is an inline BPM change decoded from channel 03, the hex-literal
// "short form" that carries the new BPM directly in the payload rather than
// referencing a #BPMxx definition (that's channel 08, decoded as an Obj like
// any other reference channel). Per spec.md §4.6 this is a numeric-value
// channel and is routed here instead of into sorted_notes.
type BpmEvent struct {
	Track uint16
	Num   uint32
	Den   uint32
	Bpm   float64
}

func (c Channel) sortRank() int {
	if c.Category == ChannelNote {
		return c.Kind.sortRank()
	}
	return 4 + int(c.Category)
}

// lessObj implements the §4.6 total order: track, then rational position,
// then channel category, then player, then key, then ObjId as the final
// deterministic tie-breaker.
func lessObj(a, b Obj) bool {
	if a.Track != b.Track {
		return a.Track < b.Track
	}
	if lhs, rhs := uint64(a.Num)*uint64(b.Den), uint64(b.Num)*uint64(a.Den); lhs != rhs {
		return lhs < rhs
	}
	if ra, rb := a.Channel.sortRank(), b.Channel.sortRank(); ra != rb {
		return ra < rb
	}
	if a.Channel.IsPlayer1 != b.Channel.IsPlayer1 {
		return a.Channel.IsPlayer1 // player 1 before player 2
	}
	if ra, rb := a.Channel.Key.sortRank(), b.Channel.Key.sortRank(); ra != rb {
		return ra < rb
	}
	return a.ObjID < b.ObjID
}

// notesAssembler decodes positional channel messages into Obj events,
// merging multiple definitions of the same (track, channel) by normalizing
// to a common denominator and unioning non-zero positions.
type notesAssembler struct {
	sink Sink

	groups    map[trackChannelKey][]slotGroup
	order     []trackChannelKey // first-seen order, for deterministic iteration
	sections  map[uint16]float64
	sectOrder []uint16

	bpmGroups map[trackChannelKey][]bpmSlotGroup
	bpmOrder  []trackChannelKey
}

type trackChannelKey struct {
	track uint16
	code  string
}

type slotGroup struct {
	den   uint32
	slots map[uint32]ObjId
	ch    Channel
}

// bpmSlotGroup is slotGroup's counterpart for channel 03: slots hold a raw
// hex byte (the literal BPM value) instead of an ObjId.
type bpmSlotGroup struct {
	den   uint32
	slots map[uint32]uint8
}

func newNotesAssembler(sink Sink) *notesAssembler {
	return &notesAssembler{
		sink:      sink,
		groups:    map[trackChannelKey][]slotGroup{},
		sections:  map[uint16]float64{},
		bpmGroups: map[trackChannelKey][]bpmSlotGroup{},
	}
}

// fold processes one TokMessage token. Structural failures (odd-length
// payload) are fatal per spec.md §7; everything else is recoverable.
func (a *notesAssembler) fold(tok Token) error {
	payload := strings.TrimSpace(tok.Message)

	switch tok.Channel.Category {
	case ChannelSectionLength:
		return a.foldSectionLength(tok.Track, payload)
	case ChannelBPMChangeNum:
		return a.foldBpmChangeNum(tok.Track, tok.Channel, payload)
	}

	if len(payload)%2 != 0 {
		return newParseError(ErrKindInvalidObjectCount, "message payload for track "+strconv.Itoa(int(tok.Track))+" channel "+tok.Channel.Raw+" has odd length")
	}
	n := uint32(len(payload) / 2)
	if n == 0 {
		return nil
	}

	slots := map[uint32]ObjId{}
	for i := uint32(0); i < n; i++ {
		chunk := payload[2*i : 2*i+2]
		id, ok := ParseObjId(chunk)
		if !ok {
			a.sink.Warnf("malformed object slot %q in track %d channel %s, skipping", chunk, tok.Track, tok.Channel.Raw)
			continue
		}
		if id.IsZero() {
			continue
		}
		slots[i+1] = id
	}

	key := trackChannelKey{track: tok.Track, code: tok.Channel.Raw}
	if _, seen := a.groups[key]; !seen {
		a.order = append(a.order, key)
	}
	a.groups[key] = append(a.groups[key], slotGroup{den: n, slots: slots, ch: tok.Channel})
	return nil
}

// foldBpmChangeNum decodes a channel-03 message: two-hex-character slots,
// each a literal BPM value rather than an ObjId reference. "00" slots mean
// no change at that position and are skipped, same as a zero ObjId.
func (a *notesAssembler) foldBpmChangeNum(track uint16, ch Channel, payload string) error {
	if len(payload)%2 != 0 {
		return newParseError(ErrKindInvalidObjectCount, "message payload for track "+strconv.Itoa(int(track))+" channel "+ch.Raw+" has odd length")
	}
	n := uint32(len(payload) / 2)
	if n == 0 {
		return nil
	}

	slots := map[uint32]uint8{}
	for i := uint32(0); i < n; i++ {
		chunk := payload[2*i : 2*i+2]
		if chunk == "00" {
			continue
		}
		v, ok := parseHexByte(chunk)
		if !ok {
			a.sink.Warnf("malformed inline BPM slot %q in track %d channel %s, skipping", chunk, track, ch.Raw)
			continue
		}
		slots[i+1] = v
	}

	key := trackChannelKey{track: track, code: ch.Raw}
	if _, seen := a.bpmGroups[key]; !seen {
		a.bpmOrder = append(a.bpmOrder, key)
	}
	a.bpmGroups[key] = append(a.bpmGroups[key], bpmSlotGroup{den: n, slots: slots})
	return nil
}

func parseHexByte(s string) (uint8, bool) {
	if len(s) != 2 {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, false
	}
	return uint8(v), true
}

func (a *notesAssembler) foldSectionLength(track uint16, payload string) error {
	if payload == "" {
		return nil
	}
	f, err := strconv.ParseFloat(payload, 64)
	if err != nil {
		a.sink.Warnf("malformed section length %q for track %d, ignoring", payload, track)
		return nil
	}
	if _, dup := a.sections[track]; dup {
		a.sink.Warnf("duplicate section length for track %d, overwriting", track)
	} else {
		a.sectOrder = append(a.sectOrder, track)
	}
	a.sections[track] = f
	return nil
}

// finish normalizes every (track, channel) group to a common denominator
// (LCM of the contributing group sizes), unions positions, and returns the
// totally-ordered note list. Section lengths are read via sectionLengths().
func (a *notesAssembler) finish() []Obj {
	var out []Obj

	for _, key := range a.order {
		groups := a.groups[key]

		den := uint32(1)
		for _, g := range groups {
			den = lcm(den, g.den)
		}

		merged := map[uint32]ObjId{}
		var posOrder []uint32
		var ch Channel
		for _, g := range groups {
			scale := den / g.den
			ch = g.ch
			slotIdx := make([]uint32, 0, len(g.slots))
			for idx := range g.slots {
				slotIdx = append(slotIdx, idx)
			}
			sort.Slice(slotIdx, func(i, j int) bool { return slotIdx[i] < slotIdx[j] })
			for _, idx := range slotIdx {
				oid := g.slots[idx]
				pos := idx * scale
				if prev, exists := merged[pos]; exists && prev != oid {
					a.sink.Warnf("conflicting objects at track %d channel %s position %d/%d: %s overwritten by %s",
						key.track, key.code, pos, den, prev, oid)
				}
				if _, exists := merged[pos]; !exists {
					posOrder = append(posOrder, pos)
				}
				merged[pos] = oid
			}
		}

		for _, pos := range posOrder {
			out = append(out, Obj{Track: key.track, Num: pos, Den: den, Channel: ch, ObjID: merged[pos]})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return lessObj(out[i], out[j]) })
	return out
}

func (a *notesAssembler) sectionLengths() map[uint16]float64 {
	return a.sections
}

// inlineBpmChanges merges channel-03 groups the same way finish() merges
// note groups (LCM denominator, union positions, last-write-wins on
// conflict) and returns them ordered by track then position.
func (a *notesAssembler) inlineBpmChanges() []BpmEvent {
	var out []BpmEvent

	for _, key := range a.bpmOrder {
		groups := a.bpmGroups[key]

		den := uint32(1)
		for _, g := range groups {
			den = lcm(den, g.den)
		}

		merged := map[uint32]uint8{}
		var posOrder []uint32
		for _, g := range groups {
			scale := den / g.den
			slotIdx := make([]uint32, 0, len(g.slots))
			for idx := range g.slots {
				slotIdx = append(slotIdx, idx)
			}
			sort.Slice(slotIdx, func(i, j int) bool { return slotIdx[i] < slotIdx[j] })
			for _, idx := range slotIdx {
				v := g.slots[idx]
				pos := idx * scale
				if prev, exists := merged[pos]; exists && prev != v {
					a.sink.Warnf("conflicting inline BPM values at track %d channel %s position %d/%d: %d overwritten by %d",
						key.track, key.code, pos, den, prev, v)
				}
				if _, exists := merged[pos]; !exists {
					posOrder = append(posOrder, pos)
				}
				merged[pos] = v
			}
		}

		for _, pos := range posOrder {
			out = append(out, BpmEvent{Track: key.track, Num: pos, Den: den, Bpm: float64(merged[pos])})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Track != out[j].Track {
			return out[i].Track < out[j].Track
		}
		return uint64(out[i].Num)*uint64(out[j].Den) < uint64(out[j].Num)*uint64(out[i].Den)
	})
	return out
}

func gcd(a, b uint32) uint32 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b uint32) uint32 {
	if a == 0 || b == 0 {
		return a + b
	}
	return a / gcd(a, b) * b
}
