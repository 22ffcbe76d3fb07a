package bms

// Bms is the fully assembled chart: header metadata, the totally-ordered
// note/object list, the per-track section-length multipliers, and inline
// BPM changes decoded from channel 03. Every string here is an owned copy;
// a Bms has no remaining reference to the input buffer it was parsed from.
type Bms struct {
	Header           Header
	Notes            []Obj
	SectionLengths   map[uint16]float64
	InlineBpmChanges []BpmEvent
}

// FromTokenStream drives the random interpreter over stream with rng, then
// folds the effective tokens into header and note data. Diagnostics raised
// along the way are discarded; use FromTokenStreamWithSink to capture them.
func FromTokenStream(stream *TokenStream, rng RNG) (*Bms, error) {
	return FromTokenStreamWithSink(stream, rng, NopSink{})
}

// FromTokenStreamWithSink is FromTokenStream with an explicit diagnostics sink.
func FromTokenStreamWithSink(stream *TokenStream, rng RNG, sink Sink) (*Bms, error) {
	effective, err := InterpretRandom(stream, rng, sink)
	if err != nil {
		return nil, err
	}

	hdr := newHeaderAssembler(sink)
	notes := newNotesAssembler(sink)

	for _, tok := range effective.Tokens {
		if tok.Kind == TokMessage {
			if err := notes.fold(tok); err != nil {
				return nil, err
			}
			continue
		}
		hdr.fold(tok)
	}

	b := &Bms{
		Header:           *hdr.h,
		Notes:            notes.finish(),
		SectionLengths:   notes.sectionLengths(),
		InlineBpmChanges: notes.inlineBpmChanges(),
	}
	validateCrossReferences(b, sink)
	return b, nil
}

// ParseBms tokenizes text and assembles it into a Bms in one call, the
// common case for callers that don't need the intermediate TokenStream.
func ParseBms(text string, rng RNG) (*Bms, error) {
	return ParseBmsWithSink(text, rng, NopSink{})
}

// ParseBmsWithSink is ParseBms with an explicit diagnostics sink, shared by
// both the lexing and assembly stages.
func ParseBmsWithSink(text string, rng RNG, sink Sink) (*Bms, error) {
	stream, err := ParseWithSink(text, sink)
	if err != nil {
		return nil, err
	}
	return FromTokenStreamWithSink(stream, rng, sink)
}

// validateCrossReferences emits a diagnostic for every object reference
// that names a WAV/BMP slot with no corresponding definition. This is
// advisory only: spec.md §1 explicitly excludes sample-existence
// validation from the core's responsibilities.
func validateCrossReferences(b *Bms, sink Sink) {
	for _, n := range b.Notes {
		if n.ObjID.IsZero() {
			continue
		}
		switch n.Channel.Category {
		case ChannelNote, ChannelBGM:
			if _, ok := b.Header.Wav[n.ObjID]; !ok {
				sink.Warnf("track %d channel %s references undefined WAV object %s", n.Track, n.Channel.Raw, n.ObjID)
			}
		case ChannelBGABase, ChannelBGAPoor, ChannelBGALayer, ChannelBGALayer2:
			if _, ok := b.Header.Bmp[n.ObjID]; !ok {
				sink.Warnf("track %d channel %s references undefined BMP object %s", n.Track, n.Channel.Raw, n.ObjID)
			}
		case ChannelBPMChange:
			if _, ok := b.Header.BpmChanges[n.ObjID]; !ok {
				sink.Warnf("track %d channel %s references undefined #BPM object %s", n.Track, n.Channel.Raw, n.ObjID)
			}
		case ChannelStop:
			if _, ok := b.Header.Stops[n.ObjID]; !ok {
				sink.Warnf("track %d channel %s references undefined #STOP object %s", n.Track, n.Channel.Raw, n.ObjID)
			}
		}
	}
}
