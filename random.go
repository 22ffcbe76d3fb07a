package bms

// randomFrame is one entry of the random-interpreter's frame stack,
// holding the value picked by the enclosing #RANDOM/#SETRANDOM and the
// state of whichever #IF/#ELSEIF/#ELSE chain is currently open at this
// nesting level. Chains are flat: only one can be open per frame at a time.
type randomFrame struct {
	value int

	chainOpen  bool
	matched    bool
	selfActive bool

	// dead is frozen at push time: true if this frame's entire body sits
	// inside an already-unselected branch of an ancestor frame. Drawing
	// from the RNG never happens for a #RANDOM pushed while dead.
	dead bool
}

// InterpretRandom walks the raw token sequence produced by the lexer and
// returns the effective subsequence: control-flow tokens removed, tokens
// from non-selected branches elided. rng supplies the draw for each
// #RANDOM executed in an active (non-skipped) region; #RANDOM tokens
// inside a skipped region never call rng.
func InterpretRandom(stream *TokenStream, rng RNG, sink Sink) (*TokenStream, error) {
	ip := &interpreter{rng: rng, sink: sink, out: &TokenStream{}}
	ip.stack = []randomFrame{{value: 1, selfActive: true}} // implicit root frame

	for _, tok := range stream.Tokens {
		if err := ip.step(tok); err != nil {
			return nil, err
		}
	}
	return ip.out, nil
}

type interpreter struct {
	rng   RNG
	sink  Sink
	stack []randomFrame
	out   *TokenStream
}

func (ip *interpreter) top() *randomFrame { return &ip.stack[len(ip.stack)-1] }

// active reports whether tokens right now should be emitted/executed.
func (ip *interpreter) active() bool {
	f := ip.top()
	return !f.dead && f.selfActive
}

func (ip *interpreter) step(tok Token) error {
	switch tok.Kind {
	case TokRandom:
		wasActive := ip.active()
		var v int
		if wasActive {
			v = int(ip.rng.Gen(uint32(tok.Int)))
		}
		ip.stack = append(ip.stack, randomFrame{value: v, selfActive: true, dead: !wasActive})
		return nil

	case TokSetRandom:
		wasActive := ip.active()
		ip.stack = append(ip.stack, randomFrame{value: tok.Int, selfActive: true, dead: !wasActive})
		return nil

	case TokEndRandom:
		if len(ip.stack) <= 1 {
			ip.sink.Warnf("unmatched #ENDRANDOM at %s, ignoring", tok.Pos)
			return nil
		}
		ip.stack = ip.stack[:len(ip.stack)-1]
		return nil

	case TokIf:
		f := ip.top()
		if f.chainOpen {
			ip.sink.Warnf("#IF at %s without preceding #ENDIF, restarting chain", tok.Pos)
		}
		f.chainOpen = true
		f.matched = false
		f.selfActive = tok.Int == f.value
		if f.selfActive {
			f.matched = true
		}
		return nil

	case TokElseIf:
		f := ip.top()
		if !f.chainOpen {
			ip.sink.Warnf("#ELSEIF at %s without preceding #IF, ignoring", tok.Pos)
			return nil
		}
		f.selfActive = !f.matched && tok.Int == f.value
		if f.selfActive {
			f.matched = true
		}
		return nil

	case TokElse:
		f := ip.top()
		if !f.chainOpen {
			ip.sink.Warnf("#ELSE at %s without preceding #IF, ignoring", tok.Pos)
			return nil
		}
		f.selfActive = !f.matched
		if f.selfActive {
			f.matched = true
		}
		return nil

	case TokEndIf:
		f := ip.top()
		if !f.chainOpen {
			ip.sink.Warnf("unmatched #ENDIF at %s, ignoring", tok.Pos)
			return nil
		}
		f.chainOpen = false
		f.matched = false
		f.selfActive = true
		return nil

	default:
		if ip.active() {
			ip.out.push(tok)
		}
		return nil
	}
}
