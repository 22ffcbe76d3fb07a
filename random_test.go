package bms

import "testing"

func effectiveKinds(t *testing.T, text string, rng RNG) []TokenKind {
	t.Helper()
	stream, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	out, err := InterpretRandom(stream, rng, NopSink{})
	if err != nil {
		t.Fatalf("InterpretRandom error: %v", err)
	}
	kinds := make([]TokenKind, len(out.Tokens))
	for i, tok := range out.Tokens {
		kinds[i] = tok.Kind
	}
	return kinds
}

func TestInterpretRandomSelectsMatchingBranch(t *testing.T) {
	text := "#RANDOM 2\n#IF 1\n#TITLE branch one\n#ELSEIF 2\n#TITLE branch two\n#ENDIF\n#ENDRANDOM\n"

	kinds := effectiveKinds(t, text, NewRngMock(1))
	if len(kinds) != 1 || kinds[0] != TokTitle {
		t.Fatalf("rng=1: got %v, want [TokTitle]", kinds)
	}

	kinds = effectiveKinds(t, text, NewRngMock(2))
	if len(kinds) != 1 || kinds[0] != TokTitle {
		t.Fatalf("rng=2: got %v, want [TokTitle]", kinds)
	}
}

func TestInterpretRandomElseBranch(t *testing.T) {
	text := "#RANDOM 2\n#IF 1\n#TITLE one\n#ELSE\n#TITLE other\n#ENDIF\n#ENDRANDOM\n"
	stream, _ := Parse(text)
	out, err := InterpretRandom(stream, NewRngMock(2), NopSink{})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Tokens) != 1 || out.Tokens[0].Str != "other" {
		t.Fatalf("got %+v", out.Tokens)
	}
}

func TestInterpretRandomDeadBranchNeverDraws(t *testing.T) {
	text := "#RANDOM 2\n#IF 2\n#RANDOM 4\n#IF 1\n#TITLE inner\n#ENDIF\n#ENDRANDOM\n#ENDIF\n#ENDRANDOM\n"
	stream, _ := Parse(text)
	// A single-value mock suffices: the outer #RANDOM draws 1 (never matches
	// #IF 2), so the nested #RANDOM sits in a dead branch and never draws.
	out, err := InterpretRandom(stream, NewRngMock(1), NopSink{})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Tokens) != 0 {
		t.Fatalf("expected no emitted tokens, got %+v", out.Tokens)
	}
}

func TestInterpretRandomUnmatchedEndRandomWarns(t *testing.T) {
	c := NewCollector()
	stream, _ := Parse("#ENDRANDOM\n#TITLE ok\n")
	out, err := InterpretRandom(stream, NewRngMock(1), c)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Tokens) != 1 || out.Tokens[0].Kind != TokTitle {
		t.Fatalf("got %+v", out.Tokens)
	}
	if len(c.Messages) == 0 {
		t.Error("expected a warning for the unmatched #ENDRANDOM")
	}
}

func TestInterpretRandomSetRandomNeverDraws(t *testing.T) {
	// NewRngMock(99) would panic if Gen were ever called with this frame's
	// max, since 99 is never a valid branch draw here; #SETRANDOM must not
	// touch the RNG at all.
	text := "#SETRANDOM 1\n#IF 1\n#TITLE picked\n#ENDIF\n#ENDRANDOM\n"
	stream, _ := Parse(text)
	out, err := InterpretRandom(stream, NewRngMock(99), NopSink{})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Tokens) != 1 || out.Tokens[0].Str != "picked" {
		t.Fatalf("got %+v", out.Tokens)
	}
}
