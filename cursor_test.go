package bms

import "testing"

func TestCursorNextToken(t *testing.T) {
	c := NewCursor("  #TITLE  foo bar\n#ARTIST baz")
	tok, ok := c.nextToken()
	if !ok || tok != "#TITLE" {
		t.Fatalf("got %q, %v, want #TITLE, true", tok, ok)
	}
	if pos := c.pos(); pos.Line != 1 {
		t.Errorf("line = %d, want 1", pos.Line)
	}
}

func TestCursorNextLineRemaining(t *testing.T) {
	c := NewCursor("#TITLE  my song title  \r\n#ARTIST someone")
	tok, _ := c.nextToken()
	if tok != "#TITLE" {
		t.Fatalf("got %q", tok)
	}
	rest := c.nextLineRemaining()
	if rest != "my song title  " {
		t.Errorf("got %q", rest)
	}
	tok2, ok := c.nextToken()
	if !ok || tok2 != "#ARTIST" {
		t.Errorf("got %q, %v", tok2, ok)
	}
}

func TestCursorTracksLineAndColumn(t *testing.T) {
	c := NewCursor("#A\n#BB")
	c.nextToken()
	pos := c.tokenPos()
	if pos.Line != 2 || pos.Col != 1 {
		t.Errorf("got %+v, want line 2 col 1", pos)
	}
}

// TestCursorUnicodeColumnCounting reproduces original_source/src/lex/
// cursor.rs's test2 fixture verbatim (spec.md §8 testable property 7:
// column counting is by rune, not by byte).
func TestCursorUnicodeColumnCounting(t *testing.T) {
	c := NewCursor("#TITLE 花たちに希望を [SP ANOTHER]\n#ARTIST Sound piercer feat.DAZBEE\n#BPM 187")

	tok, ok := c.nextToken()
	if !ok || tok != "#TITLE" {
		t.Fatalf("got %q, %v, want #TITLE, true", tok, ok)
	}
	if pos := c.pos(); pos.Line != 1 || pos.Col != 7 {
		t.Errorf("after #TITLE: got %+v, want line 1 col 7", pos)
	}

	rest := c.nextLineRemaining()
	if rest != "花たちに希望を [SP ANOTHER]" {
		t.Fatalf("got %q", rest)
	}
	if pos := c.pos(); pos.Line != 1 || pos.Col != 28 {
		t.Errorf("after title line: got %+v, want line 1 col 28 (rune count, not byte count)", pos)
	}

	tok, ok = c.nextToken()
	if !ok || tok != "#ARTIST" {
		t.Fatalf("got %q, %v, want #ARTIST, true", tok, ok)
	}
	if pos := c.pos(); pos.Line != 2 || pos.Col != 8 {
		t.Errorf("after #ARTIST: got %+v, want line 2 col 8", pos)
	}

	rest = c.nextLineRemaining()
	if rest != "Sound piercer feat.DAZBEE" {
		t.Fatalf("got %q", rest)
	}

	tok, ok = c.nextToken()
	if !ok || tok != "#BPM" {
		t.Fatalf("got %q, %v, want #BPM, true", tok, ok)
	}

	rest = c.nextLineRemaining()
	if rest != "187" {
		t.Fatalf("got %q", rest)
	}
}

func TestCursorPeekTokenDoesNotAdvance(t *testing.T) {
	c := NewCursor("#A #B")
	peeked, ok := c.peekToken()
	if !ok || peeked != "#A" {
		t.Fatalf("peek got %q, %v", peeked, ok)
	}
	next, ok := c.nextToken()
	if !ok || next != "#A" {
		t.Errorf("after peek, next got %q, %v", next, ok)
	}
}
