package bms

import "unicode"

// Cursor streams UTF-8 source text as whitespace-delimited tokens and
// line-remainders, tracking (line, col) in characters, not bytes.
type Cursor struct {
	src  []rune
	idx  int
	line int
	col  int
}

// NewCursor creates a Cursor positioned at the start of src.
func NewCursor(src string) *Cursor {
	return &Cursor{src: []rune(src), idx: 0, line: 1, col: 1}
}

func (c *Cursor) eof() bool { return c.idx >= len(c.src) }

// advance consumes one rune and updates line/col bookkeeping.
func (c *Cursor) advance() rune {
	r := c.src[c.idx]
	c.idx++
	if r == '\n' {
		c.line++
		c.col = 1
	} else {
		c.col++
	}
	return r
}

func (c *Cursor) skipWhitespace() {
	for !c.eof() && unicode.IsSpace(c.src[c.idx]) {
		c.advance()
	}
}

// skipLineWhitespace consumes leading whitespace that is not a newline.
func (c *Cursor) skipLineWhitespace() {
	for !c.eof() && c.src[c.idx] != '\n' && unicode.IsSpace(c.src[c.idx]) {
		c.advance()
	}
}

// peekToken returns the next whitespace-delimited token without advancing.
func (c *Cursor) peekToken() (string, bool) {
	save := *c
	tok, ok := c.nextToken()
	*c = save
	return tok, ok
}

// nextToken advances past and returns the next whitespace-delimited token.
// Separators are any Unicode whitespace, including newlines.
func (c *Cursor) nextToken() (string, bool) {
	c.skipWhitespace()
	if c.eof() {
		return "", false
	}

	start := c.idx
	for !c.eof() && !unicode.IsSpace(c.src[c.idx]) {
		c.advance()
	}
	return string(c.src[start:c.idx]), true
}

// tokenPos reports the position that the next call to nextToken() would
// stamp its result with, without consuming anything.
func (c *Cursor) tokenPos() Position {
	save := *c
	c.skipWhitespace()
	pos := Position{Line: c.line, Col: c.col}
	*c = save
	return pos
}

// nextLineRemaining consumes leading non-newline whitespace, then returns
// the rest of the current line up to (but not including) a trailing '\n'.
// A trailing '\r' immediately before the '\n' is stripped. The newline
// itself, if present, is left for the next whitespace skip to consume.
func (c *Cursor) nextLineRemaining() string {
	c.skipLineWhitespace()

	start := c.idx
	for !c.eof() && c.src[c.idx] != '\n' {
		c.advance()
	}
	end := c.idx
	if end > start && c.src[end-1] == '\r' {
		end--
	}
	return string(c.src[start:end])
}

// errExpectedToken builds an ErrKindExpectedToken LexError at the cursor's
// current (not yet consumed) position.
func (c *Cursor) errExpectedToken(message string) *LexError {
	return newLexError(ErrKindExpectedToken, c.tokenPos(), "%s", message)
}

func (c *Cursor) pos() Position {
	return Position{Line: c.line, Col: c.col}
}
