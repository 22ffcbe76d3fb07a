package bms

import (
	"math"
	"strconv"
	"strings"
)

// Parse tokenizes BMS source text into a TokenStream. It is the package's
// primary entry point; diagnostics raised along the way are discarded. Use
// ParseWithSink to capture them.
func Parse(text string) (*TokenStream, error) {
	return ParseWithSink(text, NopSink{})
}

// ParseWithSink tokenizes text exactly like Parse, but routes non-fatal
// diagnostics (unknown commands, malformed-but-recoverable directives) to
// sink instead of discarding them.
func ParseWithSink(text string, sink Sink) (*TokenStream, error) {
	l := &lexer{cur: NewCursor(text), sink: sink, stream: &TokenStream{}}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.stream, nil
}

type lexer struct {
	cur    *Cursor
	sink   Sink
	stream *TokenStream
}

func (l *lexer) run() error {
	for {
		pos := l.cur.tokenPos()
		tok, ok := l.cur.nextToken()
		if !ok {
			return nil
		}
		if !strings.HasPrefix(tok, "#") {
			continue // lines not starting with # are comments
		}
		if err := l.dispatch(tok, pos); err != nil {
			return err
		}
	}
}

func (l *lexer) emit(t Token, pos Position) {
	t.Pos = pos
	l.stream.push(t)
}

func (l *lexer) dispatch(tok string, pos Position) error {
	body := tok[1:]

	if msg, ok := parseMessageHead(body); ok {
		return l.dispatchMessage(msg, pos)
	}

	upper := strings.ToUpper(body)

	switch upper {
	case "TITLE":
		l.emit(Token{Kind: TokTitle, Str: l.cur.nextLineRemaining()}, pos)
		return nil
	case "SUBTITLE":
		l.emit(Token{Kind: TokSubTitle, Str: l.cur.nextLineRemaining()}, pos)
		return nil
	case "ARTIST":
		l.emit(Token{Kind: TokArtist, Str: l.cur.nextLineRemaining()}, pos)
		return nil
	case "SUBARTIST":
		l.emit(Token{Kind: TokSubArtist, Str: l.cur.nextLineRemaining()}, pos)
		return nil
	case "MAKER":
		l.emit(Token{Kind: TokMaker, Str: l.cur.nextLineRemaining()}, pos)
		return nil
	case "GENRE":
		l.emit(Token{Kind: TokGenre, Str: l.cur.nextLineRemaining()}, pos)
		return nil
	case "EMAIL":
		l.emit(Token{Kind: TokEmail, Str: l.cur.nextLineRemaining()}, pos)
		return nil
	case "URL":
		l.emit(Token{Kind: TokUrl, Str: l.cur.nextLineRemaining()}, pos)
		return nil
	case "COMMENT":
		l.emit(Token{Kind: TokComment, Str: l.cur.nextLineRemaining()}, pos)
		return nil
	case "OPTION":
		l.emit(Token{Kind: TokOption, Str: l.cur.nextLineRemaining()}, pos)
		return nil
	case "STAGEFILE":
		l.emit(Token{Kind: TokStageFile, Str: l.cur.nextLineRemaining()}, pos)
		return nil
	case "BANNER":
		l.emit(Token{Kind: TokBanner, Str: l.cur.nextLineRemaining()}, pos)
		return nil
	case "BACKBMP":
		l.emit(Token{Kind: TokBackBmp, Str: l.cur.nextLineRemaining()}, pos)
		return nil
	case "MIDIFILE":
		l.emit(Token{Kind: TokMidiFile, Str: l.cur.nextLineRemaining()}, pos)
		return nil
	case "VIDEOFILE":
		l.emit(Token{Kind: TokVideoFile, Str: l.cur.nextLineRemaining()}, pos)
		return nil
	case "PATH_WAV":
		l.emit(Token{Kind: TokPathWav, Str: l.cur.nextLineRemaining()}, pos)
		return nil

	case "BPM":
		str, ok := l.cur.nextToken()
		if !ok {
			return l.cur.errExpectedToken("expected #BPM value")
		}
		l.emit(Token{Kind: TokBpm, Str: str}, pos)
		return nil

	case "PLAYLEVEL":
		v, err := l.expectU8("#PLAYLEVEL")
		if err != nil {
			return err
		}
		l.emit(Token{Kind: TokPlayLevel, U8: v}, pos)
		return nil

	case "DIFFICULTY":
		v, err := l.expectU8("#DIFFICULTY")
		if err != nil {
			return err
		}
		l.emit(Token{Kind: TokDifficulty, U8: v}, pos)
		return nil

	case "RANK":
		v, err := l.expectU8("#RANK")
		if err != nil {
			return err
		}
		judge := JudgeLevel(v)
		if v > 3 {
			l.sink.Warnf("#RANK value %d out of range 0..3, clamping to hard", v)
			judge = JudgeHard
		}
		l.emit(Token{Kind: TokRank, Judge: judge}, pos)
		return nil

	case "TOTAL":
		str, ok := l.cur.nextToken()
		if !ok {
			return l.cur.errExpectedToken("expected #TOTAL value")
		}
		l.emit(Token{Kind: TokTotal, Str: str}, pos)
		return nil

	case "PLAYER":
		v, err := l.expectU8("#PLAYER")
		if err != nil {
			return err
		}
		mode := PlayerMode(v)
		if v < 1 || v > 4 {
			l.sink.Warnf("#PLAYER value %d out of range 1..4, defaulting to single", v)
			mode = PlayerSingle
		}
		l.emit(Token{Kind: TokPlayer, Player: mode}, pos)
		return nil

	case "POORBGA":
		v, err := l.expectU8("#POORBGA")
		if err != nil {
			return err
		}
		mode := PoorMode(v)
		if v > 2 {
			l.sink.Warnf("#POORBGA value %d out of range 0..2, defaulting to interrupt", v)
			mode = PoorInterrupt
		}
		l.emit(Token{Kind: TokPoorBga, Poor: mode}, pos)
		return nil

	case "VOLWAV":
		v, err := l.expectInt("#VOLWAV")
		if err != nil {
			return err
		}
		l.emit(Token{Kind: TokVolWav, Volume: v}, pos)
		return nil

	case "LNTYPE":
		v, err := l.expectInt("#LNTYPE")
		if err != nil {
			return err
		}
		switch v {
		case 2:
			l.emit(Token{Kind: TokLnTypeMgq}, pos)
		default:
			if v != 1 {
				l.sink.Warnf("#LNTYPE value %d not in {1,2}, defaulting to 1", v)
			}
			l.emit(Token{Kind: TokLnTypeRdm}, pos)
		}
		return nil

	case "RANDOM":
		v, err := l.expectInt("#RANDOM")
		if err != nil {
			return err
		}
		l.emit(Token{Kind: TokRandom, Int: v}, pos)
		return nil
	case "SETRANDOM":
		v, err := l.expectInt("#SETRANDOM")
		if err != nil {
			return err
		}
		l.emit(Token{Kind: TokSetRandom, Int: v}, pos)
		return nil
	case "IF":
		v, err := l.expectInt("#IF")
		if err != nil {
			return err
		}
		l.emit(Token{Kind: TokIf, Int: v}, pos)
		return nil
	case "ELSEIF":
		v, err := l.expectInt("#ELSEIF")
		if err != nil {
			return err
		}
		l.emit(Token{Kind: TokElseIf, Int: v}, pos)
		return nil
	case "ELSE":
		l.emit(Token{Kind: TokElse}, pos)
		return nil
	case "ENDIF":
		l.emit(Token{Kind: TokEndIf}, pos)
		return nil
	case "ENDRANDOM":
		l.emit(Token{Kind: TokEndRandom}, pos)
		return nil
	}

	if strings.HasPrefix(upper, "@BGA") && len(upper) == len("@BGA")+2 {
		return l.dispatchIndexed(upper, "@BGA", TokAtBga, pos)
	}

	for _, def := range indexedCommands {
		if strings.HasPrefix(upper, def.prefix) && len(upper) == len(def.prefix)+2 {
			return l.dispatchIndexed(upper, def.prefix, def.kind, pos)
		}
	}

	l.sink.Warnf("unknown directive %q at %s, ignoring", tok, pos)
	return nil
}

type indexedCommandDef struct {
	prefix string
	kind   TokenKind
}

var indexedCommands = []indexedCommandDef{
	{"WAV", TokWav},
	{"BMP", TokBmp},
	{"BPM", TokBpmChange},
	{"STOP", TokStop},
	{"EXBMP", TokExBmp},
	{"EXWAV", TokExWav},
	{"EXRANK", TokExRank},
	{"TEXT", TokText},
	{"BGA", TokBga},
	{"CHANGEOPTION", TokChangeOption},
}

// dispatchIndexed handles the shared "#CMDxx payload" shape: the last two
// characters of upper are the ObjId, everything before is the command name.
func (l *lexer) dispatchIndexed(upper, prefix string, kind TokenKind, pos Position) error {
	idStr := upper[len(prefix):]
	id, ok := ParseObjId(idStr)
	if !ok {
		return newLexError(ErrKindUnknownObject, pos, "invalid object id %q in %s", idStr, prefix)
	}

	t := Token{Kind: kind, ObjID: id}
	switch kind {
	case TokWav, TokBmp, TokText, TokExBmp, TokExWav, TokExRank, TokChangeOption:
		t.Str = l.cur.nextLineRemaining()
	case TokBpmChange:
		str, ok := l.cur.nextToken()
		if !ok {
			return l.cur.errExpectedToken("expected #BPMxx value")
		}
		f, err := strconv.ParseFloat(str, 64)
		if err != nil || f <= 0 || isNonFinite(f) {
			return newParseErrorAsLex(pos, "#BPM%s value %q is not a positive finite number", idStr, str)
		}
		t.Float = f
	case TokStop:
		str, ok := l.cur.nextToken()
		if !ok {
			return l.cur.errExpectedToken("expected #STOPxx value")
		}
		v, err := strconv.Atoi(str)
		if err != nil {
			return newLexError(ErrKindExpectedInt, pos, "expected integer for #STOP%s, got %q", idStr, str)
		}
		t.Int = v
	case TokBga, TokAtBga:
		l.readBgaFields(&t)
	}
	l.emit(t, pos)
	return nil
}

// readBgaFields parses the seven whitespace-delimited fields that follow a
// #BGAxx/#@BGAxx command: source object id then six integers describing a
// source rectangle and destination offset. Malformed or missing fields are
// non-fatal: the field is left zero and a warning is raised, matching the
// §9 policy of extending the data model rather than discarding information.
func (l *lexer) readBgaFields(t *Token) {
	idStr, ok := l.cur.nextToken()
	if ok {
		if id, ok := ParseObjId(idStr); ok {
			t.BgaObj = id
		} else {
			l.sink.Warnf("malformed BGA source object %q", idStr)
		}
	} else {
		l.sink.Warnf("missing BGA source object")
	}
	ints := []*int{&t.X1, &t.Y1, &t.X2, &t.Y2, &t.DX, &t.DY}
	for _, dst := range ints {
		str, ok := l.cur.nextToken()
		if !ok {
			l.sink.Warnf("missing BGA integer field")
			break
		}
		v, err := strconv.Atoi(str)
		if err != nil {
			l.sink.Warnf("malformed BGA integer field %q", str)
			continue
		}
		*dst = v
	}
}

func (l *lexer) expectInt(what string) (int, error) {
	str, ok := l.cur.nextToken()
	if !ok {
		return 0, l.cur.errExpectedToken("expected " + what + " value")
	}
	v, err := strconv.Atoi(str)
	if err != nil {
		return 0, newLexError(ErrKindExpectedInt, l.cur.pos(), "expected integer for %s, got %q", what, str)
	}
	return v, nil
}

func (l *lexer) expectU8(what string) (uint8, error) {
	v, err := l.expectInt(what)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 255 {
		return 0, newLexError(ErrKindExpectedInt, l.cur.pos(), "%s value %d out of byte range", what, v)
	}
	return uint8(v), nil
}

func isNonFinite(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}

// messageHead is the decoded "TTTCC:" prefix of a channel message token.
type messageHead struct {
	track   uint16
	channel string
	payload string
}

// parseMessageHead recognizes "DDDCC:PAYLOAD" where DDD are three decimal
// digits and CC are two alphanumeric channel digits.
func parseMessageHead(body string) (messageHead, bool) {
	if len(body) < 6 {
		return messageHead{}, false
	}
	for i := 0; i < 3; i++ {
		if body[i] < '0' || body[i] > '9' {
			return messageHead{}, false
		}
	}
	if body[5] != ':' {
		return messageHead{}, false
	}
	cc := body[3:5]
	if !isAlnum(cc[0]) || !isAlnum(cc[1]) {
		return messageHead{}, false
	}
	track, _ := strconv.Atoi(body[0:3])
	return messageHead{track: uint16(track), channel: strings.ToUpper(cc), payload: body[6:]}, true
}

func isAlnum(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func (l *lexer) dispatchMessage(msg messageHead, pos Position) error {
	ch := decodeChannel(msg.channel)
	l.emit(Token{Kind: TokMessage, Track: msg.track, Channel: ch, Message: msg.payload}, pos)
	return nil
}

// newParseErrorAsLex wraps a fatal #BPMxx validation failure as a LexError
// so it can be returned from the lexer dispatch loop alongside the other
// fatal lexical errors. The error carries ErrKindExpectedInt; the header
// assembler only ever sees #BPMxx values that passed this check.
func newParseErrorAsLex(pos Position, format string, args ...any) *LexError {
	return newLexError(ErrKindExpectedInt, pos, format, args...)
}
