package bms

import (
	"math"
	"strconv"
)

// Header holds the scalar metadata and simple definition tables folded
// from header-carrying and definition tokens. All strings are owned copies,
// independent of the lexer's input buffer.
type Header struct {
	Title     string
	SubTitle  string
	Artist    string
	SubArtist string
	Maker     string
	Genre     string
	Email     string
	Url       string
	Option    []string
	Comment   []string

	Bpm        *float64
	PlayLevel  *uint8
	Difficulty *uint8
	Rank       *JudgeLevel
	Total      *float64

	Banner    string
	BackBmp   string
	StageFile string
	MidiFile  string
	VideoFile string
	PathWav   string

	Player  *PlayerMode
	PoorBga *PoorMode
	VolWav  *int
	LnType  LnType

	Wav map[ObjId]string
	Bmp map[ObjId]string
	// BpmChanges maps an ObjId (as referenced by channel 08) to the BPM it
	// switches to.
	BpmChanges map[ObjId]float64
	Stops      map[ObjId]int
	Text       map[ObjId]string

	ExBmp         map[ObjId]string
	ExWav         map[ObjId]string
	ExRank        map[ObjId]string
	ChangeOptions map[ObjId]string
	Bga           map[ObjId]BgaDef
	AtBga         map[ObjId]BgaDef
}

// LnType reflects the #LNTYPE command: whether long notes are encoded as
// paired RDM markers (default) or as MGQ-style channel ranges.
type LnType int

const (
	LnTypeRdm LnType = iota
	LnTypeMgq
)

// BgaDef is the decoded payload of a #BGAxx/#@BGAxx definition: a source
// object plus the rectangle and placement offset used to cut and draw it.
// The core does not interpret these values further (see spec.md §1
// Non-goals); they are retained because the lexer already extracts them.
type BgaDef struct {
	Source ObjId
	X1, Y1 int
	X2, Y2 int
	DX, DY int
}

func newHeader() *Header {
	return &Header{
		Wav:           map[ObjId]string{},
		Bmp:           map[ObjId]string{},
		BpmChanges:    map[ObjId]float64{},
		Stops:         map[ObjId]int{},
		Text:          map[ObjId]string{},
		ExBmp:         map[ObjId]string{},
		ExWav:         map[ObjId]string{},
		ExRank:        map[ObjId]string{},
		ChangeOptions: map[ObjId]string{},
		Bga:           map[ObjId]BgaDef{},
		AtBga:         map[ObjId]BgaDef{},
	}
}

// headerAssembler folds header-carrying and definition tokens into a Header.
type headerAssembler struct {
	h    *Header
	sink Sink
}

func newHeaderAssembler(sink Sink) *headerAssembler {
	return &headerAssembler{h: newHeader(), sink: sink}
}

// accepts reports whether this token kind belongs to the header assembler
// (as opposed to the notes assembler, which handles TokMessage).
func (a *headerAssembler) accepts(kind TokenKind) bool {
	return kind != TokMessage
}

func (a *headerAssembler) fold(tok Token) {
	switch tok.Kind {
	case TokTitle:
		a.h.Title = tok.Str
	case TokSubTitle:
		a.h.SubTitle = tok.Str
	case TokArtist:
		a.h.Artist = tok.Str
	case TokSubArtist:
		a.h.SubArtist = tok.Str
	case TokMaker:
		a.h.Maker = tok.Str
	case TokGenre:
		a.h.Genre = tok.Str
	case TokEmail:
		a.h.Email = tok.Str
	case TokUrl:
		a.h.Url = tok.Str
	case TokOption:
		a.h.Option = append(a.h.Option, tok.Str)
	case TokComment:
		a.h.Comment = append(a.h.Comment, tok.Str)

	case TokBpm:
		f, err := strconv.ParseFloat(tok.Str, 64)
		if err != nil || f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			a.sink.Warnf("ignoring non-positive or malformed #BPM value %q", tok.Str)
			return
		}
		a.h.Bpm = &f

	case TokPlayLevel:
		v := tok.U8
		a.h.PlayLevel = &v

	case TokDifficulty:
		if tok.U8 < 1 || tok.U8 > 5 {
			a.sink.Warnf("#DIFFICULTY value %d out of range 1..5", tok.U8)
		}
		v := tok.U8
		a.h.Difficulty = &v

	case TokRank:
		j := tok.Judge
		a.h.Rank = &j

	case TokTotal:
		f, err := strconv.ParseFloat(tok.Str, 64)
		if err != nil || f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			a.sink.Warnf("ignoring non-positive or malformed #TOTAL value %q", tok.Str)
			return
		}
		a.h.Total = &f

	case TokBanner:
		a.h.Banner = tok.Str
	case TokBackBmp:
		a.h.BackBmp = tok.Str
	case TokStageFile:
		a.h.StageFile = tok.Str
	case TokMidiFile:
		a.h.MidiFile = tok.Str
	case TokVideoFile:
		a.h.VideoFile = tok.Str
	case TokPathWav:
		a.h.PathWav = tok.Str

	case TokPlayer:
		v := tok.Player
		a.h.Player = &v
	case TokPoorBga:
		v := tok.Poor
		a.h.PoorBga = &v
	case TokVolWav:
		v := tok.Volume
		a.h.VolWav = &v
	case TokLnTypeRdm:
		a.h.LnType = LnTypeRdm
	case TokLnTypeMgq:
		a.h.LnType = LnTypeMgq

	case TokWav:
		a.setString(a.h.Wav, tok.ObjID, tok.Str, "WAV")
	case TokBmp:
		a.setString(a.h.Bmp, tok.ObjID, tok.Str, "BMP")
	case TokBpmChange:
		if _, dup := a.h.BpmChanges[tok.ObjID]; dup {
			a.sink.Warnf("duplicate #BPM%s definition, overwriting", tok.ObjID)
		}
		a.h.BpmChanges[tok.ObjID] = tok.Float
	case TokStop:
		if _, dup := a.h.Stops[tok.ObjID]; dup {
			a.sink.Warnf("duplicate #STOP%s definition, overwriting", tok.ObjID)
		}
		a.h.Stops[tok.ObjID] = tok.Int
	case TokText:
		a.setString(a.h.Text, tok.ObjID, tok.Str, "TEXT")
	case TokExBmp:
		a.setString(a.h.ExBmp, tok.ObjID, tok.Str, "EXBMP")
	case TokExWav:
		a.setString(a.h.ExWav, tok.ObjID, tok.Str, "EXWAV")
	case TokExRank:
		a.setString(a.h.ExRank, tok.ObjID, tok.Str, "EXRANK")
	case TokChangeOption:
		a.setString(a.h.ChangeOptions, tok.ObjID, tok.Str, "CHANGEOPTION")
	case TokBga:
		a.h.Bga[tok.ObjID] = bgaDefFromToken(tok)
	case TokAtBga:
		a.h.AtBga[tok.ObjID] = bgaDefFromToken(tok)
	}
}

func bgaDefFromToken(tok Token) BgaDef {
	return BgaDef{Source: tok.BgaObj, X1: tok.X1, Y1: tok.Y1, X2: tok.X2, Y2: tok.Y2, DX: tok.DX, DY: tok.DY}
}

func (a *headerAssembler) setString(table map[ObjId]string, id ObjId, value, what string) {
	if _, dup := table[id]; dup {
		a.sink.Warnf("duplicate #%s%s definition, overwriting", what, id)
	}
	table[id] = value
}
