package bms

// NoteKind distinguishes the playability category of a note channel.
type NoteKind int

const (
	NoteVisible NoteKind = iota
	NoteInvisible
	NoteLong
	NoteLandmine
)

// sortRank orders note kinds for the §4.6 tie-break: visible, invisible, long, landmine.
func (k NoteKind) sortRank() int {
	switch k {
	case NoteVisible:
		return 0
	case NoteInvisible:
		return 1
	case NoteLong:
		return 2
	case NoteLandmine:
		return 3
	default:
		return 4
	}
}

// Key identifies a lane within a note channel.
type Key int

const (
	Key1 Key = iota
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	KeyScratch
	KeyFreeZone
)

func (k Key) sortRank() int { return int(k) }

// ChannelCategory distinguishes note channels from the non-note channels
// (BGM, BPM change, BGA layers, section length, stop, etc.). Section length
// (02) and inline BPM (03) are kept out of the sorted note list; every other
// category places its object references in it alongside the note channels.
type ChannelCategory int

const (
	ChannelNote ChannelCategory = iota
	ChannelBGM
	ChannelBPMChange   // channel 08, references a #BPMxx definition
	ChannelBPMChangeNum // channel 03, inline hex BPM value
	ChannelStop
	ChannelSectionLength // channel 02
	ChannelBGABase
	ChannelBGAPoor
	ChannelBGALayer
	ChannelBGALayer2
	ChannelOther
)

// Channel is the decoded meaning of a two-character BMS channel code.
type Channel struct {
	Category ChannelCategory

	// Populated only when Category == ChannelNote.
	Kind      NoteKind
	IsPlayer1 bool
	Key       Key

	// Raw retains the original two-character code for diagnostics and for
	// ChannelOther, whose exact meaning this core does not interpret.
	Raw string
}

// decodeChannel maps a raw two-character channel code (as it appears after
// the track number in "#TTTCC:...") to a Channel value.
func decodeChannel(code string) Channel {
	switch code {
	case "01":
		return Channel{Category: ChannelBGM, Raw: code}
	case "02":
		return Channel{Category: ChannelSectionLength, Raw: code}
	case "03":
		return Channel{Category: ChannelBPMChangeNum, Raw: code}
	case "08":
		return Channel{Category: ChannelBPMChange, Raw: code}
	case "09":
		return Channel{Category: ChannelStop, Raw: code}
	case "04":
		return Channel{Category: ChannelBGABase, Raw: code}
	case "06":
		return Channel{Category: ChannelBGAPoor, Raw: code}
	case "07":
		return Channel{Category: ChannelBGALayer, Raw: code}
	case "0A", "0a":
		return Channel{Category: ChannelBGALayer2, Raw: code}
	}

	if ch, ok := decodeNoteChannel(code); ok {
		return ch
	}
	return Channel{Category: ChannelOther, Raw: code}
}

// decodeNoteChannel maps the second character of a note channel (lane digits
// 1..9 only; letter lanes such as 1A are not decoded) to a Key, and the
// leading character to player and note kind: visible 1x/2x, invisible 3x/4x,
// long-note 5x/6x, landmine Dx/Ex, with P1 on the first of each pair.
func decodeNoteChannel(code string) (Channel, bool) {
	if len(code) != 2 {
		return Channel{}, false
	}
	var kind NoteKind
	var isP1 bool
	switch code[0] {
	case '1':
		kind, isP1 = NoteVisible, true
	case '2':
		kind, isP1 = NoteVisible, false
	case '3':
		kind, isP1 = NoteInvisible, true
	case '4':
		kind, isP1 = NoteInvisible, false
	case '5':
		kind, isP1 = NoteLong, true
	case '6':
		kind, isP1 = NoteLong, false
	case 'D':
		kind, isP1 = NoteLandmine, true
	case 'E':
		kind, isP1 = NoteLandmine, false
	default:
		return Channel{}, false
	}

	key, ok := keyFromLaneDigit(code[1])
	if !ok {
		return Channel{}, false
	}
	return Channel{Category: ChannelNote, Kind: kind, IsPlayer1: isP1, Key: key, Raw: code}, true
}

func keyFromLaneDigit(c byte) (Key, bool) {
	switch c {
	case '1':
		return Key1, true
	case '2':
		return Key2, true
	case '3':
		return Key3, true
	case '4':
		return Key4, true
	case '5':
		return Key5, true
	case '6':
		return KeyScratch, true
	case '7':
		return Key6, true
	case '8':
		return Key7, true
	case '9':
		return KeyFreeZone, true
	default:
		return 0, false
	}
}
