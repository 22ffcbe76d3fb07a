package bms

import "testing"

func TestParseBmsHeaderAndNotes(t *testing.T) {
	text := "#TITLE simple chart\n#ARTIST nobody\n#BPM 150\n#00111:11000000\n#00114:00000044\n"
	b, err := ParseBms(text, NewRngMock(1))
	if err != nil {
		t.Fatal(err)
	}
	if b.Header.Title != "simple chart" {
		t.Errorf("Title = %q", b.Header.Title)
	}
	if len(b.Notes) != 2 {
		t.Fatalf("got %d notes, want 2: %+v", len(b.Notes), b.Notes)
	}
	if b.Notes[0].Num != 1 || b.Notes[0].Den != 4 || b.Notes[0].ObjID != mustObjId(t, "11") {
		t.Errorf("first note = %+v", b.Notes[0])
	}
	if b.Notes[1].Num != 4 || b.Notes[1].Den != 4 || b.Notes[1].ObjID != mustObjId(t, "44") {
		t.Errorf("second note = %+v", b.Notes[1])
	}
}

// nestedRandomFixture exercises nested #RANDOM/#IF exactly like a chart that
// randomizes both an outer section and, within one branch of it, an inner
// sub-choice. Each scenario below was hand-traced against the decoded
// positions it must produce.
const nestedRandomFixture = `#TITLE nested random fixture
#00111:11000000
#00114:00000044
#RANDOM 2
#IF 1
#00112:00220000
#RANDOM 2
#IF 1
#00115:00550000
#ELSEIF 2
#00116:00006600
#ENDIF
#ENDRANDOM
#ELSEIF 2
#00113:00003300
#ENDIF
#ENDRANDOM
`

type wantNote struct {
	num, den uint32
	key      Key
	objID    string
}

func checkNotes(t *testing.T, b *Bms, want []wantNote) {
	t.Helper()
	if len(b.Notes) != len(want) {
		t.Fatalf("got %d notes, want %d: %+v", len(b.Notes), len(want), b.Notes)
	}
	for i, w := range want {
		n := b.Notes[i]
		if n.Num != w.num || n.Den != w.den || n.Channel.Key != w.key || n.ObjID != mustObjId(t, w.objID) {
			t.Errorf("note %d = %+v, want {%d/%d key=%v id=%s}", i, n, w.num, w.den, w.key, w.objID)
		}
	}
}

func TestNestedRandomOuterOneInnerOne(t *testing.T) {
	// Outer #RANDOM draws 1 (selects #IF 1), the nested #RANDOM then also
	// draws 1 off the same cyclically-wrapped mock (selects its own #IF 1).
	b, err := ParseBms(nestedRandomFixture, NewRngMock(1))
	if err != nil {
		t.Fatal(err)
	}
	checkNotes(t, b, []wantNote{
		{1, 4, Key1, "11"},
		{2, 4, Key2, "22"},
		{2, 4, Key5, "55"}, // same position as Key2; Key sortRank breaks the tie
		{4, 4, Key4, "44"},
	})
}

func TestNestedRandomOuterOneInnerTwo(t *testing.T) {
	// Outer draws 1 (selects #IF 1), nested draws 2 (selects its #ELSEIF 2).
	b, err := ParseBms(nestedRandomFixture, NewRngMock(1, 2))
	if err != nil {
		t.Fatal(err)
	}
	checkNotes(t, b, []wantNote{
		{1, 4, Key1, "11"},
		{2, 4, Key2, "22"},
		{3, 4, KeyScratch, "66"},
		{4, 4, Key4, "44"},
	})
}

func TestNestedRandomOuterTwo(t *testing.T) {
	// Outer draws 2 (selects its #ELSEIF 2); the nested #RANDOM sits inside
	// the now-dead #IF 1 branch and never draws, so a single-element mock
	// is sufficient even though the text contains two #RANDOM statements.
	b, err := ParseBms(nestedRandomFixture, NewRngMock(2))
	if err != nil {
		t.Fatal(err)
	}
	checkNotes(t, b, []wantNote{
		{1, 4, Key1, "11"},
		{3, 4, Key3, "33"},
		{4, 4, Key4, "44"},
	})
}

func TestValidateCrossReferencesWarnsOnUndefinedWav(t *testing.T) {
	c := NewCollector()
	b, err := ParseBmsWithSink("#00111:11000000\n", NewRngMock(1), c)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Notes) != 1 {
		t.Fatalf("got %d notes", len(b.Notes))
	}
	if len(c.Messages) == 0 {
		t.Error("expected a warning for the undefined WAV object")
	}
}

func TestValidateCrossReferencesSilentWhenDefined(t *testing.T) {
	c := NewCollector()
	_, err := ParseBmsWithSink("#WAV11 kick.wav\n#00111:11000000\n", NewRngMock(1), c)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Messages) != 0 {
		t.Errorf("expected no warnings, got %v", c.Messages)
	}
}
