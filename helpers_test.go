package bms

import (
	"testing"

	clone "github.com/huandu/go-clone/generic"
)

var id01Fixture, _ = ParseObjId("01")

// baseHeaderFixture is a shared base Header reused across tests that want a
// populated starting point. Tests must clone it rather than mutate it
// directly, since Header embeds maps that a plain struct copy would alias.
var baseHeaderFixture = Header{
	Title:  "fixture chart",
	Artist: "fixture artist",
	Wav:    map[ObjId]string{id01Fixture: "kick.wav"},
}

func newFixtureHeader() Header {
	return clone.Clone(baseHeaderFixture)
}

func TestFixtureHeaderCloneIsIndependent(t *testing.T) {
	h1 := newFixtureHeader()
	h1.Title = "mutated"
	h1.Wav[id01Fixture] = "snare.wav"

	h2 := newFixtureHeader()
	if h2.Title != "fixture chart" {
		t.Errorf("clone leaked Title mutation: %q", h2.Title)
	}
	if h2.Wav[id01Fixture] != "kick.wav" {
		t.Errorf("clone leaked Wav map mutation: %q", h2.Wav[id01Fixture])
	}
}
