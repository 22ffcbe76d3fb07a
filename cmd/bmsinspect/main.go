// bmsinspect loads a BMS chart and lets you step through its header fields
// and sorted note list interactively.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
	"github.com/containerd/console"
	"github.com/fatih/color"

	bms "github.com/go-bms/bmscore"
)

var (
	flagSeed     = flag.String("seed", "1", "comma-separated RNG draws fed to #RANDOM, cycled if exhausted")
	flagWarnings = flag.Bool("warnings", false, "print collected diagnostics on exit")
)

const (
	escape     = "\x1b["
	hideCursor = escape + "?25l"
	showCursor = escape + "?25h"
)

var (
	title = color.New(color.FgCyan, color.Bold).SprintfFunc()
	label = color.New(color.FgWhite).SprintfFunc()
	value = color.New(color.FgGreen).SprintfFunc()
	warn  = color.New(color.FgYellow).SprintfFunc()
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("bmsinspect: ")
	flag.Parse()

	if len(flag.Args()) == 0 {
		log.Fatal("Missing BMS filename")
	}

	text, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}

	seed, err := parseSeed(*flagSeed)
	if err != nil {
		log.Fatal(err)
	}

	collector := bms.NewCollector()
	chart, err := bms.ParseBmsWithSink(string(text), bms.NewRngMock(seed...), collector)
	if err != nil {
		log.Fatal(err)
	}

	insp := &inspector{chart: chart}
	insp.run()

	if *flagWarnings {
		for _, m := range collector.Messages {
			fmt.Println(warn("warning: %s", m))
		}
	}
}

func parseSeed(s string) ([]uint32, error) {
	parts := strings.Split(s, ",")
	seed := make([]uint32, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid -seed value %q: %w", p, err)
		}
		seed = append(seed, uint32(v))
	}
	return seed, nil
}

// inspector drives the interactive terminal view over a parsed chart.
type inspector struct {
	chart  *bms.Bms
	cursor int // index into chart.Notes
}

func (insp *inspector) run() {
	current := console.Current()
	if err := current.SetRaw(); err == nil {
		defer current.Reset()
	}

	fmt.Print(hideCursor)
	defer fmt.Print(showCursor)

	insp.render()

	done := make(chan struct{})
	go func() {
		defer close(done)
		keyboard.Listen(func(key keys.Key) (stop bool, err error) {
			switch key.Code {
			case keys.CtrlC, keys.Escape, keys.Enter:
				return true, nil
			case keys.Up, keys.Left:
				if insp.cursor > 0 {
					insp.cursor--
				}
				insp.render()
			case keys.Down, keys.Right:
				if insp.cursor < len(insp.chart.Notes)-1 {
					insp.cursor++
				}
				insp.render()
			}
			return false, nil
		})
	}()
	<-done
}

func (insp *inspector) render() {
	fmt.Print(escape + "2J" + escape + "H")
	h := insp.chart.Header
	fmt.Println(title("%s", h.Title))
	if h.Artist != "" {
		fmt.Println(label("artist: ") + value("%s", h.Artist))
	}
	if h.Bpm != nil {
		fmt.Println(label("bpm: ") + value("%.2f", *h.Bpm))
	}
	fmt.Printf(label("notes: ")+value("%d")+"\n", len(insp.chart.Notes))
	fmt.Println()

	if len(insp.chart.Notes) == 0 {
		return
	}
	lo := max(0, insp.cursor-5)
	hi := min(len(insp.chart.Notes), insp.cursor+6)
	for i := lo; i < hi; i++ {
		n := insp.chart.Notes[i]
		marker := "  "
		if i == insp.cursor {
			marker = "> "
		}
		fmt.Printf("%strack %03d  %d/%d  %s  %s\n", marker, n.Track, n.Num, n.Den, n.Channel.Raw, n.ObjID)
	}
}
