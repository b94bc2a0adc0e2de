package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/cbegin/stompbox-go"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 44100, "output sample rate")
		dir        = flag.String("dir", "assets", "directory holding clean-{a,b,c}.wav")
		src        = flag.String("source", "a", "initial source: a|b|c")
		preset     = flag.String("preset", "", `preset string, e.g. "od:75,reverb:30"`)
		volume     = flag.Float64("volume", 1.0, "master volume scalar")
		cycle      = flag.Duration("cycle", 0, "switch to the next source every interval (0 = never)")
		duration   = flag.Duration("duration", 0, "stop after this long (0 = until interrupted)")
	)
	flag.Parse()

	engine, err := stompbox.New(
		stompbox.WithSampleRate(*sampleRate),
		stompbox.WithSourceDir(*dir),
		stompbox.WithInitialSource(stompbox.SourceID(*src)),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer engine.Cleanup()

	if *preset != "" {
		settings, err := stompbox.ParsePreset(*preset)
		if err != nil {
			log.Fatal(err)
		}
		if err := engine.ApplyPreset(settings); err != nil {
			log.Fatal(err)
		}
	}
	engine.SetMasterVolume(*volume)

	if err := engine.Play(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("playing source %s (%d sources cached)\n", engine.CurrentSource(), engine.CachedSources())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	var cycleC <-chan time.Time
	if *cycle > 0 {
		tick := time.NewTicker(*cycle)
		defer tick.Stop()
		cycleC = tick.C
	}
	var doneC <-chan time.Time
	if *duration > 0 {
		doneC = time.After(*duration)
	}

	for {
		select {
		case <-stop:
			fmt.Println("interrupted")
			return
		case <-doneC:
			return
		case <-cycleC:
			next := nextSource(engine.CurrentSource())
			if err := engine.SwitchSource(next); err != nil {
				log.Printf("switch to %s: %v", next, err)
				continue
			}
			fmt.Printf("switched to source %s\n", next)
		}
	}
}

func nextSource(cur stompbox.SourceID) stompbox.SourceID {
	ids := stompbox.SourceIDs()
	for i, id := range ids {
		if id == cur {
			return ids[(i+1)%len(ids)]
		}
	}
	return ids[0]
}
