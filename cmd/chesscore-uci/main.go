package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/nilsgrau/chesscore/internal/engine"
	"github.com/nilsgrau/chesscore/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	hashMB     = flag.Int("hash", 64, "transposition table size in MB")
	bookDir    = flag.String("book", "", "opening book database directory (optional)")
)

func main() {
	flag.Parse()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("[Engine] CPU profiling enabled, writing to %s", profilePath)
	}

	opts := engine.DefaultOptions()
	opts.HashMB = *hashMB

	eng := engine.NewEngine(opts)

	if *bookDir != "" {
		if err := eng.LoadBook(*bookDir); err != nil {
			log.Printf("[Book] %v", err)
		}
	}

	protocol := uci.New(eng)
	protocol.Run()
}
