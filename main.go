// ABOUTME: Entry point for melodysearch, a content-based symbolic music search engine
// ABOUTME: Handles command-line parsing, profiling, and routing to CLI, TUI, server or client modes

// Package main provides the melodysearch command: search a corpus of
// pre-parsed songs for a melodic pattern, serve the engine over HTTP, query
// a remote engine, or browse results interactively.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"

	"melodysearch/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile := flag.String("memprofile", "", "write memory profile to file")
	serve := flag.Bool("serve", false, "run the HTTP search server")
	remote := flag.Bool("remote", false, "query a running server instead of a local corpus")
	browse := flag.Bool("browse", false, "browse results in an interactive terminal UI")
	debug := flag.Bool("debug", false, "enable debug logging to melodysearch-debug.log")
	configPath := flag.String("config", config.GetConfigPath(), "config file path")

	corpusDir := flag.String("corpus", "", "corpus directory (overrides config)")
	algorithm := flag.String("algorithm", "", "matching algorithm (overrides config)")
	errorsFlag := flag.Int("errors", -1, "error budget (overrides config)")
	gap := flag.Int("gap", -1, "alpha-gap for splitting (overrides config)")
	poly := flag.Bool("poly", false, "use the polyphonic checking function")
	songOnce := flag.Bool("songonce", false, "report only the best splitting match per song")
	flag.Parse()

	args := flag.Args()

	if *cpuprofile != "" {
		stopCPUProfile := setupCPUProfile(*cpuprofile)
		defer stopCPUProfile()
	}
	if *memprofile != "" {
		defer writeMemoryProfile(*memprofile)
	}
	if *debug {
		if err := InitDebugLog("melodysearch-debug.log"); err != nil {
			log.Printf("Failed to setup debug log: %v", err)
			return 1
		}
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Printf("Warning: %v (using defaults)", err)
	}
	if *corpusDir != "" {
		cfg.CorpusDir = *corpusDir
	}
	if *algorithm != "" {
		cfg.Algorithm = *algorithm
	}
	if *errorsFlag >= 0 {
		cfg.Errors = *errorsFlag
	}
	if *gap >= 0 {
		cfg.Gap = *gap
	}

	if *serve {
		if err := RunServer(cfg); err != nil {
			log.Printf("Server error: %v", err)
			return 1
		}
		return 0
	}

	if len(args) != 1 {
		fmt.Println("Usage: melodysearch [flags] <pattern>")
		fmt.Println("Example: melodysearch -algorithm monopoly \"60,64,67\"")
		fmt.Println("A pattern is a comma-separated list of pitches, or of")
		fmt.Println("onset:pitch:duration triples in 960-per-quarter units.")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()
		return 1
	}

	pattern, err := ParsePattern(args[0])
	if err != nil {
		log.Printf("Bad pattern: %v", err)
		return 1
	}

	opts := RunOptions{
		Config:   cfg,
		Pattern:  pattern,
		SongOnce: *songOnce,
		Poly:     *poly,
	}

	switch {
	case *remote:
		err = RunQuery(opts)
	case *browse:
		err = RunBrowser(opts)
	default:
		err = RunCLI(opts)
	}
	if err != nil {
		log.Printf("Error: %v", err)
		return 1
	}
	return 0
}

// setupCPUProfile starts CPU profiling, returns cleanup function
func setupCPUProfile(filename string) func() {
	f, err := os.Create(filename)
	if err != nil {
		log.Fatalf("could not create CPU profile: %v", err)
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		log.Fatalf("could not start CPU profile: %v", err)
	}

	return func() {
		pprof.StopCPUProfile()
		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close CPU profile: %v", err)
		}
	}
}

// writeMemoryProfile writes memory profile to file
func writeMemoryProfile(filename string) {
	f, err := os.Create(filename)
	if err != nil {
		log.Printf("could not create memory profile: %v", err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close memory profile: %v", err)
		}
	}()

	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Printf("could not write memory profile: %v", err)
	}
}
