// ABOUTME: Shared helpers for all modes: pattern parsing, options, debug log
// ABOUTME: Turns the command-line pattern notation into search.Pattern values

package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"melodysearch/config"
	"melodysearch/search"
	"melodysearch/song"
)

// RunOptions carries the resolved settings of one invocation.
type RunOptions struct {
	Config   config.Config
	Pattern  search.Pattern
	SongOnce bool
	Poly     bool
}

// Debug logger - writes to file for debugging
var debugLog *log.Logger

// InitDebugLog initializes debug logging to a file
func InitDebugLog(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create debug log file: %w", err)
	}
	debugLog = log.New(f, "", log.Ltime|log.Lmicroseconds)
	return nil
}

// debugf logs debug messages to file if debug logger is enabled
func debugf(format string, args ...interface{}) {
	if debugLog != nil {
		debugLog.Printf(format, args...)
	}
}

// defaultNoteDuration is assumed for pitch-only patterns: one quarter note.
const defaultNoteDuration = song.PatternResolution

// ParsePattern parses the command-line pattern notation: a comma-separated
// list of either bare pitches (laid out one quarter note apart) or
// onset:pitch:duration triples in canonical 960-per-quarter units.
func ParsePattern(input string) (search.Pattern, error) {
	fields := strings.Split(input, ",")
	pattern := make(search.Pattern, 0, len(fields))

	for i, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		parts := strings.Split(field, ":")
		switch len(parts) {
		case 1:
			pitch, err := parsePitch(parts[0])
			if err != nil {
				return nil, err
			}
			pattern = append(pattern, song.Note{
				Onset:    uint32(i) * song.PatternResolution,
				Pitch:    pitch,
				Duration: defaultNoteDuration,
			})
		case 3:
			onset, err := strconv.ParseUint(parts[0], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("bad onset %q: %w", parts[0], err)
			}
			pitch, err := parsePitch(parts[1])
			if err != nil {
				return nil, err
			}
			duration, err := strconv.ParseUint(parts[2], 10, 16)
			if err != nil {
				return nil, fmt.Errorf("bad duration %q: %w", parts[2], err)
			}
			pattern = append(pattern, song.Note{
				Onset:    uint32(onset),
				Pitch:    pitch,
				Duration: uint16(duration),
			})
		default:
			return nil, fmt.Errorf("bad pattern note %q: want pitch or onset:pitch:duration", field)
		}
	}

	if len(pattern) == 0 {
		return nil, fmt.Errorf("empty pattern")
	}
	if len(pattern) > song.MaxPatternNotes {
		return nil, fmt.Errorf("pattern has %d notes, limit is %d", len(pattern), song.MaxPatternNotes)
	}
	return pattern, nil
}

func parsePitch(s string) (int8, error) {
	pitch, err := strconv.ParseInt(s, 10, 8)
	if err != nil || pitch < 0 {
		return 0, fmt.Errorf("bad pitch %q: want a MIDI pitch 0-127", s)
	}
	return int8(pitch), nil
}

// searchOptions maps the run options onto kernel options.
func searchOptions(opts RunOptions) search.Options {
	return search.Options{
		Errors:     opts.Config.Errors,
		Gap:        opts.Config.Gap,
		SongOnce:   opts.SongOnce,
		Polyphonic: opts.Poly,
	}
}
