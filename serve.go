// ABOUTME: HTTP search API: pattern search, song listing, histograms, playback data
// ABOUTME: Gin router over the corpus store with live reload via the corpus watcher

package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"melodysearch/config"
	"melodysearch/corpus"
	"melodysearch/search"
	"melodysearch/song"
)

// searchRequest is the JSON body of POST /api/search.
type searchRequest struct {
	// Pattern notes in canonical 960-per-quarter onsets.
	Pattern []patternNote `json:"pattern" binding:"required,min=1"`

	Algorithm  string `json:"algorithm"`
	Errors     int    `json:"errors"`
	Gap        int    `json:"gap"`
	SongOnce   bool   `json:"song_once"`
	Polyphonic bool   `json:"polyphonic"`
}

type patternNote struct {
	Onset    uint32 `json:"onset"`
	Pitch    int8   `json:"pitch"`
	Duration uint16 `json:"duration"`
}

// matchJSON is one match on the wire.
type matchJSON struct {
	SongID        string   `json:"song_id"`
	Title         string   `json:"title"`
	FirstChord    int      `json:"first_chord"`
	LastChord     int      `json:"last_chord"`
	Bar           int      `json:"bar"`
	Notes         []uint32 `json:"notes,omitempty"`
	Transposition int      `json:"transposition"`
	Errors        int      `json:"errors"`
	Splits        int      `json:"splits,omitempty"`
	Duration      int      `json:"duration,omitempty"`
	AlignPattern  []int8   `json:"align_pattern,omitempty"`
	AlignSource   []int8   `json:"align_source,omitempty"`
}

type searchResponse struct {
	Matches []matchJSON `json:"matches"`
	Total   int         `json:"total"`
	Elapsed string      `json:"elapsed"`
}

// RunServer loads the corpus, watches it for changes, and serves the search
// API until the process is stopped.
func RunServer(cfg config.Config) error {
	store := corpus.NewStore(cfg.CorpusDir)
	if err := store.Load(); err != nil {
		return err
	}
	log.Printf("Loaded %d songs from %s", store.Len(), cfg.CorpusDir)

	stop := make(chan struct{})
	defer close(stop)
	if err := store.Watch(stop, nil); err != nil {
		log.Printf("Warning: corpus watching disabled: %v", err)
	}

	router := gin.Default()
	router.Use(cors.Default())

	api := router.Group("/api")
	api.POST("/search", handleSearch(store, cfg))
	api.GET("/songs", handleSongs(store))
	api.GET("/songs/:id/histograms", handleHistograms(store))
	api.GET("/songs/:id/chords", handleMatchedChords(store))

	log.Printf("Listening on %s", cfg.ListenAddr)
	return router.Run(cfg.ListenAddr)
}

// handleSearch runs one kernel over the corpus snapshot.
func handleSearch(store *corpus.Store, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req searchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if req.Algorithm == "" {
			req.Algorithm = cfg.Algorithm
		}
		alg, err := search.ParseAlgorithm(req.Algorithm)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		pattern := make(search.Pattern, len(req.Pattern))
		for i, n := range req.Pattern {
			pattern[i] = song.Note{Onset: n.Onset, Pitch: n.Pitch, Duration: n.Duration}
		}

		info, err := alg.Init(pattern, search.Options{
			Errors:     req.Errors,
			Gap:        req.Gap,
			SongOnce:   req.SongOnce,
			Polyphonic: req.Polyphonic,
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		start := time.Now()
		var matches []matchJSON
		total := 0
		for _, s := range store.Songs() {
			for _, m := range alg.Scan(s, info) {
				total++
				if cfg.ResultLimit > 0 && len(matches) >= cfg.ResultLimit {
					continue
				}
				matches = append(matches, toMatchJSON(m))
			}
		}

		c.JSON(http.StatusOK, searchResponse{
			Matches: matches,
			Total:   total,
			Elapsed: time.Since(start).String(),
		})
	}
}

func toMatchJSON(m search.Match) matchJSON {
	return matchJSON{
		SongID:        m.Song.ID,
		Title:         m.Song.Title,
		FirstChord:    m.FirstChord,
		LastChord:     m.LastChord,
		Bar:           m.Song.BarNumber(m.FirstChord),
		Notes:         m.Notes,
		Transposition: m.Transposition,
		Errors:        m.Errors,
		Splits:        m.Splits,
		Duration:      m.Duration,
		AlignPattern:  m.AlignPattern,
		AlignSource:   m.AlignSource,
	}
}

// handleSongs lists the corpus.
func handleSongs(store *corpus.Store) gin.HandlerFunc {
	type songJSON struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		NumChords int    `json:"num_chords"`
		NumNotes  int    `json:"num_notes"`
		NumTracks int    `json:"num_tracks"`
	}
	return func(c *gin.Context) {
		songs := store.Songs()
		out := make([]songJSON, len(songs))
		for i, s := range songs {
			out[i] = songJSON{
				ID:        s.ID,
				Title:     s.Title,
				NumChords: s.NumChords,
				NumNotes:  s.NumNotes,
				NumTracks: s.NumTracks,
			}
		}
		c.JSON(http.StatusOK, out)
	}
}

// handleHistograms returns the note-distribution histograms of one song.
func handleHistograms(store *corpus.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := store.Get(c.Param("id"))
		if s == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown song"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"pitch":          s.PitchHistogram(),
			"pitch_folded":   s.PitchHistogramFolded(),
			"pitch_interval": s.PitchIntervalHistogram(),
			"duration":       s.DurationHistogram(),
		})
	}
}

// handleMatchedChords returns the note data of a chord range, onsets rebased
// to zero, for playing a matched segment back.
func handleMatchedChords(store *corpus.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := store.Get(c.Param("id"))
		if s == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown song"})
			return
		}
		var first, last int
		if _, err := fmt.Sscanf(c.Query("first"), "%d", &first); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad first chord"})
			return
		}
		if _, err := fmt.Sscanf(c.Query("last"), "%d", &last); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad last chord"})
			return
		}
		if last >= s.NumChords {
			last = s.NumChords - 1
		}
		chords := s.MatchedChords(first, last)
		if chords == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad chord range"})
			return
		}
		c.JSON(http.StatusOK, chords)
	}
}
