// ABOUTME: Binary .msong container for pre-parsed songs
// ABOUTME: Header plus raw note list; columnar layout is rebuilt on load

package corpus

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"melodysearch/song"
)

// msong file layout, all little endian:
//
//	magic "MSNG"  version:u16  quarter_note:u32
//	title_len:u16 title        num_sigs:u16  sigs[num_sigs]{onset:u32 num:u8 denom_log2:u8}
//	num_notes:u32 notes[num_notes]{onset:u32 pitch:u8 dur:u16 track:u8}
const (
	msongMagic   = "MSNG"
	msongVersion = 1
)

// ReadSongFile reads one .msong file and builds the columnar song from it.
func ReadSongFile(path, id string) (*song.Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open song file: %w", err)
	}
	defer func() { _ = f.Close() }()

	s, err := readSong(f, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func readSong(r io.Reader, id string) (*song.Song, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if string(magic[:]) != msongMagic {
		return nil, fmt.Errorf("not an msong file (magic %q)", magic)
	}

	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("failed to read version: %w", err)
	}
	if version != msongVersion {
		return nil, fmt.Errorf("unsupported msong version %d", version)
	}

	var quarterNote uint32
	if err := binary.Read(r, binary.LittleEndian, &quarterNote); err != nil {
		return nil, fmt.Errorf("failed to read resolution: %w", err)
	}

	var titleLen uint16
	if err := binary.Read(r, binary.LittleEndian, &titleLen); err != nil {
		return nil, fmt.Errorf("failed to read title length: %w", err)
	}
	title := make([]byte, titleLen)
	if _, err := io.ReadFull(r, title); err != nil {
		return nil, fmt.Errorf("failed to read title: %w", err)
	}

	var numSigs uint16
	if err := binary.Read(r, binary.LittleEndian, &numSigs); err != nil {
		return nil, fmt.Errorf("failed to read signature count: %w", err)
	}
	sigs := make([]song.TimeSignature, numSigs)
	for i := range sigs {
		var raw struct {
			Onset     uint32
			Numerator uint8
			DenomLog2 uint8
		}
		if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
			return nil, fmt.Errorf("failed to read time signature %d: %w", i, err)
		}
		sigs[i] = song.TimeSignature(raw)
	}

	var numNotes uint32
	if err := binary.Read(r, binary.LittleEndian, &numNotes); err != nil {
		return nil, fmt.Errorf("failed to read note count: %w", err)
	}
	notes := make([]song.Note, numNotes)
	for i := range notes {
		var raw struct {
			Onset    uint32
			Pitch    uint8
			Duration uint16
			Track    uint8
		}
		if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
			return nil, fmt.Errorf("failed to read note %d: %w", i, err)
		}
		notes[i] = song.Note{
			Onset:    raw.Onset,
			Pitch:    int8(raw.Pitch),
			Duration: raw.Duration,
			Track:    raw.Track,
		}
	}

	s, err := song.Build(id, string(title), notes, quarterNote, sigs)
	if err != nil {
		return nil, fmt.Errorf("failed to build song: %w", err)
	}
	return s, nil
}

// WriteSongFile writes notes and metadata as a .msong file.
func WriteSongFile(path, title string, notes []song.Note, quarterNote uint32, sigs []song.TimeSignature) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create song file: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := f
	if _, err := w.Write([]byte(msongMagic)); err != nil {
		return fmt.Errorf("failed to write magic: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(msongVersion)); err != nil {
		return fmt.Errorf("failed to write version: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, quarterNote); err != nil {
		return fmt.Errorf("failed to write resolution: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(title))); err != nil {
		return fmt.Errorf("failed to write title length: %w", err)
	}
	if _, err := w.Write([]byte(title)); err != nil {
		return fmt.Errorf("failed to write title: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(sigs))); err != nil {
		return fmt.Errorf("failed to write signature count: %w", err)
	}
	for _, sig := range sigs {
		if err := binary.Write(w, binary.LittleEndian, struct {
			Onset     uint32
			Numerator uint8
			DenomLog2 uint8
		}(sig)); err != nil {
			return fmt.Errorf("failed to write time signature: %w", err)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(notes))); err != nil {
		return fmt.Errorf("failed to write note count: %w", err)
	}
	for _, n := range notes {
		if err := binary.Write(w, binary.LittleEndian, struct {
			Onset    uint32
			Pitch    uint8
			Duration uint16
			Track    uint8
		}{n.Onset, uint8(n.Pitch), n.Duration, n.Track}); err != nil {
			return fmt.Errorf("failed to write note: %w", err)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close song file: %w", err)
	}
	return nil
}
