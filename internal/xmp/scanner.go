// Package xmp locates an embedded XMP packet inside an arbitrary binary
// media file, without any container-aware parsing, by streaming the file in
// chunks and watching for the literal packet delimiters. The recovered
// packet text can then be interrogated for the small set of fields the
// selection pipeline cares about (the rating, and optionally the label).
package xmp

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hbomb79/Cull/pkg/logger"
)

var log = logger.Get("XMP")

// PacketOpen and PacketClose are the literal byte sequences delimiting an
// embedded XMP packet. They are matched byte-for-byte, never parsed.
var (
	PacketOpen  = []byte("<x:xmpmeta")
	PacketClose = []byte("</x:xmpmeta>")
)

// ErrPacketNotFound indicates that no packet was seen inside the scanned
// regions of the file. A scan abandoned because it hit the configured byte
// ceiling reports this same outcome; the caller cannot usefully distinguish
// "absent" from "absent within budget".
var ErrPacketNotFound = errors.New("no xmp packet found in file")

// Scanner finds embedded XMP packets using the sizes in its Config. A
// Scanner is stateless between calls and is safe to share across goroutines;
// each scan owns its own buffers and matcher state.
type Scanner struct {
	config Config
}

func NewScanner(config Config) *Scanner {
	return &Scanner{config: config.withDefaults()}
}

// LocatePacket searches the file at the given path for an XMP packet using a
// two phase strategy: first only the configured tail window of the file is
// scanned, exploiting how media containers usually place metadata near the
// end, and only if that misses is the file scanned from the top. The first
// packet found within the active phase wins.
//
// The returned packet always starts with PacketOpen and ends with
// PacketClose. If both phases miss, ErrPacketNotFound is returned; I/O
// failures are returned as-is without attempting the other phase.
func (scanner *Scanner) LocatePacket(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	packet, found, err := scanner.Scan(file, true)
	if err != nil {
		return nil, fmt.Errorf("tail scan of %s failed: %w", path, err)
	}

	if !found {
		log.Verbosef("No packet in tail window of %s, falling back to full scan\n", path)
		packet, found, err = scanner.Scan(file, false)
		if err != nil {
			return nil, fmt.Errorf("full scan of %s failed: %w", path, err)
		}
	}

	if !found {
		return nil, ErrPacketNotFound
	}

	log.Verbosef("Located %d byte packet in %s\n", len(packet), path)
	return packet, nil
}

// Scan performs a single forward pass over src looking for a delimited
// packet. When fromTail is set the pass begins TailWindow bytes before the
// end of the stream (clamped to the start for smaller streams); otherwise it
// begins at byte zero. The boolean reports whether a packet was found;
// exhausting the stream, or the configured byte ceiling, is not an error.
//
// Matching is incremental so a delimiter split across two chunk reads is
// still detected. The open and close delimiters are tracked by independent
// matchers; bytes consumed while still seeking the opener are never fed to
// the close matcher.
func (scanner *Scanner) Scan(src io.ReadSeeker, fromTail bool) ([]byte, bool, error) {
	start := int64(0)
	if fromTail {
		size, err := src.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, false, fmt.Errorf("failed to measure stream: %w", err)
		}

		start = size - scanner.config.TailWindow
		if start < 0 {
			start = 0
		}
	}

	if _, err := src.Seek(start, io.SeekStart); err != nil {
		return nil, false, fmt.Errorf("failed to seek to scan start: %w", err)
	}

	var (
		openMatcher  = NewDelimiterMatcher(PacketOpen)
		closeMatcher = NewDelimiterMatcher(PacketClose)
		chunk        = make([]byte, scanner.config.ChunkSize)
		packet       []byte
		examined     int64
		seekingClose bool
	)

	for {
		n, err := src.Read(chunk)
		for _, b := range chunk[:n] {
			examined++
			if examined > scanner.config.MaxScanBytes {
				log.Debugf("Abandoning scan after %d bytes with no packet found\n", examined-1)
				return nil, false, nil
			}

			if !seekingClose {
				openMatcher.Push(b)
				if openMatcher.Matches() {
					seekingClose = true
					packet = append(packet, openMatcher.Delimiter()...)
				}
				continue
			}

			closeMatcher.Push(b)
			packet = append(packet, b)
			if closeMatcher.Matches() {
				return packet, true, nil
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, false, nil
			}

			return nil, false, fmt.Errorf("failed to read chunk: %w", err)
		}
	}
}

// ReadRating is the composed form of LocatePacket and ExtractRating.
func (scanner *Scanner) ReadRating(path string) (int, error) {
	packet, err := scanner.LocatePacket(path)
	if err != nil {
		return 0, err
	}

	return ExtractRating(packet)
}

// PacketFields carries the selection-relevant fields recovered from a
// single located packet.
type PacketFields struct {
	Rating int
	Label  string
}

// ReadPacketFields locates the packet in the file at the given path once and
// extracts every field the selection pipeline evaluates from it.
func (scanner *Scanner) ReadPacketFields(path string) (PacketFields, error) {
	packet, err := scanner.LocatePacket(path)
	if err != nil {
		return PacketFields{}, err
	}

	rating, err := ExtractRating(packet)
	if err != nil {
		return PacketFields{}, err
	}

	label, _ := ExtractLabel(packet)
	return PacketFields{Rating: rating, Label: label}, nil
}
