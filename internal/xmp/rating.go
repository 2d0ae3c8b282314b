package xmp

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	ratingMarker = "xmp:Rating"
	labelMarker  = "xmp:Label"
)

// RatingParseError is returned when a packet contains the rating marker but
// no usable integer could be recovered from its line. The offending line is
// carried verbatim so the file can be diagnosed.
type RatingParseError struct {
	Line string
}

func (err *RatingParseError) Error() string {
	return fmt.Sprintf("failed to parse rating from packet line %q", err.Line)
}

// ExtractRating recovers the integer rating from a located packet. The first
// line containing the rating marker is used; a packet with no such line has
// a rating of zero, which mirrors how unrated files are treated everywhere
// else. Extraction is pure, the same packet always yields the same result.
func ExtractRating(packet []byte) (int, error) {
	line, ok := markerLine(packet, ratingMarker)
	if !ok {
		return 0, nil
	}

	rating, err := strconv.Atoi(digitsOnly(fieldValue(line)))
	if err != nil {
		return 0, &RatingParseError{Line: line}
	}

	return rating, nil
}

// ExtractLabel recovers the colour label from a located packet, reporting
// whether a label marker was present at all. Unlike ratings, labels are free
// text, so the value is unquoted rather than digit-filtered.
func ExtractLabel(packet []byte) (string, bool) {
	line, ok := markerLine(packet, labelMarker)
	if !ok {
		return "", false
	}

	value := strings.TrimSpace(fieldValue(line))
	if len(value) > 0 && (value[0] == '"' || value[0] == '\'') {
		quote := value[0]
		if end := strings.IndexByte(value[1:], quote); end != -1 {
			return value[1 : 1+end], true
		}
		value = value[1:]
	}

	return value, true
}

// markerLine decodes the packet as UTF-8, replacing any invalid sequences
// rather than failing, and returns the first line containing the marker.
func markerLine(packet []byte, marker string) (string, bool) {
	text := strings.ToValidUTF8(string(packet), "�")
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, marker) {
			return line, true
		}
	}

	return "", false
}

// fieldValue isolates the raw value portion of a marker line. Lines using
// attribute syntax yield everything after the first '='; element syntax
// yields the text between the first '>' and the '<' which follows it.
func fieldValue(line string) string {
	if idx := strings.IndexByte(line, '='); idx != -1 {
		return line[idx+1:]
	}

	opening := strings.IndexByte(line, '>')
	if opening == -1 {
		return ""
	}

	value := line[opening+1:]
	if closing := strings.IndexByte(value, '<'); closing != -1 {
		value = value[:closing]
	}

	return value
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
