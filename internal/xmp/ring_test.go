package xmp_test

import (
	"math/rand"
	"testing"

	"github.com/hbomb79/Cull/internal/xmp"
	"github.com/stretchr/testify/assert"
)

func Test_DelimiterMatcher_MatchesExactSequence(t *testing.T) {
	t.Parallel()

	for _, delimiter := range [][]byte{xmp.PacketOpen, xmp.PacketClose} {
		t.Run(string(delimiter), func(t *testing.T) {
			matcher := xmp.NewDelimiterMatcher(delimiter)
			for i, b := range delimiter {
				assert.Falsef(t, matcher.Matches(), "matcher reported a match before byte %d was pushed", i)
				matcher.Push(b)
			}

			assert.True(t, matcher.Matches(), "matcher failed to report a match after the full delimiter was pushed")
		})
	}
}

func Test_DelimiterMatcher_MatchUnaffectedByPrecedingBytes(t *testing.T) {
	t.Parallel()

	// The matcher only ever inspects the most recent window, so a match
	// must occur at the same logical position no matter what came before
	// it, including partial copies of the delimiter itself.
	prefixes := []string{
		"",
		"garbage bytes",
		"<x:xmpmet",
		"<x:xmpmeta",
		"</x:xmpmeta>",
		"<<<<<<<<<<<<<<<<<<<",
	}

	for _, prefix := range prefixes {
		matcher := xmp.NewDelimiterMatcher(xmp.PacketOpen)
		for _, b := range []byte(prefix) {
			matcher.Push(b)
		}

		for _, b := range xmp.PacketOpen {
			matcher.Push(b)
		}

		assert.Truef(t, matcher.Matches(), "matcher failed to match delimiter preceded by %q", prefix)
	}
}

func Test_DelimiterMatcher_MatchInvalidatedByLaterBytes(t *testing.T) {
	t.Parallel()

	matcher := xmp.NewDelimiterMatcher(xmp.PacketOpen)
	for _, b := range xmp.PacketOpen {
		matcher.Push(b)
	}
	assert.True(t, matcher.Matches())

	matcher.Push('z')
	assert.False(t, matcher.Matches(), "matcher window should no longer equal the delimiter once a later byte evicts the oldest")
}

func Test_DelimiterMatcher_NoFalsePositives(t *testing.T) {
	t.Parallel()

	// A stream which never contains ':' can never contain either
	// delimiter; the matcher must stay quiet for its entire length.
	random := rand.New(rand.NewSource(42))
	matcher := xmp.NewDelimiterMatcher(xmp.PacketOpen)
	for i := 0; i < 1<<16; i++ {
		b := byte(random.Intn(256))
		if b == ':' {
			b = '_'
		}

		matcher.Push(b)
		assert.False(t, matcher.Matches(), "matcher reported a match inside a stream which cannot contain the delimiter")
	}
}

func Test_DelimiterMatcher_Delimiter(t *testing.T) {
	t.Parallel()

	matcher := xmp.NewDelimiterMatcher(xmp.PacketClose)
	assert.Equal(t, xmp.PacketClose, matcher.Delimiter())
}
