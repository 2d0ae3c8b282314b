package xmp

// DelimiterMatcher is a fixed-capacity ring over the bytes most recently
// pushed through it, used to spot a literal delimiter in a stream without
// any look-ahead or backtracking. The matcher is bound to its delimiter at
// construction, so the ring capacity always equals the delimiter length and
// a match test can never be run against a pattern of the wrong size.
//
// Push is O(1); Matches is O(len(delimiter)).
type DelimiterMatcher struct {
	delimiter []byte
	window    []byte
	cursor    int
}

// NewDelimiterMatcher creates a matcher for the given literal delimiter. The
// window starts zeroed, which cannot equal any delimiter containing no NUL
// bytes, so Matches is well-defined before the stream has filled the ring.
func NewDelimiterMatcher(delimiter []byte) *DelimiterMatcher {
	return &DelimiterMatcher{
		delimiter: delimiter,
		window:    make([]byte, len(delimiter)),
	}
}

// Push records the next stream byte, evicting the oldest byte in the window.
func (matcher *DelimiterMatcher) Push(b byte) {
	matcher.window[matcher.cursor] = b
	matcher.cursor = (matcher.cursor + 1) % len(matcher.window)
}

// Matches reports whether the window, read oldest to newest, equals the
// delimiter this matcher was constructed with.
func (matcher *DelimiterMatcher) Matches() bool {
	for i, want := range matcher.delimiter {
		if matcher.window[(matcher.cursor+i)%len(matcher.window)] != want {
			return false
		}
	}

	return true
}

// Delimiter returns the literal sequence this matcher detects.
func (matcher *DelimiterMatcher) Delimiter() []byte {
	return matcher.delimiter
}
