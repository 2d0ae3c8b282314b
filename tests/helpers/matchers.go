package helpers

import (
	"github.com/hbomb79/Cull/internal/event"
	"github.com/hbomb79/go-chanassert"
)

// MatchEvent returns a matcher which will match any bus message carrying
// the event name provided, regardless of payload.
func MatchEvent(name event.Event) chanassert.Matcher[event.HandlerEvent] {
	return chanassert.MatchPredicate(func(message event.HandlerEvent) bool {
		return message.Event == name
	})
}

// MatchSweepComplete returns a chanassert matcher which will match a
// sweep completion message whose statistics equal those provided.
func MatchSweepComplete(stats event.SweepStats) chanassert.Matcher[event.HandlerEvent] {
	return chanassert.MatchPredicate(func(message event.HandlerEvent) bool {
		if message.Event != event.SWEEP_COMPLETE {
			return false
		}

		payload, ok := message.Payload.(event.SweepStats)
		if !ok {
			return false
		}

		return payload == stats
	})
}
