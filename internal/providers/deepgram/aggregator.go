package deepgram

import (
	"strings"
	"sync"
)

// transcriptAggregator joins final results, falling back to the latest
// interim text when the stream ended before it was finalized.
type transcriptAggregator struct {
	mu     sync.Mutex
	finals []string
	latest string
}

func (a *transcriptAggregator) Add(text string, final bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	a.latest = text
	if final {
		a.finals = append(a.finals, text)
	}
}

func (a *transcriptAggregator) Raw() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	joined := strings.TrimSpace(strings.Join(a.finals, " "))
	switch {
	case joined == "":
		return a.latest
	case a.latest == "", strings.HasSuffix(joined, a.latest):
		return joined
	case len(a.latest) > len(joined):
		return strings.TrimSpace(joined + " " + a.latest)
	default:
		return joined
	}
}
