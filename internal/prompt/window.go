package prompt

import "carechat-backend/internal/models"

// Window selects which slice of the stored history is forwarded to the
// completion gateway. The shipped default forwards everything, which is a
// known scaling ceiling for long conversations; LastN exists as the first
// alternative.
type Window interface {
	Apply(history []models.Message) []models.Message
}

// FullHistory forwards the entire history on every call.
type FullHistory struct{}

func (FullHistory) Apply(history []models.Message) []models.Message {
	return history
}

// LastN keeps only the most recent N messages.
type LastN struct {
	N int
}

func (w LastN) Apply(history []models.Message) []models.Message {
	if w.N <= 0 || len(history) <= w.N {
		return history
	}
	return history[len(history)-w.N:]
}

// WindowFor returns the strategy for a configured window size, where zero
// (or negative) means full history.
func WindowFor(size int) Window {
	if size > 0 {
		return LastN{N: size}
	}
	return FullHistory{}
}
