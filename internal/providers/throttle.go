package providers

import (
	"context"

	"git.home.luguber.info/inful/newsletter/internal/sequence"
)

// ThrottledPassages routes every passage lookup through a shared gate so that
// at most one request is in flight against the passage API, whoever asks.
type ThrottledPassages struct {
	next PassageProvider
	gate *sequence.Gate
}

// NewThrottledPassages wraps next with gate.
func NewThrottledPassages(next PassageProvider, gate *sequence.Gate) *ThrottledPassages {
	return &ThrottledPassages{next: next, gate: gate}
}

func (t *ThrottledPassages) GetPassageMarkup(ctx context.Context, reference string, opts PassageOptions) (string, error) {
	var markup string
	err := t.gate.Do(ctx, func(ctx context.Context) error {
		var err error
		markup, err = t.next.GetPassageMarkup(ctx, reference, opts)
		return err
	})
	return markup, err
}
