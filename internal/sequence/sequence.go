package sequence

import "fmt"

// Producer is a zero-argument deferred computation. Callers capture whatever
// context they need in the closure.
type Producer[T any] func() (T, error)

// ProducerError reports the position of the producer that aborted a sequence.
type ProducerError struct {
	Index int
	Err   error
}

func (e *ProducerError) Error() string {
	return fmt.Sprintf("producer %d: %v", e.Index, e.Err)
}

func (e *ProducerError) Unwrap() error { return e.Err }

// Run invokes producers in order, starting each only after the previous one
// returned. Results keep input order, including zero values. The first
// failure aborts the sequence: later producers are never invoked and no
// partial results are returned.
func Run[T any](producers []Producer[T]) ([]T, error) {
	results := make([]T, 0, len(producers))
	for i, p := range producers {
		r, err := p()
		if err != nil {
			return nil, &ProducerError{Index: i, Err: err}
		}
		results = append(results, r)
	}
	return results, nil
}

// Map builds one producer per item with fn and runs them with Run.
func Map[S, T any](items []S, fn func(S) (T, error)) ([]T, error) {
	producers := make([]Producer[T], len(items))
	for i, item := range items {
		producers[i] = func() (T, error) { return fn(item) }
	}
	return Run(producers)
}

// OrZero turns a failing producer into one that yields the zero value. onErr,
// when set, observes the swallowed error. Use it to opt a single item out of
// the abort-on-first-failure policy.
func OrZero[T any](p Producer[T], onErr func(error)) Producer[T] {
	return func() (T, error) {
		r, err := p()
		if err != nil {
			if onErr != nil {
				onErr(err)
			}
			var zero T
			return zero, nil
		}
		return r, nil
	}
}
