package quiz

import (
	"errors"
	"fmt"
)

// Business conditions and failures surfaced by the engine. Callers
// distinguish them with errors.Is and render user-facing messages for
// the recoverable ones.
var (
	// ErrNotFound means no user, topic, word or record exists for the key
	ErrNotFound = errors.New("not found")
	// ErrNoWords means the user has no topic assigned or the topic is empty
	ErrNoWords = errors.New("no words available")
	// ErrSessionExhausted means every selectable word already has an
	// open question in the pool
	ErrSessionExhausted = errors.New("session exhausted")
	// ErrInsufficientVocabulary means the catalogue holds fewer than
	// three possible distractors
	ErrInsufficientVocabulary = errors.New("insufficient vocabulary")
	// ErrStaleAnswer means the answered question was already resolved
	// or never issued; progress must not move
	ErrStaleAnswer = errors.New("stale answer")
	// ErrInvalidSetting means a configuration setter got a non-positive value
	ErrInvalidSetting = errors.New("invalid setting")
	// ErrStorageUnavailable wraps any persistence failure; the engine
	// never retries and never partially applies a mutation
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// storageErr translates an underlying persistence failure into the
// single transient-failure signal while keeping the cause readable.
func storageErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
