package engine

import "errors"

// Error taxonomy shared by every package. Callers match with errors.Is;
// producers wrap with fmt.Errorf("...: %w", Err...).
var (
	ErrInvalidReference   = errors.New("invalid video reference")
	ErrDiscoveryFailed    = errors.New("transcript discovery failed")
	ErrProcessingFailed   = errors.New("video processing failed")
	ErrFetchFailed        = errors.New("fetch failed")
	ErrPersistenceCorrupt = errors.New("chat history unreadable")

	ErrInvalidTransition = errors.New("invalid session transition")
	ErrUnknownLanguage   = errors.New("language not in transcript catalog")
	ErrNotReady          = errors.New("no processed video in session")
	ErrStaleSession      = errors.New("session changed while request was in flight")
	ErrChatBusy          = errors.New("previous question is still awaiting an answer")
)
