package session

import "errors"

// ErrConversationNotFound is returned when an operation names a
// conversation id the store does not know.
var ErrConversationNotFound = errors.New("conversation not found")
