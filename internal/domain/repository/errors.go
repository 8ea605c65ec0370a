package repository

import "errors"

// ErrUnauthorized marks an authentication failure at the quote source. The
// engine converts it into an explicit error result instead of propagating.
var ErrUnauthorized = errors.New("quote source unauthorized")

// ErrStaleQuote marks a snapshot older than the staleness guard allows
// during an open session.
var ErrStaleQuote = errors.New("quote snapshot stale")
