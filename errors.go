package relay

import "errors"

// Sentinel errors returned by the public surface. Wrap with fmt.Errorf's
// %w where additional context is useful; callers can still errors.Is
// against these.
var (
	// ErrClosed is returned by any operation attempted after Close.
	ErrClosed = errors.New("relay: client closed")

	// ErrNoServers is returned when constructing a client with an empty
	// host list.
	ErrNoServers = errors.New("relay: no servers configured")

	// ErrNilBody is returned by Request when body is nil.
	ErrNilBody = errors.New("relay: request body must not be nil")

	// ErrBadSubscription names an operation on a subscription that has
	// already been removed from the registry. No function in this
	// package returns it: Subscription.Close on a removed subscription
	// returns nil.
	ErrBadSubscription = errors.New("relay: invalid subscription")

	// ErrNotRequest is returned by Message.Reply when the message was
	// not delivered as part of a request (ReplyTo is empty).
	ErrNotRequest = errors.New("relay: message is not a request")

	// ErrTimeout names a blocking wait that exceeded its deadline. No
	// function in this package returns it: a request timeout closes the
	// inbox subscription instead of reporting an error.
	ErrTimeout = errors.New("relay: timeout")
)
