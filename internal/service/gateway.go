package service

import "context"

// Gateway is a chat platform connection with an explicit lifecycle.
// Start blocks until ctx is canceled or the connection fails.
type Gateway interface {
	Name() string
	Start(ctx context.Context) error
	Stop()
}
