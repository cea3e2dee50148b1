package bus

import "context"

// Bus carries normalized events from the API process to workers.
type Bus interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Close()
}
