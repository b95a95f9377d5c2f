package publisher

// Publisher fans imported events out to downstream consumers
// (activity feeds, notifications).
type Publisher interface {
	// Publish publishes a message keyed by source slug
	Publish(source string, message []byte) error

	// Close releases the underlying connection
	Close() error
}
