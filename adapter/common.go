package adapter

// Closer is implemented by upstreams holding connections or transports
// that must be released at the end of a run.
type Closer interface {
	Close() error
}
