package config

const (
	// DefaultPort is the default port of the application server
	DefaultPort = 4001

	DefaultDBPath        = "data/library.db"
	DefaultSessionDBPath = "data/session"
	DefaultChunkSize     = 327680

	// DefaultMaxUploadBytes caps the size of a single uploaded video
	DefaultMaxUploadBytes = 1 << 30
)
