package xmp

const (
	DefaultChunkSize    = 128 << 10
	DefaultTailWindow   = 1 << 20
	DefaultMaxScanBytes = 1 << 30
)

// Config holds the tunable sizes for a Scanner. The zero value for any field
// is replaced with the package default, which preserves the intended ordering
// of chunk size, well below tail window, well below scan ceiling.
type Config struct {
	// ChunkSize is the size of each read issued against the file.
	ChunkSize int `yaml:"chunk_size" env:"CHUNK_SIZE" env-default:"131072"`

	// TailWindow is how many bytes before end-of-file the cheap first
	// scan phase begins at.
	TailWindow int64 `yaml:"tail_window" env:"TAIL_WINDOW" env-default:"1048576"`

	// MaxScanBytes caps the bytes a single scan phase may examine before
	// it gives up. This is the only bound on scan latency for very large
	// files which carry no packet at all.
	MaxScanBytes int64 `yaml:"max_scan_bytes" env:"MAX_SCAN_BYTES" env-default:"1073741824"`
}

func (config Config) withDefaults() Config {
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultChunkSize
	}
	if config.TailWindow <= 0 {
		config.TailWindow = DefaultTailWindow
	}
	if config.MaxScanBytes <= 0 {
		config.MaxScanBytes = DefaultMaxScanBytes
	}

	return config
}
