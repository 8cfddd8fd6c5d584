package index

// MI-File specific constants
const (
	DEFAULT_AMPLIFICATION = 1
	DEFAULT_BUILD_WORKERS = 4
	DEFAULT_BLOOM_BITS    = 1 << 20
	DEFAULT_BLOOM_KEYS    = 1 << 16
)
