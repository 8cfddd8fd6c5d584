package filter

// Filter answers approximate set membership with no false negatives.
type Filter interface {
	Add(key []byte)             // add key to filter
	MayContain(key []byte) bool // false means the key was never added
	KeyLen() int                // number of keys added
	Reset()
}
