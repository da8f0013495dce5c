package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 digest of data (64 characters).
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Keyer derives storage keys for cached data.
type Keyer interface {
	// LayoutKey returns the key of a placement computed for the request
	// whose canonical encoding hashes to requestHash.
	LayoutKey(requestHash string, opts LayoutKeyOpts) string
}

// LayoutKeyOpts holds the inputs that change a placement without being
// part of the request itself.
type LayoutKeyOpts struct {
	Engine  string `json:"engine"`  // layout engine name, e.g. "graphviz"
	Version int    `json:"version"` // bumped when the placement encoding changes
}

// NewDefaultKeyer returns the keyer producing "layout:<sha256>" keys over
// the request hash and options.
func NewDefaultKeyer() Keyer { return defaultKeyer{} }

type defaultKeyer struct{}

func (defaultKeyer) LayoutKey(requestHash string, opts LayoutKeyOpts) string {
	data, _ := json.Marshal(struct {
		Request string        `json:"request"`
		Opts    LayoutKeyOpts `json:"opts"`
	}{requestHash, opts})
	return "layout:" + Hash(data)
}

// NewScopedKeyer prefixes every key of inner (the default keyer when nil),
// so several deployments can share one Redis database:
//
//	keyer := NewScopedKeyer(nil, "jsondiagram:")
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return scopedKeyer{inner: inner, prefix: prefix}
}

type scopedKeyer struct {
	inner  Keyer
	prefix string
}

func (k scopedKeyer) LayoutKey(requestHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(requestHash, opts)
}
