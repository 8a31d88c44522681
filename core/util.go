package core

import (
	"encoding/json"
	"fmt"
)

// StateLabel returns the generated label for a node with no author-
// given name: "stateN" for index N (spec.md §3 Machine.names).
func StateLabel(index int) string {
	return fmt.Sprintf("state%d", index)
}

// Canonicalize round-trips x through JSON to normalize its shape
// (map key order, numeric types), the way Storage props and Calls
// arrive after a YAML decode.
func Canonicalize(x interface{}) (interface{}, error) {
	js, err := json.Marshal(&x)
	if err != nil {
		return nil, err
	}
	var y interface{}
	if err := json.Unmarshal(js, &y); err != nil {
		return nil, err
	}
	return y, nil
}

// GrammarDigest returns a stable hash of a canonicalized Grammar,
// suitable as a compile-cache key (cache.Cache) since Translate is a
// pure function of its input (spec.md §5 "Ordering guarantees").
func GrammarDigest(g *Grammar) (string, error) {
	canon, err := Canonicalize(g)
	if err != nil {
		return "", err
	}
	js, err := json.Marshal(canon)
	if err != nil {
		return "", err
	}
	return fnv64Hex(js), nil
}

// fnv64Hex is a small stable non-cryptographic hash, used for
// GrammarDigest.
func fnv64Hex(bs []byte) string {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	var h uint64 = offset64
	for _, b := range bs {
		h ^= uint64(b)
		h *= prime64
	}
	return fmt.Sprintf("%016x", h)
}
