package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Key builds a canonical cache key from an operation prefix and its
// parameters. Parameters are serialized in sorted name order so the same
// call produces the same key regardless of how the map was populated. A
// short hash keeps keys unique while the serialized tail keeps them
// human-inspectable.
func Key(prefix string, params map[string]any) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([][2]any, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, [2]any{name, params[name]})
	}

	serialized, err := json.Marshal(pairs)
	if err != nil {
		// Parameters are plain strings and numbers in practice; fall back
		// to fmt so a bad value still yields a usable, stable key.
		serialized = []byte(fmt.Sprintf("%v", pairs))
	}

	sum := md5.Sum(serialized)
	hash := hex.EncodeToString(sum[:])[:8]
	return prefix + ":" + hash + ":" + string(serialized)
}
