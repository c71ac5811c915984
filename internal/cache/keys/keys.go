// Package keys builds deterministic response-cache keys for AOI queries.
package keys

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// Prefix namespaces every soils response key; invalidation deletes by this
// prefix plus the layer token.
const Prefix = "soils"

// LayerPrefix is the delete target for one layer's cached responses.
func LayerPrefix(layer string) string {
	return Prefix + ":" + sanitizeLayer(layer) + ":"
}

// ResponseKey derives the cache key for one AOI query from the serialized
// query geometry. The geometry JSON is compacted before hashing so
// semantically identical requests (whitespace aside) share a key.
func ResponseKey(layer string, geomJSON []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, geomJSON); err != nil {
		// hash the raw text if it is not valid JSON; determinism is all
		// that matters here
		buf.Reset()
		buf.Write(geomJSON)
	}
	sum := xxhash.Sum64(buf.Bytes())
	return fmt.Sprintf("%saoi=%016x", LayerPrefix(layer), sum)
}

func sanitizeLayer(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range strings.ToLower(s) {
		out := rune(0)
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f':
			out = '_'
		case isAlphaNum(r) || r == '_' || r == '-':
			out = r
		default:
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		unicode.IsDigit(r)
}
