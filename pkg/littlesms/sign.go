package littlesms

import (
	"crypto/md5"  //nolint:gosec // digest scheme dictated by the remote API
	"crypto/sha1" //nolint:gosec // digest scheme dictated by the remote API
	"encoding/hex"
	"sort"
	"strings"
)

// Sign computes the request signature for normalized params:
// md5_hex(sha1_hex(user + values in sorted key order + key)).
// Keys are sorted byte-wise, so the result does not depend on insertion order
// or locale.
func Sign(user, key string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(user)
	for _, k := range keys {
		b.WriteString(params[k])
	}
	b.WriteString(key)

	inner := sha1.Sum([]byte(b.String()))
	outer := md5.Sum([]byte(hex.EncodeToString(inner[:])))
	return hex.EncodeToString(outer[:])
}
