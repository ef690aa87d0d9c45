// Package signature verifies X-Hub-Signature headers on PubSubHubbub
// notification deliveries.
package signature

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"
)

// ErrUnsupportedAlgorithm is returned when the signature header names a
// keyed-hash algorithm this package cannot compute. Callers should treat it
// the same as a missing or invalid header, not as a server error.
var ErrUnsupportedAlgorithm = errors.New("unsupported signature algorithm")

// algorithms maps the algorithm name carried in the signature header to its
// hash constructor. YouTube's hub sends sha1; the rest cover hubs that have
// moved to the SHA-2 family.
var algorithms = map[string]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha256": sha256.New,
	"sha384": sha512.New384,
	"sha512": sha512.New,
}

// ParseHeader splits an X-Hub-Signature value of the form "algo=hexdigest"
// into its algorithm name and hex signature, both lower-cased. The algorithm
// is everything before the first "=" and the signature everything after the
// last "=", which tolerates both a bare algorithm name and "=" padding in
// the signature portion.
func ParseHeader(header string) (algo, hexSig string) {
	algo = header
	if i := strings.Index(header, "="); i >= 0 {
		algo = header[:i]
	}
	if i := strings.LastIndex(header, "="); i >= 0 {
		hexSig = header[i+1:]
	}
	return strings.ToLower(algo), strings.ToLower(hexSig)
}

// Verify computes the keyed hash of body with secret under the named
// algorithm and compares it against hexSig. It returns false on mismatch and
// ErrUnsupportedAlgorithm when algo is unknown.
func Verify(secret, algo, hexSig string, body []byte) (bool, error) {
	newHash, ok := algorithms[algo]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algo)
	}

	mac := hmac.New(newHash, []byte(secret))
	mac.Write(body)
	computed := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(computed), []byte(strings.ToLower(hexSig))), nil
}
