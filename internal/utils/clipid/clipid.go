package clipid

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Prefix marks audio clip identifiers.
const Prefix = "aud_"

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// New returns a fresh aud_* ULID string. Safe for concurrent use.
func New() string {
	entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	entropyMu.Unlock()
	return Prefix + strings.ToLower(id.String())
}

// IsValid reports whether value is an aud_* ULID. Handlers use it to reject
// path traversal and junk before touching a store.
func IsValid(value string) bool {
	if !strings.HasPrefix(value, Prefix) {
		return false
	}
	_, err := Parse(value)
	return err == nil
}

// Parse strips the prefix and returns the ULID.
func Parse(value string) (ulid.ULID, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), Prefix)
	return ulid.ParseStrict(strings.ToUpper(value))
}

// Time returns the creation time encoded in the id.
func Time(value string) (time.Time, error) {
	id, err := Parse(value)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(id.Time()), nil
}
