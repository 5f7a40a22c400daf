// Package id provides ULID-based identifiers for blueprints and requests.
//
// Identifiers are lexicographically sortable by creation time, which the
// blueprint repositories rely on to list newest-first without a secondary
// index. Every identifier carries a short type prefix so logs stay readable:
//
//	bp_01HZX3V6Q9W1J9M8S0F2B7K4TN
//	req_01HZX3V6QA0YF7C3V2E4D9R1XM
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// BlueprintID identifies a persisted blueprint
type BlueprintID string

// RequestID identifies an API request (also used as trace id)
type RequestID string

// SpanID identifies a single traced operation
type SpanID string

const (
	BlueprintPrefix = "bp"
	RequestPrefix   = "req"
	SpanPrefix      = "span"
)

// Generator generates monotonic ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand.
// Entropy is monotonic so ids minted in the same millisecond still sort in
// creation order.
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: entropy,
	}
}

// Generate creates a new ULID stamped with the current time
func (g *Generator) Generate() ulid.ULID {
	return g.GenerateAt(time.Now())
}

// GenerateAt creates a new ULID stamped with t
func (g *Generator) GenerateAt(t time.Time) ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(t), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewBlueprintID generates a blueprint id stamped with the creation time
func NewBlueprintID(createdAt time.Time) BlueprintID {
	return BlueprintID(fmt.Sprintf("%s_%s", BlueprintPrefix, Default().GenerateAt(createdAt).String()))
}

// NewRequestID generates a new request id
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// NewSpanID generates a new span id
func NewSpanID() SpanID {
	return SpanID(Default().GenerateWithPrefix(SpanPrefix))
}

func (id BlueprintID) String() string { return string(id) }
func (id RequestID) String() string   { return string(id) }
func (id SpanID) String() string      { return string(id) }

// IsValid checks if a bare id string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// IsValidPrefixed checks that id has the form "<prefix>_<ulid>"
func IsValidPrefixed(id, prefix string) bool {
	rest, ok := strings.CutPrefix(id, prefix+"_")
	return ok && IsValid(rest)
}

// Timestamp extracts the creation time from a bare or prefixed ULID
func Timestamp(id string) (time.Time, error) {
	if i := strings.LastIndexByte(id, '_'); i >= 0 {
		id = id[i+1:]
	}
	parsed, err := ulid.Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
