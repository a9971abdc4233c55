package hashing

import (
	"crypto/rand"
	"encoding/binary"
	"os"
	"strconv"
)

const murmur2Magic = 0x5bd1e995

// DeterministicSeed is the seed of every Hashing constructed in deterministic mode.
const DeterministicSeed int64 = 7114160726623585955

// EnvDeterministic names the environment variable consulted by FromEnvironment.
const EnvDeterministic = "ROPES_DETERMINISTIC_HASHING"

// Hashing is a hashing service with a fixed seed. It is immutable and may be
// shared freely between goroutines.
type Hashing struct {
	seed int64
}

// New creates a hashing service. With deterministic set, the seed is
// DeterministicSeed; otherwise a fresh random seed is drawn.
func New(deterministic bool) *Hashing {
	if deterministic {
		return &Hashing{seed: DeterministicSeed}
	}
	return &Hashing{seed: randomSeed()}
}

// FromEnvironment creates a hashing service, selecting deterministic mode if
// the environment variable EnvDeterministic holds a true value.
func FromEnvironment() *Hashing {
	deterministic := false
	if v, ok := os.LookupEnv(EnvDeterministic); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			tracer().Errorf("hashing: cannot interpret %s=%q: %v", EnvDeterministic, v, err)
		}
		deterministic = b
	}
	tracer().Debugf("hashing: deterministic = %v", deterministic)
	return New(deterministic)
}

func randomSeed() int64 {
	var b [8]byte
	_, _ = rand.Read(b[:]) // crypto/rand.Read never returns an error
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// Seed returns the seed of this service.
func (h *Hashing) Seed() int64 {
	return h.seed
}

// Hash hashes a single value, starting from seed.
func (h *Hashing) Hash(seed, value int64) int64 {
	return End(Update(h.Start(seed), value))
}

// Start begins a hash computation.
func (h *Hashing) Start(value int64) int64 {
	return int64(uint64(value) + uint64(h.seed))
}

// Update mixes value into hash. Updates are order dependent: values have to
// be fed in a fixed left-to-right order.
func Update(hash, value int64) int64 {
	x := uint64(hash) + uint64(value)
	return int64(murmur(murmur(x) + (x >> 32)))
}

// End finalizes a hash computation.
func End(hash int64) int64 {
	return int64(murmurStep(murmurStep(uint64(hash), 10), 17))
}

func murmur(h uint64) uint64 {
	return murmurStep(h, 16)
}

func murmurStep(h, k uint64) uint64 {
	h += k
	h *= murmur2Magic
	h ^= h >> 16
	return h
}
