package doat

import (
	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/doat/archive"
	"github.com/npillmayer/doat/dac"
	"github.com/npillmayer/doat/dtrie"
	"github.com/npillmayer/doat/stt"
)

// Variant selects a trie's storage strategy.
type Variant int

const (
	// Single stores branching prefixes in a double array and compacts
	// non-branching tails into a suffix pool.
	Single Variant = iota
	// Double splits keys across a forward trie and a reverse trie of
	// shared suffixes, rearranged on conflict by R-1 through R-4.
	Double
)

// config holds the knobs New accepts as functional options.
type config struct {
	coreSize  int32
	tableSize int32
	poolSize  int32
	trace     tracing.Trace
}

// Option configures a Trie at construction. See WithInitialSize and
// WithTracer.
type Option func(*config)

// WithInitialSize sets the initial capacity of a new Trie's internal
// arrays (double-array cells for both variants, plus the suffix pool for
// Single or the index/accept tables for Double). It is a hint only: every
// array still grows on demand past this size.
func WithInitialSize(n int32) Option {
	return func(c *config) {
		c.coreSize = n
		c.tableSize = n
		c.poolSize = n
	}
}

// WithTracer overrides the default tracing.Select("doat") sink Build uses
// to report archive writes. Most callers never need this; it exists for
// embedding doat in a larger program with its own tracing.Trace wiring.
func WithTracer(t tracing.Trace) Option {
	return func(c *config) { c.trace = t }
}

// New creates an empty, owning Trie of the given variant.
func New(variant Variant, opts ...Option) Trie {
	cfg := config{
		coreSize:  dac.DefaultSize,
		tableSize: dtrie.DefaultTableSize,
		poolSize:  stt.DefaultPoolSize,
		trace:     tracer(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	assert(cfg.coreSize > 0 && cfg.tableSize > 0 && cfg.poolSize > 0, "WithInitialSize must be positive")
	switch variant {
	case Double:
		return &doubleTrie{t: dtrie.NewSize(cfg.coreSize, cfg.tableSize), trace: cfg.trace}
	default:
		return &singleTrie{t: stt.NewSize(cfg.coreSize, cfg.poolSize), trace: cfg.trace}
	}
}

// Open loads a borrowed, read-only Trie from an archive file, detecting
// the variant from its leading magic.
func Open(path string) (Trie, error) {
	format, err := archive.Sniff(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case archive.SingleTrie:
		t, err := archive.LoadSingleTrie(path)
		if err != nil {
			return nil, err
		}
		return &singleTrie{t: t, trace: tracer()}, nil
	case archive.TwoTrie:
		t, err := archive.LoadTwoTrie(path)
		if err != nil {
			return nil, err
		}
		return &doubleTrie{t: t, trace: tracer()}, nil
	default:
		return nil, ErrBadArchive
	}
}
