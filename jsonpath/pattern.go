package jsonpath

// entryKind tags the surface form of one path entry, mirroring the
// heterogeneous array element types the compiler's input surface
// accepts: a string key, a non-negative integer index, or a range.
type entryKind int

const (
	entryKey entryKind = iota
	entryIndex
	entryRange
)

// anyKeySentinel is the reserved value used to encode AnyKey as a
// closed range over both endpoints, per the surface syntax described
// for the compiler's input. It is distinct from -1 (which denotes an
// open-ended range) so the two can never be confused during
// validation.
const anyKeySentinel int64 = -2

// PatternEntry is one element of a caller-supplied pattern, in the raw,
// not-yet-validated surface form the compiler accepts. Build these with
// Key, Index, Range, RangeFrom, or use the AnyKey/AnyIndex sentinels
// directly; hand-rolled values are only needed when decoding patterns
// from an external format (see internal/config).
type PatternEntry struct {
	kind       entryKind
	key        string
	index      int64
	rangeStart int64
	rangeEnd   int64 // -1 means "open" before openEnded adjustment
	openEnded  bool
}

// Key builds a pattern entry that matches a JSON object key exactly.
func Key(k string) PatternEntry {
	return PatternEntry{kind: entryKey, key: k}
}

// Index builds a pattern entry that matches a single array index.
func Index(n int64) PatternEntry {
	return PatternEntry{kind: entryIndex, index: n}
}

// Range builds a pattern entry that matches array indices in [start, end].
func Range(start, end int64) PatternEntry {
	return PatternEntry{kind: entryRange, rangeStart: start, rangeEnd: end}
}

// RangeFrom builds an open-ended pattern entry matching indices >= start.
// rangeEnd of -1 is already the infinity sentinel (see Range), so this
// does not also set openEnded — that flag is reserved for shifting a
// finite, exclusive end down by one, and combining it with -1 is
// rejected by validateEntry as ambiguous.
func RangeFrom(start int64) PatternEntry {
	return PatternEntry{kind: entryRange, rangeStart: start, rangeEnd: -1}
}

// AnyKey matches any JSON object key at its position in the pattern.
var AnyKey = PatternEntry{kind: entryRange, rangeStart: anyKeySentinel, rangeEnd: anyKeySentinel}

// AnyIndex matches any array index at its position in the pattern; it
// is defined as IndexRange(0, infinity), the well-known sentinel named
// in the public surface.
var AnyIndex = RangeFrom(0)

// Pattern is an ordered sequence of entries; an empty pattern matches
// the root value.
type Pattern []PatternEntry

// matcherKind tags a compiled matcher element.
type matcherKind int

const (
	matchKey matcherKind = iota
	matchAnyKey
	matchIndex
	matchIndexRange
)

type matcherElement struct {
	kind       matcherKind
	key        []byte // owned, deduplicated against the compiled set's arena
	index      int64
	rangeStart int64
	rangeEnd   int64 // -1 denotes open-on-the-right (infinity)
}

func (m matcherElement) matches(p pathElement) bool {
	switch m.kind {
	case matchKey:
		return p.kind == pathKey && string(p.key) == string(m.key)
	case matchAnyKey:
		return p.kind == pathKey
	case matchIndex:
		return p.kind == pathIndex && p.index == m.index
	case matchIndexRange:
		if p.kind != pathIndex {
			return false
		}
		if p.index < m.rangeStart {
			return false
		}
		return m.rangeEnd == -1 || p.index <= m.rangeEnd
	}
	return false
}

// compiledPattern is one compiled pattern: an ordered sequence of
// matcher elements, length equal to the depth it matches.
type compiledPattern []matcherElement

// CompiledPatterns is the immutable, compiled form of a caller-supplied
// pattern set. It owns its key byte storage for the lifetime of any
// scan that uses it and may be reused across concurrent scans.
type CompiledPatterns struct {
	patterns []compiledPattern
	maxDepth int
	// keyArena backs every owned key slice referenced by patterns; kept
	// alive here so matcherElement.key slices remain valid for the
	// lifetime of the CompiledPatterns value.
	keyArena [][]byte
}

// MaxDepth returns the longest pattern length in the set, i.e. the
// depth beyond which the scanner's depth guard takes effect.
func (c *CompiledPatterns) MaxDepth() int { return c.maxDepth }

// Len returns the number of patterns (and therefore buckets) in the set.
func (c *CompiledPatterns) Len() int { return len(c.patterns) }

// Compile validates and lowers a set of raw patterns into a
// CompiledPatterns. Every validation rule is checked, and the returned
// error wraps ErrInvalidArgument, before any allocation for the
// compiled set takes place.
func Compile(patterns []Pattern) (*CompiledPatterns, error) {
	for pi, p := range patterns {
		for ei, e := range p {
			if err := validateEntry(e); err != nil {
				return nil, invalidArgErrorf("pattern %d, entry %d: %s", pi, ei, err)
			}
		}
	}

	interned := make(map[string][]byte)
	var arena [][]byte
	intern := func(k string) []byte {
		if b, ok := interned[k]; ok {
			return b
		}
		b := []byte(k)
		interned[k] = b
		arena = append(arena, b)
		return b
	}

	compiled := &CompiledPatterns{patterns: make([]compiledPattern, len(patterns))}
	for pi, p := range patterns {
		cp := make(compiledPattern, len(p))
		for ei, e := range p {
			cp[ei] = lowerEntry(e, intern)
		}
		compiled.patterns[pi] = cp
		if len(cp) > compiled.maxDepth {
			compiled.maxDepth = len(cp)
		}
	}
	compiled.keyArena = arena
	return compiled, nil
}

func validateEntry(e PatternEntry) error {
	switch e.kind {
	case entryKey, entryIndex:
		if e.kind == entryIndex && e.index < 0 {
			return invalidArgErrorf("array index must be >= 0, got %d", e.index)
		}
		return nil
	case entryRange:
		if e.rangeStart == anyKeySentinel && e.rangeEnd == anyKeySentinel && !e.openEnded {
			return nil // AnyKey
		}
		if e.rangeStart < 0 {
			return invalidArgErrorf("range start must be >= 0, got %d", e.rangeStart)
		}
		if e.rangeEnd < -1 {
			return invalidArgErrorf("range end must be >= -1, got %d", e.rangeEnd)
		}
		if e.rangeEnd == -1 && e.openEnded {
			return invalidArgErrorf("open-ended range with -1 end is not allowed")
		}
		return nil
	default:
		return invalidArgErrorf("entry must be a key, index, or range")
	}
}

func lowerEntry(e PatternEntry, intern func(string) []byte) matcherElement {
	switch e.kind {
	case entryKey:
		return matcherElement{kind: matchKey, key: intern(e.key)}
	case entryIndex:
		return matcherElement{kind: matchIndex, index: e.index}
	case entryRange:
		if e.rangeStart == anyKeySentinel && e.rangeEnd == anyKeySentinel && !e.openEnded {
			return matcherElement{kind: matchAnyKey}
		}
		end := e.rangeEnd
		if e.openEnded && end != -1 {
			end = end - 1
		}
		return matcherElement{kind: matchIndexRange, rangeStart: e.rangeStart, rangeEnd: end}
	}
	return matcherElement{}
}
