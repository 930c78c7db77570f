package jsonpath

import "github.com/Crescent617/jsonscan/internal/jsontok"

// Options controls tokenizer leniency (pass-through to internal/jsontok)
// plus the matcher-only behaviors of a scan.
type Options struct {
	AllowComments        bool
	DontValidateStrings  bool
	AllowTrailingGarbage bool
	AllowMultipleValues  bool
	AllowPartialValues   bool
	VerboseError         bool

	// WithPath requests that every Result carry a materialized copy of
	// the path at which it matched.
	WithPath bool
	// SymbolizePathKeys interns materialized path key strings through a
	// per-scan cache, so repeated keys across matches share one
	// allocation — the Go analogue of the symbol/string distinction in
	// languages with an interned-symbol type.
	SymbolizePathKeys bool
}

func (o Options) tokenizerOptions() jsontok.Options {
	return jsontok.Options{
		AllowComments:        o.AllowComments,
		DontValidateStrings:  o.DontValidateStrings,
		AllowTrailingGarbage: o.AllowTrailingGarbage,
		AllowMultipleValues:  o.AllowMultipleValues,
		AllowPartialValues:   o.AllowPartialValues,
		VerboseError:         o.VerboseError,
	}
}

// runtime is the per-scan state: the current path stack, the per-depth
// container-open offsets, and the buckets being filled. It lives
// exactly one scan and borrows key bytes from the tokenizer.
type runtime struct {
	compiled *CompiledPatterns
	tok      *jsontok.Tokenizer

	depth   int
	path    []pathElement // len == compiled.MaxDepth()
	starts  []uint64      // len == compiled.MaxDepth()+1

	withPath  bool
	internKey func(string) string

	buckets [][]Result
}

func newRuntime(compiled *CompiledPatterns, opts Options) *runtime {
	r := &runtime{
		compiled: compiled,
		path:     make([]pathElement, compiled.MaxDepth()),
		starts:   make([]uint64, compiled.MaxDepth()+1),
		withPath: opts.WithPath,
		buckets:  make([][]Result, compiled.Len()),
	}
	if opts.WithPath && opts.SymbolizePathKeys {
		cache := make(map[string]string)
		r.internKey = func(k string) string {
			if v, ok := cache[k]; ok {
				return v
			}
			cache[k] = k
			return k
		}
	}
	return r
}

// incrementArrayIndex advances the top frame's index when the
// innermost open container is an array; a no-op at the root or inside
// an object.
func (r *runtime) incrementArrayIndex() {
	if r.depth == 0 {
		return
	}
	top := &r.path[r.depth-1]
	if top.kind == pathIndex {
		top.index++
	}
}

func (r *runtime) onNull() {
	if r.depth > r.compiled.maxDepth {
		return
	}
	r.incrementArrayIndex()
	p := r.tok.BytesConsumed()
	r.emitIfMatch(r.depth, KindNull, uint64(p-4), uint64(p))
}

func (r *runtime) onBoolean(v bool) {
	if r.depth > r.compiled.maxDepth {
		return
	}
	r.incrementArrayIndex()
	length := int64(4)
	if !v {
		length = 5
	}
	p := r.tok.BytesConsumed()
	r.emitIfMatch(r.depth, KindBoolean, uint64(p-length), uint64(p))
}

func (r *runtime) onNumber(raw []byte) {
	if r.depth > r.compiled.maxDepth {
		return
	}
	r.incrementArrayIndex()
	p := r.tok.BytesConsumed()
	r.emitIfMatch(r.depth, KindNumber, uint64(p)-uint64(len(raw)), uint64(p))
}

func (r *runtime) onString(decoded []byte, rawLen int) {
	if r.depth > r.compiled.maxDepth {
		return
	}
	r.incrementArrayIndex()
	p := r.tok.BytesConsumed()
	r.emitIfMatch(r.depth, KindString, uint64(p)-uint64(rawLen), uint64(p))
}

func (r *runtime) onStartObject() {
	r.onStartContainer(pathKey)
}

func (r *runtime) onStartArray() {
	r.onStartContainer(pathIndex)
}

func (r *runtime) onStartContainer(kind pathKind) {
	d := r.depth
	if d > r.compiled.maxDepth {
		r.depth = d + 1
		return
	}
	r.incrementArrayIndex()
	r.starts[d] = uint64(r.tok.BytesConsumed() - 1)
	if d < r.compiled.maxDepth {
		if kind == pathKey {
			r.path[d] = pathElement{kind: pathKey}
		} else {
			r.path[d] = pathElement{kind: pathIndex, index: -1}
		}
	}
	r.depth = d + 1
}

func (r *runtime) onObjectKey(bytes []byte) {
	if r.depth > r.compiled.maxDepth {
		return
	}
	r.path[r.depth-1] = pathElement{kind: pathKey, key: bytes}
}

func (r *runtime) onEndObject() {
	r.onEndContainer(KindObject)
}

func (r *runtime) onEndArray() {
	r.onEndContainer(KindArray)
}

func (r *runtime) onEndContainer(kind Kind) {
	r.depth--
	if r.depth <= r.compiled.maxDepth {
		r.emitIfMatch(r.depth, kind, r.starts[r.depth], uint64(r.tok.BytesConsumed()))
	}
}

// Scan feeds bytes through the tokenizer driven by compiled's matcher
// set and returns one bucket per pattern, in pattern order. It returns
// a *ParseError (wrapping ErrParse) on tokenizer failure; no buckets
// are returned in that case.
func Scan(bytes []byte, compiled *CompiledPatterns, opts Options) ([][]Result, error) {
	r := newRuntime(compiled, opts)

	h := jsontok.Handlers{
		OnNull:        r.onNull,
		OnBoolean:     r.onBoolean,
		OnNumber:      r.onNumber,
		OnString:      r.onString,
		OnStartObject: r.onStartObject,
		OnObjectKey:   r.onObjectKey,
		OnEndObject:   r.onEndObject,
		OnStartArray:  r.onStartArray,
		OnEndArray:    r.onEndArray,
	}
	tok := jsontok.New(h, opts.tokenizerOptions())
	r.tok = tok

	if err := tok.Parse(bytes); err != nil {
		return nil, &ParseError{msg: tok.GetError(opts.VerboseError), bytesConsumed: tok.BytesConsumed()}
	}
	if err := tok.Finish(); err != nil {
		return nil, &ParseError{msg: tok.GetError(opts.VerboseError), bytesConsumed: tok.BytesConsumed()}
	}
	return r.buckets, nil
}

// ScanPatterns compiles patterns and scans bytes in one call; the
// compiled set is discarded after the scan. Use Compile directly and
// call Scan when the same patterns will be reused across scans.
func ScanPatterns(bytes []byte, patterns []Pattern, opts Options) ([][]Result, error) {
	compiled, err := Compile(patterns)
	if err != nil {
		return nil, err
	}
	return Scan(bytes, compiled, opts)
}
