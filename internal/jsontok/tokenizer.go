// Package jsontok implements the incremental, callback-driven JSON
// tokenizer assumed available by jsonpath's event handlers. It never
// materializes a parsed value: each callback receives only the raw or
// decoded bytes of the token that just completed, plus whatever
// structural bookkeeping jsonpath needs to do its own path tracking.
package jsontok

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"
)

// Handlers are invoked once per complete JSON token. Any field left
// nil is simply not called. Per the tokenizer contract, every handler
// is treated as always succeeding — jsonpath's depth guard, not a
// handler abort signal, is what keeps a deep or uninteresting subtree
// cheap.
type Handlers struct {
	OnNull    func()
	OnBoolean func(v bool)
	OnNumber  func(raw []byte)
	// OnString reports the decoded string content plus rawLen, the
	// number of input bytes the token itself consumed (quotes
	// included). rawLen is needed alongside decoded because escape
	// sequences (\n, \uXXXX, ...) make len(decoded) diverge from the
	// token's actual width in the input.
	OnString      func(decoded []byte, rawLen int)
	OnStartObject func()
	OnObjectKey   func(decoded []byte)
	OnEndObject   func()
	OnStartArray  func()
	OnEndArray    func()
}

// Options are the tokenizer's leniency flags, passed straight through
// from jsonpath.Options.
type Options struct {
	AllowComments        bool
	DontValidateStrings  bool
	AllowTrailingGarbage bool
	AllowMultipleValues  bool
	AllowPartialValues   bool
	VerboseError         bool
}

type containerKind uint8

const (
	containerObject containerKind = iota
	containerArray
)

type objExpect int

const (
	objInitial objExpect = iota
	objAfterComma
	objExpectColon
	objExpectValue
	objExpectCommaOrClose
)

type arrExpect int

const (
	arrInitial arrExpect = iota
	arrAfterComma
	arrExpectCommaOrClose
)

type frame struct {
	kind     containerKind
	objState objExpect
	arrState arrExpect
}

type state int

const (
	stBare state = iota
	stString
	stKey
	stStringEscape
	stKeyEscape
	stStringUnicode
	stKeyUnicode
	stNumber
	stLiteral
	stCommentLineStart
	stCommentLine
	stCommentBlock
	stCommentBlockStar
)

// Tokenizer is a single-use, incremental JSON scanner. Parse may be
// called more than once with successive chunks of the same document;
// Finish must be called exactly once, after the last chunk, to flush
// any trailing token and validate overall completeness.
type Tokenizer struct {
	h    Handlers
	opts Options

	state state
	stack []frame

	scratch []byte // decoded-content accumulator for string/key/number/literal

	stringStart int64 // 0-based offset of the opening quote of the in-progress string/key

	hex         [4]byte
	hexCount    int
	pendingHigh rune

	pos           int64
	topLevelCount int
	topLevelDone  bool

	err *SyntaxError
}

// New builds a Tokenizer bound to h with the given leniency options.
func New(h Handlers, opts Options) *Tokenizer {
	return &Tokenizer{h: h, opts: opts}
}

// BytesConsumed returns the number of input bytes folded into the
// tokenizer's state so far. Inside a callback it is the offset one past
// the last byte of the token being reported: a number or literal that
// ends because of the byte after it is reported without that byte.
func (t *Tokenizer) BytesConsumed() int64 { return t.pos }

// GetError renders the tokenizer's failure, if any, in verbose or
// terse form. Returns the empty string if Parse/Finish never failed.
func (t *Tokenizer) GetError(verbose bool) string {
	if t.err == nil {
		return ""
	}
	return t.err.Verbose(verbose)
}

// Parse feeds a chunk of input bytes through the tokenizer, invoking
// Handlers as tokens complete.
func (t *Tokenizer) Parse(data []byte) error {
	if t.err != nil {
		return t.err
	}
	for _, b := range data {
		t.pos++
		if t.topLevelDone && t.opts.AllowTrailingGarbage && !t.opts.AllowMultipleValues {
			continue
		}
		if err := t.feed(b); err != nil {
			t.err = err.(*SyntaxError)
			return t.err
		}
	}
	return nil
}

// Finish flushes any token still pending at end-of-input and validates
// that the document was complete (no open containers, no partial
// token), unless AllowPartialValues permits otherwise.
func (t *Tokenizer) Finish() error {
	if t.err != nil {
		return t.err
	}
	switch t.state {
	case stNumber:
		if err := t.finishNumber(t.pos); err != nil {
			t.err = err.(*SyntaxError)
			return t.err
		}
	case stLiteral:
		if err := t.finishLiteral(t.pos); err != nil {
			t.err = err.(*SyntaxError)
			return t.err
		}
	case stString, stKey, stStringEscape, stKeyEscape, stStringUnicode, stKeyUnicode:
		if !t.opts.AllowPartialValues {
			t.err = t.syntaxError("unexpected end of input inside a string").(*SyntaxError)
			return t.err
		}
	case stCommentLine, stCommentBlock, stCommentBlockStar, stCommentLineStart:
		t.err = t.syntaxError("unexpected end of input inside a comment").(*SyntaxError)
		return t.err
	}
	if t.topLevelCount == 0 {
		t.err = t.syntaxError("unexpected end of input: no value found").(*SyntaxError)
		return t.err
	}
	if len(t.stack) > 0 && !t.opts.AllowPartialValues {
		t.err = t.syntaxError("unexpected end of input: unclosed container").(*SyntaxError)
		return t.err
	}
	return nil
}

func (t *Tokenizer) syntaxError(msg string) error {
	return &SyntaxError{Msg: msg, Pos: t.pos}
}

// --- byte-level dispatch ---------------------------------------------------

func (t *Tokenizer) feed(b byte) error {
	switch t.state {
	case stString, stKey:
		return t.feedString(b)
	case stStringEscape, stKeyEscape:
		return t.feedEscape(b)
	case stStringUnicode, stKeyUnicode:
		return t.feedUnicodeHex(b)
	case stNumber:
		if isNumberByte(b) {
			t.scratch = append(t.scratch, b)
			return nil
		}
		// b is lookahead: it terminates the number but was already
		// folded into t.pos, so the number itself ended one byte earlier.
		if err := t.finishNumber(t.pos - 1); err != nil {
			return err
		}
		return t.feedBare(b)
	case stLiteral:
		if isLowerLetter(b) {
			t.scratch = append(t.scratch, b)
			return nil
		}
		if err := t.finishLiteral(t.pos - 1); err != nil {
			return err
		}
		return t.feedBare(b)
	case stCommentLineStart, stCommentLine, stCommentBlock, stCommentBlockStar:
		return t.feedComment(b)
	default:
		return t.feedBare(b)
	}
}

func (t *Tokenizer) feedBare(b byte) error {
	switch {
	case b == ' ' || b == '\t' || b == '\n' || b == '\r':
		return nil
	case b == '{':
		return t.openContainer(containerObject)
	case b == '}':
		return t.closeContainer(containerObject)
	case b == '[':
		return t.openContainer(containerArray)
	case b == ']':
		return t.closeContainer(containerArray)
	case b == ',':
		return t.comma()
	case b == ':':
		return t.colon()
	case b == '"':
		return t.openString()
	case b == '/':
		if !t.opts.AllowComments {
			return t.syntaxError("comments are not allowed")
		}
		t.state = stCommentLineStart
		return nil
	case b == 't' || b == 'f' || b == 'n':
		return t.openLiteral(b)
	case b == '-' || (b >= '0' && b <= '9'):
		return t.openNumber(b)
	default:
		return t.syntaxError(fmt.Sprintf("unexpected character %q", b))
	}
}

func (t *Tokenizer) feedComment(b byte) error {
	switch t.state {
	case stCommentLineStart:
		switch b {
		case '/':
			t.state = stCommentLine
		case '*':
			t.state = stCommentBlock
		default:
			return t.syntaxError("invalid comment")
		}
	case stCommentLine:
		if b == '\n' {
			t.state = stBare
		}
	case stCommentBlock:
		if b == '*' {
			t.state = stCommentBlockStar
		}
	case stCommentBlockStar:
		switch b {
		case '/':
			t.state = stBare
		case '*':
			// stay in stCommentBlockStar
		default:
			t.state = stCommentBlock
		}
	}
	return nil
}

// --- value bookkeeping shared by containers and scalars ---------------------

func (t *Tokenizer) beginValue() error {
	if len(t.stack) == 0 {
		if t.topLevelCount > 0 && !t.opts.AllowMultipleValues {
			return t.syntaxError("unexpected additional top-level value")
		}
		t.topLevelCount++
		return nil
	}
	top := &t.stack[len(t.stack)-1]
	switch top.kind {
	case containerArray:
		if top.arrState != arrInitial && top.arrState != arrAfterComma {
			return t.syntaxError("unexpected value in array")
		}
	case containerObject:
		if top.objState != objExpectValue {
			return t.syntaxError("unexpected value in object")
		}
	}
	return nil
}

func (t *Tokenizer) markParentAwaitingCommaOrClose() {
	if len(t.stack) == 0 {
		return
	}
	top := &t.stack[len(t.stack)-1]
	if top.kind == containerArray {
		top.arrState = arrExpectCommaOrClose
	} else {
		top.objState = objExpectCommaOrClose
	}
}

func (t *Tokenizer) markTopLevelDoneIfRoot() {
	if len(t.stack) == 0 {
		t.topLevelDone = true
	}
}

// --- containers --------------------------------------------------------

func (t *Tokenizer) openContainer(kind containerKind) error {
	if err := t.beginValue(); err != nil {
		return err
	}
	t.markParentAwaitingCommaOrClose()
	if kind == containerObject {
		t.call(t.h.OnStartObject)
		t.stack = append(t.stack, frame{kind: containerObject, objState: objInitial})
	} else {
		t.call(t.h.OnStartArray)
		t.stack = append(t.stack, frame{kind: containerArray, arrState: arrInitial})
	}
	return nil
}

func (t *Tokenizer) closeContainer(kind containerKind) error {
	if len(t.stack) == 0 {
		return t.syntaxError("unexpected closing bracket")
	}
	top := t.stack[len(t.stack)-1]
	if top.kind != kind {
		return t.syntaxError("mismatched closing bracket")
	}
	if kind == containerObject {
		if top.objState != objInitial && top.objState != objExpectCommaOrClose {
			return t.syntaxError("unexpected '}'")
		}
	} else {
		if top.arrState != arrInitial && top.arrState != arrExpectCommaOrClose {
			return t.syntaxError("unexpected ']'")
		}
	}
	t.stack = t.stack[:len(t.stack)-1]
	if kind == containerObject {
		t.call(t.h.OnEndObject)
	} else {
		t.call(t.h.OnEndArray)
	}
	t.markTopLevelDoneIfRoot()
	return nil
}

func (t *Tokenizer) comma() error {
	if len(t.stack) == 0 {
		return t.syntaxError("unexpected ','")
	}
	top := &t.stack[len(t.stack)-1]
	if top.kind == containerArray {
		if top.arrState != arrExpectCommaOrClose {
			return t.syntaxError("unexpected ','")
		}
		top.arrState = arrAfterComma
	} else {
		if top.objState != objExpectCommaOrClose {
			return t.syntaxError("unexpected ','")
		}
		top.objState = objAfterComma
	}
	return nil
}

func (t *Tokenizer) colon() error {
	if len(t.stack) == 0 {
		return t.syntaxError("unexpected ':'")
	}
	top := &t.stack[len(t.stack)-1]
	if top.kind != containerObject || top.objState != objExpectColon {
		return t.syntaxError("unexpected ':'")
	}
	top.objState = objExpectValue
	return nil
}

// --- strings -------------------------------------------------------------

func (t *Tokenizer) openString() error {
	// t.pos already counts this opening quote (Parse increments before
	// dispatch), so pos-1 is the quote's own 0-based offset.
	t.stringStart = t.pos - 1
	if len(t.stack) > 0 {
		top := &t.stack[len(t.stack)-1]
		if top.kind == containerObject && (top.objState == objInitial || top.objState == objAfterComma) {
			t.scratch = t.scratch[:0]
			t.state = stKey
			return nil
		}
	}
	if err := t.beginValue(); err != nil {
		return err
	}
	t.markParentAwaitingCommaOrClose()
	t.scratch = t.scratch[:0]
	t.state = stString
	return nil
}

func (t *Tokenizer) closeString() error {
	t.flushPendingSurrogate()
	if t.state == stKey {
		t.call2Bytes(t.h.OnObjectKey, t.scratch)
		top := &t.stack[len(t.stack)-1]
		top.objState = objExpectColon
	} else {
		// closeString fires on the closing quote itself (not a
		// lookahead byte), so t.pos here is already the right end
		// offset; rawLen spans the whole token, quotes included, and
		// is used instead of len(t.scratch) because escapes make the
		// decoded content shorter than the bytes actually consumed.
		rawLen := int(t.pos - t.stringStart)
		if t.h.OnString != nil {
			t.h.OnString(t.scratch, rawLen)
		}
		t.markTopLevelDoneIfRoot()
	}
	t.state = stBare
	return nil
}

func (t *Tokenizer) feedString(b byte) error {
	switch {
	case b == '"':
		return t.closeString()
	case b == '\\':
		t.flushPendingSurrogate()
		if t.state == stKey {
			t.state = stKeyEscape
		} else {
			t.state = stStringEscape
		}
		return nil
	case b < 0x20:
		if !t.opts.DontValidateStrings {
			return t.syntaxError("control character in string")
		}
		t.scratch = append(t.scratch, b)
		return nil
	default:
		t.flushPendingSurrogate()
		t.scratch = append(t.scratch, b)
		return nil
	}
}

func (t *Tokenizer) feedEscape(b byte) error {
	wasKey := t.state == stKeyEscape
	if b != 'u' {
		t.flushPendingSurrogate()
	}
	switch b {
	case '"':
		t.scratch = append(t.scratch, '"')
	case '\\':
		t.scratch = append(t.scratch, '\\')
	case '/':
		t.scratch = append(t.scratch, '/')
	case 'b':
		t.scratch = append(t.scratch, '\b')
	case 'f':
		t.scratch = append(t.scratch, '\f')
	case 'n':
		t.scratch = append(t.scratch, '\n')
	case 'r':
		t.scratch = append(t.scratch, '\r')
	case 't':
		t.scratch = append(t.scratch, '\t')
	case 'u':
		t.hexCount = 0
		if wasKey {
			t.state = stKeyUnicode
		} else {
			t.state = stStringUnicode
		}
		return nil
	default:
		return t.syntaxError(fmt.Sprintf("invalid escape sequence \\%c", b))
	}
	if wasKey {
		t.state = stKey
	} else {
		t.state = stString
	}
	return nil
}

func (t *Tokenizer) feedUnicodeHex(b byte) error {
	v, ok := hexVal(b)
	if !ok {
		return t.syntaxError("invalid unicode escape")
	}
	t.hex[t.hexCount] = v
	t.hexCount++
	if t.hexCount < 4 {
		return nil
	}
	r := rune(t.hex[0])<<12 | rune(t.hex[1])<<8 | rune(t.hex[2])<<4 | rune(t.hex[3])
	wasKey := t.state == stKeyUnicode

	if utf16.IsSurrogate(r) {
		if t.pendingHigh != 0 {
			combined := utf16.DecodeRune(t.pendingHigh, r)
			t.pendingHigh = 0
			t.scratch = utf8.AppendRune(t.scratch, combined)
		} else {
			t.pendingHigh = r
			if wasKey {
				t.state = stKey
			} else {
				t.state = stString
			}
			return nil
		}
	} else {
		t.flushPendingSurrogate()
		t.scratch = utf8.AppendRune(t.scratch, r)
	}
	if wasKey {
		t.state = stKey
	} else {
		t.state = stString
	}
	return nil
}

func (t *Tokenizer) flushPendingSurrogate() {
	if t.pendingHigh != 0 {
		t.scratch = utf8.AppendRune(t.scratch, utf8.RuneError)
		t.pendingHigh = 0
	}
}

func hexVal(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	default:
		return 0, false
	}
}

// --- numbers and literals -------------------------------------------------

func isNumberByte(b byte) bool {
	switch b {
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9', '+', '-', '.', 'e', 'E':
		return true
	}
	return false
}

func isLowerLetter(b byte) bool { return b >= 'a' && b <= 'z' }

func (t *Tokenizer) openNumber(first byte) error {
	if err := t.beginValue(); err != nil {
		return err
	}
	t.markParentAwaitingCommaOrClose()
	t.scratch = append(t.scratch[:0], first)
	t.state = stNumber
	return nil
}

// finishNumber delivers OnNumber with BytesConsumed reporting end, the
// offset one past the number's last digit. When the number was
// terminated by lookahead (a byte already folded into t.pos that isn't
// part of the number), end is one less than t.pos; t.pos is restored
// once the callback returns so the lookahead byte's own dispatch still
// sees the real running count.
func (t *Tokenizer) finishNumber(end int64) error {
	saved := t.pos
	t.pos = end
	t.call2Bytes(t.h.OnNumber, t.scratch)
	t.pos = saved
	t.markTopLevelDoneIfRoot()
	t.state = stBare
	t.scratch = t.scratch[:0]
	return nil
}

func (t *Tokenizer) openLiteral(first byte) error {
	if err := t.beginValue(); err != nil {
		return err
	}
	t.markParentAwaitingCommaOrClose()
	t.scratch = append(t.scratch[:0], first)
	t.state = stLiteral
	return nil
}

// finishLiteral delivers the OnBoolean/OnNull callback with
// BytesConsumed reporting end, by the same save/restore convention as
// finishNumber.
func (t *Tokenizer) finishLiteral(end int64) error {
	switch string(t.scratch) {
	case "true", "false", "null":
	default:
		return t.syntaxError(fmt.Sprintf("invalid literal %q", t.scratch))
	}
	saved := t.pos
	t.pos = end
	switch string(t.scratch) {
	case "true":
		t.callBool(true)
	case "false":
		t.callBool(false)
	case "null":
		t.callNull()
	}
	t.pos = saved
	t.markTopLevelDoneIfRoot()
	t.state = stBare
	t.scratch = t.scratch[:0]
	return nil
}

// --- nil-safe callback wrappers -------------------------------------------

func (t *Tokenizer) call(f func()) {
	if f != nil {
		f()
	}
}

func (t *Tokenizer) call2Bytes(f func([]byte), b []byte) {
	if f != nil {
		f(b)
	}
}

func (t *Tokenizer) callBool(v bool) {
	if t.h.OnBoolean != nil {
		t.h.OnBoolean(v)
	}
}

func (t *Tokenizer) callNull() {
	if t.h.OnNull != nil {
		t.h.OnNull()
	}
}
