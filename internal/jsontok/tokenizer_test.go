package jsontok

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	events []string
}

func (r *recorder) handlers() Handlers {
	return Handlers{
		OnNull:        func() { r.events = append(r.events, "null") },
		OnBoolean:     func(v bool) { r.events = append(r.events, boolEvent(v)) },
		OnNumber:      func(raw []byte) { r.events = append(r.events, "number:"+string(raw)) },
		OnString:      func(s []byte, _ int) { r.events = append(r.events, "string:"+string(s)) },
		OnStartObject: func() { r.events = append(r.events, "{") },
		OnObjectKey:   func(k []byte) { r.events = append(r.events, "key:"+string(k)) },
		OnEndObject:   func() { r.events = append(r.events, "}") },
		OnStartArray:  func() { r.events = append(r.events, "[") },
		OnEndArray:    func() { r.events = append(r.events, "]") },
	}
}

func boolEvent(v bool) string {
	if v {
		return "bool:true"
	}
	return "bool:false"
}

func parseAll(t *testing.T, input string, opts Options) (*Tokenizer, *recorder) {
	t.Helper()
	rec := &recorder{}
	tok := New(rec.handlers(), opts)
	require.NoError(t, tok.Parse([]byte(input)))
	require.NoError(t, tok.Finish())
	return tok, rec
}

func TestTokenizer_Simple(t *testing.T) {
	_, rec := parseAll(t, `{"a":1,"b":[true,false,null]}`, Options{})
	assert.Equal(t, []string{
		"{",
		"key:a", "number:1",
		"key:b", "[", "bool:true", "bool:false", "null", "]",
		"}",
	}, rec.events)
}

func TestTokenizer_NestedObjectOffsets(t *testing.T) {
	tok, rec := parseAll(t, `{"a":{"b":1,"c":2}}`, Options{})
	assert.Equal(t, []string{
		"{", "key:a", "{", "key:b", "number:1", "key:c", "number:2", "}", "}",
	}, rec.events)
	assert.Equal(t, int64(19), tok.BytesConsumed())
}

func TestTokenizer_StringEscapes(t *testing.T) {
	_, rec := parseAll(t, `"a\nb\tc\"d"`, Options{})
	require.Len(t, rec.events, 1)
	assert.Equal(t, "string:a\nb\tc\"d", rec.events[0])
}

func TestTokenizer_UnicodeEscapesAndSurrogatePair(t *testing.T) {
	input := "\"\\u0028\\uD83D\\uDE00\""
	_, rec := parseAll(t, input, Options{})
	require.Len(t, rec.events, 1)
	assert.Equal(t, "string:(😀", rec.events[0])
}

func TestTokenizer_StringRawLenAccountsForEscapes(t *testing.T) {
	rec := &recorder{}
	h := rec.handlers()
	var gotRawLen int
	h.OnString = func(s []byte, rawLen int) {
		rec.events = append(rec.events, "string:"+string(s))
		gotRawLen = rawLen
	}
	tok := New(h, Options{})
	require.NoError(t, tok.Parse([]byte(`"x\ny"`)))
	require.NoError(t, tok.Finish())
	assert.Equal(t, []string{"string:x\ny"}, rec.events)
	// decoded content is 3 bytes ('x', 0x0A, 'y'); the raw token,
	// quotes and escape included, is 6 bytes.
	assert.Equal(t, 6, gotRawLen)
	assert.Equal(t, int64(6), tok.BytesConsumed())
}

func TestTokenizer_KeyEscapes(t *testing.T) {
	_, rec := parseAll(t, `{"a\/c":1}`, Options{})
	assert.Equal(t, []string{"{", "key:a/c", "number:1", "}"}, rec.events)
}

func TestTokenizer_ArrayIndices(t *testing.T) {
	_, rec := parseAll(t, `[1,2,3]`, Options{})
	assert.Equal(t, []string{"[", "number:1", "number:2", "number:3", "]"}, rec.events)
}

func TestTokenizer_RejectsMalformedInput(t *testing.T) {
	rec := &recorder{}
	tok := New(rec.handlers(), Options{})
	err := tok.Parse([]byte(`not json`))
	require.Error(t, err)
	assert.NotEmpty(t, tok.GetError(true))
	assert.Greater(t, tok.BytesConsumed(), int64(0))
}

func TestTokenizer_RejectsEmptyInput(t *testing.T) {
	rec := &recorder{}
	tok := New(rec.handlers(), Options{})
	require.NoError(t, tok.Parse([]byte(``)))
	err := tok.Finish()
	require.Error(t, err)
}

func TestTokenizer_RejectsTrailingGarbageByDefault(t *testing.T) {
	rec := &recorder{}
	tok := New(rec.handlers(), Options{})
	err := tok.Parse([]byte(`1 2`))
	require.Error(t, err)
}

func TestTokenizer_AllowTrailingGarbage(t *testing.T) {
	rec := &recorder{}
	tok := New(rec.handlers(), Options{AllowTrailingGarbage: true})
	require.NoError(t, tok.Parse([]byte(`1 garbage {][`)))
	require.NoError(t, tok.Finish())
	assert.Equal(t, []string{"number:1"}, rec.events)
}

func TestTokenizer_AllowMultipleValues(t *testing.T) {
	rec := &recorder{}
	tok := New(rec.handlers(), Options{AllowMultipleValues: true})
	require.NoError(t, tok.Parse([]byte(`1 2 3`)))
	require.NoError(t, tok.Finish())
	assert.Equal(t, []string{"number:1", "number:2", "number:3"}, rec.events)
}

func TestTokenizer_AllowComments(t *testing.T) {
	rec := &recorder{}
	tok := New(rec.handlers(), Options{AllowComments: true})
	require.NoError(t, tok.Parse([]byte("{/* c */\"a\":1 // trailing\n}")))
	require.NoError(t, tok.Finish())
	assert.Equal(t, []string{"{", "key:a", "number:1", "}"}, rec.events)
}

func TestTokenizer_UnclosedContainerIsError(t *testing.T) {
	rec := &recorder{}
	tok := New(rec.handlers(), Options{})
	require.NoError(t, tok.Parse([]byte(`{"a":1`)))
	require.Error(t, tok.Finish())
}

func TestTokenizer_AllowPartialValues(t *testing.T) {
	rec := &recorder{}
	tok := New(rec.handlers(), Options{AllowPartialValues: true})
	require.NoError(t, tok.Parse([]byte(`{"a":1`)))
	require.NoError(t, tok.Finish())
	assert.Equal(t, []string{"{", "key:a", "number:1"}, rec.events)
}

func TestTokenizer_MultiChunkParse(t *testing.T) {
	rec := &recorder{}
	tok := New(rec.handlers(), Options{})
	require.NoError(t, tok.Parse([]byte(`{"a":`)))
	require.NoError(t, tok.Parse([]byte(`[1,2`)))
	require.NoError(t, tok.Parse([]byte(`]}`)))
	require.NoError(t, tok.Finish())
	assert.Equal(t, []string{"{", "key:a", "[", "number:1", "number:2", "]", "}"}, rec.events)
}
