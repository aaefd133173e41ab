package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := NewSelection("extract subtable", "index out of range").WithColumn("Age").WithIndex(7)

	msg := err.Error()
	assert.Contains(t, msg, "extract subtable")
	assert.Contains(t, msg, "index out of range")
	assert.Contains(t, msg, `column "Age"`)
	assert.Contains(t, msg, "index 7")
}

func TestErrorOmitsUnsetFields(t *testing.T) {
	err := NewParse("parse selection", "bad token")
	msg := err.Error()
	assert.NotContains(t, msg, "column")
	assert.NotContains(t, msg, "index")
}

func TestMarshalJSONOmitsUnsetIndex(t *testing.T) {
	// The unset position is an internal sentinel; the wire form carries
	// no index key at all rather than -1.
	raw, err := json.Marshal(NewParse("parse selection", "bad token"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"index"`)
	assert.NotContains(t, string(raw), `"column"`)
	assert.Contains(t, string(raw), `"code":"PARSE_ERROR"`)

	raw, err = json.Marshal(NewSelection("extract subtable", "out of range").WithColumn("Age").WithIndex(7))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"index":7`)
	assert.Contains(t, string(raw), `"column":"Age"`)
}

func TestMarshalJSONIndexZero(t *testing.T) {
	// Position zero is a real position and must survive serialization.
	raw, err := json.Marshal(NewOutOfBounds("row lookup", "no such row").WithIndex(0))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"index":0`)
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(CodeParse, "parse selection", "invalid pattern", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "boom")
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeImputation, CodeOf(NewImputation("impute", "no statistic")))
	assert.Equal(t, Code(""), CodeOf(stderrors.New("plain")))
	assert.Equal(t, Code(""), CodeOf(nil))

	// Codes survive wrapping with fmt.Errorf.
	wrapped := fmt.Errorf("pipeline step 2: %w", NewTypeMismatch("replace values", "not numeric"))
	assert.Equal(t, CodeTypeMismatch, CodeOf(wrapped))
	assert.True(t, IsCode(wrapped, CodeTypeMismatch))
	assert.False(t, IsCode(wrapped, CodeParse))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: NewParse("op", "m"), want: http.StatusBadRequest},
		{err: NewSelection("op", "m"), want: http.StatusBadRequest},
		{err: NewOutOfBounds("op", "m"), want: http.StatusBadRequest},
		{err: NewTypeMismatch("op", "m"), want: http.StatusBadRequest},
		{err: NewInvalidRequest("op", "m"), want: http.StatusBadRequest},
		{err: NewNotFound("op", "m"), want: http.StatusNotFound},
		{err: NewImputation("op", "m"), want: http.StatusUnprocessableEntity},
		{err: NewUnsupportedColumn("op", "m"), want: http.StatusUnprocessableEntity},
		{err: NewInsufficientColumns("op", "m"), want: http.StatusUnprocessableEntity},
		{err: NewInsufficientData("op", "m"), want: http.StatusUnprocessableEntity},
		{err: stderrors.New("plain"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "error %v", tt.err)
	}
}

func TestConstructorsSetCodes(t *testing.T) {
	cases := map[Code]*Error{
		CodeParse:               NewParse("op", "m"),
		CodeSelection:           NewSelection("op", "m"),
		CodeOutOfBounds:         NewOutOfBounds("op", "m"),
		CodeTypeMismatch:        NewTypeMismatch("op", "m"),
		CodeImputation:          NewImputation("op", "m"),
		CodeUnsupportedColumn:   NewUnsupportedColumn("op", "m"),
		CodeInsufficientColumns: NewInsufficientColumns("op", "m"),
		CodeInsufficientData:    NewInsufficientData("op", "m"),
		CodeInvalidRequest:      NewInvalidRequest("op", "m"),
		CodeNotFound:            NewNotFound("op", "m"),
	}
	for code, err := range cases {
		require.NotNil(t, err)
		assert.Equal(t, code, err.Code)
		assert.Equal(t, -1, err.Index)
	}
}
