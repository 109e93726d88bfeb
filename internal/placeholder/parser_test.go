package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTable is a minimal in-package StringTable for parser tests.
type fakeTable map[int]StringData

func (t fakeTable) Lookup(serial int) (StringData, bool) {
	data, ok := t[serial]
	return data, ok
}

func testTable() fakeTable {
	return fakeTable{
		42: {
			Name:       "greeting",
			SourceFile: "src/strings.resjson",
			Values:     map[string]string{"en-us": "hello", "es-es": "hola"},
		},
	}
}

// TestParse_NoPlaceholders verifies that a placeholder-free source yields a
// single static element holding the input verbatim.
func TestParse_NoPlaceholders(t *testing.T) {
	source := "var x = 'plain compiled output';"

	plan, issues, err := Parse(source, testTable(), nil)
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.Len(t, plan, 1)
	assert.Equal(t, KindStatic, plan[0].Kind)
	assert.Equal(t, source, plan[0].Text)
}

// TestParse_EmptySource verifies the degenerate empty input still produces
// one static element.
func TestParse_EmptySource(t *testing.T) {
	plan, issues, err := Parse("", testTable(), nil)
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.Len(t, plan, 1)
	assert.Equal(t, "", plan[0].Text)
}

// TestParse_OrderedSequence verifies the plan mirrors placeholder positions
// in document order, with the gaps copied verbatim.
func TestParse_OrderedSequence(t *testing.T) {
	source := "head " + FormatLocalized(42) + " mid " + FormatLocaleName() + " tail"

	plan, issues, err := Parse(source, testTable(), nil)
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.Len(t, plan, 5)

	assert.Equal(t, KindStatic, plan[0].Kind)
	assert.Equal(t, "head ", plan[0].Text)

	assert.Equal(t, KindLocalized, plan[1].Kind)
	assert.Equal(t, 42, plan[1].Serial)
	assert.Equal(t, "greeting", plan[1].String.Name)
	assert.Equal(t, len(FormatLocalized(42)), plan[1].PlaceholderLen)

	assert.Equal(t, KindStatic, plan[2].Kind)
	assert.Equal(t, " mid ", plan[2].Text)

	assert.Equal(t, KindDynamic, plan[3].Kind)
	assert.Equal(t, len(FormatLocaleName()), plan[3].PlaceholderLen)

	assert.Equal(t, KindStatic, plan[4].Kind)
	assert.Equal(t, " tail", plan[4].Text)
}

// TestParse_MissingSerial verifies a serial absent from the string table
// degrades to the raw placeholder text plus one issue.
func TestParse_MissingSerial(t *testing.T) {
	raw := FormatLocalized(999)
	source := "a" + raw + "b"

	plan, issues, err := Parse(source, testTable(), nil)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], raw)

	require.Len(t, plan, 3)
	assert.Equal(t, KindStatic, plan[1].Kind)
	assert.Equal(t, raw, plan[1].Text)
}

// TestParse_JsonpToken verifies the chunk-id token is extracted and the
// supplied resolver is carried on the element.
func TestParse_JsonpToken(t *testing.T) {
	resolver := ConstantLocale("none")
	source := FormatJsonp("chunkId")

	plan, issues, err := Parse(source, testTable(), &resolver)
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.Len(t, plan, 1)

	el := plan[0]
	assert.Equal(t, KindDynamic, el.Kind)
	assert.Equal(t, "chunkId", el.Token)
	assert.Equal(t, len(source), el.PlaceholderLen)

	value, err := el.Resolver.Resolve("es-es", el.Token)
	require.NoError(t, err)
	assert.Equal(t, `"none"`, value)
}

// TestParse_JsonpForbidden verifies a chunk-mapping placeholder in a
// context without a resolver (filenames) is a contract violation.
func TestParse_JsonpForbidden(t *testing.T) {
	_, _, err := Parse("app."+FormatJsonp("id")+".js", testTable(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

// TestParse_UnknownLabel verifies an unrecognized label is fatal rather
// than skipped.
func TestParse_UnknownLabel(t *testing.T) {
	_, _, err := Parse(Prefix+"_Z_0", testTable(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected placeholder label")
}

// TestParse_TrailingPlaceholder verifies a source ending in a placeholder
// gains no spurious trailing element.
func TestParse_TrailingPlaceholder(t *testing.T) {
	plan, _, err := Parse("x="+FormatLocaleName(), testTable(), nil)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, KindDynamic, plan[1].Kind)
}

// TestContainsLocalized verifies only label-A placeholders classify text
// as localized.
func TestContainsLocalized(t *testing.T) {
	assert.True(t, ContainsLocalized("x"+FormatLocalized(7)+"y"))
	assert.False(t, ContainsLocalized(FormatLocaleName()))
	assert.False(t, ContainsLocalized(FormatJsonp("id")))
	assert.False(t, ContainsLocalized("plain"))
}
