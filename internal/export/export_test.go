package export

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvclassify/internal/model"
	"github.com/JonMunkholm/csvclassify/internal/tabular"
)

func results(t *testing.T, s string) []model.Result {
	t.Helper()
	var out []model.Result
	require.NoError(t, json.Unmarshal([]byte(s), &out))
	return out
}

func TestEncode_Empty(t *testing.T) {
	_, err := Encode(nil, ModeCompat)
	assert.ErrorIs(t, err, ErrNoResults)

	_, err = Encode([]model.Result{}, ModeRFC4180)
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestEncode_Compat(t *testing.T) {
	rs := results(t, `[
		{"name":"A","age":10,"classification":"Category A","confidence":0.91},
		{"name":"B","age":20,"classification":"Category B","confidence":0.6}
	]`)

	out, err := Encode(rs, ModeCompat)
	require.NoError(t, err)

	want := "name,age,classification,confidence\n" +
		"A,10,Category A,0.91\n" +
		"B,20,Category B,0.6"
	assert.Equal(t, want, string(out))
}

func TestEncode_HeaderFromFirstResult(t *testing.T) {
	rs := results(t, `[{"a":"1","b":"2"},{"b":"3","c":"x"},{"a":null,"b":"5"}]`)

	out, err := Encode(rs, ModeCompat)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n,3\n,5", string(out))
}

func TestEncode_CommaQuotingAsymmetry(t *testing.T) {
	rs := results(t, `[{"text":"a,b","n":1}]`)

	out, err := Encode(rs, ModeCompat)
	require.NoError(t, err)
	assert.Equal(t, "text,n\n\"a,b\",1", string(out))

	// Re-parsing splits on the quoted comma and strips the quotes.
	tbl := tabular.Parse(string(out))
	require.Equal(t, 1, tbl.Len())
	text, _ := tbl.Rows[0].Get("text")
	n, _ := tbl.Rows[0].Get("n")
	assert.Equal(t, "a", text)
	assert.Equal(t, "b", n)
}

func TestEncode_CompatDoesNotEscapeQuotes(t *testing.T) {
	rs := results(t, `[{"q":"say \"hi\", bye","p":"plain \"q\""}]`)

	out, err := Encode(rs, ModeCompat)
	require.NoError(t, err)
	assert.Equal(t, "q,p\n\"say \"hi\", bye\",plain \"q\"", string(out))
}

func TestEncode_RFC4180(t *testing.T) {
	rs := results(t, `[{"text":"a,b","quote":"say \"hi\"","n":1}]`)

	out, err := Encode(rs, ModeRFC4180)
	require.NoError(t, err)
	assert.Equal(t, "text,quote,n\n\"a,b\",\"say \"\"hi\"\"\",1", string(out))
}

func TestEncode_SingleColumnRoundTrip(t *testing.T) {
	src := "word\nalpha\n\"beta\"\ngamma"
	tbl := tabular.Parse(src)

	rs := make([]model.Result, 0, tbl.Len())
	for _, row := range tbl.Rows {
		rec := model.NewRecord(1)
		v, _ := row.Get("word")
		rec.Set("word", model.String(v))
		rs = append(rs, model.NewResult(rec))
	}

	out, err := Encode(rs, ModeCompat)
	require.NoError(t, err)

	again := tabular.Parse(string(out))
	assert.Equal(t, tbl.Columns, again.Columns)
	require.Equal(t, tbl.Len(), again.Len())
	for i := range tbl.Rows {
		assert.Equal(t, tbl.Rows[i].Values(), again.Rows[i].Values())
	}
	want, _ := again.Rows[1].Get("word")
	assert.Equal(t, "beta", want, "quotes are stripped")
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeCompat, false},
		{"compat", ModeCompat, false},
		{" RFC4180 ", ModeRFC4180, false},
		{"excel", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "ParseMode(%q)", tt.in)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestFilename(t *testing.T) {
	now := time.UnixMilli(1717171717171)
	assert.Equal(t, "classification_results_1717171717171.csv", Filename(now))
}

func TestEncode_CompatNestedValues(t *testing.T) {
	rs := results(t, `[
		{"data":{"a":"1","b":"2"},"tags":["x","y",null,3],"classification":"X"},
		{"data":{},"tags":[],"classification":"Y"}
	]`)

	out, err := Encode(rs, ModeCompat)
	require.NoError(t, err)
	assert.Equal(t, "data,tags,classification\n"+
		"[object Object],\"x,y,,3\",X\n"+
		"[object Object],,Y", string(out))

	// The classification stays in its own column for the object cell.
	tbl := tabular.Parse(string(out))
	require.Equal(t, []string{"data", "tags", "classification"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	data, _ := tbl.Rows[1].Get("data")
	label, _ := tbl.Rows[1].Get("classification")
	assert.Equal(t, "[object Object]", data)
	assert.Equal(t, "Y", label)
}

func TestEncode_RFC4180NestedValuesStayJSON(t *testing.T) {
	rs := results(t, `[{"data":{"a":"1","b":"2"},"classification":"X"}]`)

	out, err := Encode(rs, ModeRFC4180)
	require.NoError(t, err)
	assert.Equal(t, "data,classification\n\"{\"\"a\"\":\"\"1\"\",\"\"b\"\":\"\"2\"\"}\",X", string(out))
}
