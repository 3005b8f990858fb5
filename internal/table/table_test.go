package table

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvclassify/internal/model"
	"github.com/JonMunkholm/csvclassify/internal/tabular"
)

// resultsFromCSV builds string-valued results from CSV text.
func resultsFromCSV(text string) []model.Result {
	tbl := tabular.Parse(text)
	out := make([]model.Result, 0, tbl.Len())
	for _, row := range tbl.Rows {
		rec := model.NewRecord(len(tbl.Columns))
		for i, v := range row.Values() {
			rec.Set(tbl.Columns[i], model.String(v))
		}
		out = append(out, model.NewResult(rec))
	}
	return out
}

func resultsFromJSON(t *testing.T, s string) []model.Result {
	t.Helper()
	var out []model.Result
	require.NoError(t, json.Unmarshal([]byte(s), &out))
	return out
}

func field(r model.Result, col string) string {
	v, ok := r.Fields.Get(col)
	if !ok {
		return "<missing>"
	}
	return v.String()
}

func column(rs []model.Result, col string) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = field(r, col)
	}
	return out
}

func numbered(n int) []model.Result {
	var b strings.Builder
	b.WriteString("id\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "%d\n", i)
	}
	return resultsFromCSV(b.String())
}

func TestBuild_SearchScenario(t *testing.T) {
	results := resultsFromCSV("name,age\nA,10\nB,20\nC,30")

	v := Build(results, NewState().WithSearch("B"))

	require.Len(t, v.Rows, 1)
	assert.Equal(t, "B", field(v.Rows[0], "name"))
	assert.Equal(t, "20", field(v.Rows[0], "age"))
	assert.Equal(t, 3, v.Total)
	assert.Equal(t, 1, v.Filtered)
	assert.False(t, v.ShowPager())
}

func TestBuild_SearchIsCaseInsensitive(t *testing.T) {
	results := resultsFromCSV("name\nStraße\nALPHA\nbeta")

	assert.Equal(t, []string{"ALPHA"}, column(Build(results, NewState().WithSearch("alp")).Rows, "name"))
	assert.Equal(t, []string{"beta"}, column(Build(results, NewState().WithSearch("BETA")).Rows, "name"))
	assert.Equal(t, []string{"Straße"}, column(Build(results, NewState().WithSearch("STRAßE")).Rows, "name"))
}

func TestBuild_SearchMatchesNonStringValues(t *testing.T) {
	results := resultsFromJSON(t, `[{"n":1,"c":0.95},{"n":2,"c":0.5},{"n":3,"ok":true}]`)

	assert.Equal(t, 1, Build(results, NewState().WithSearch("0.9")).Filtered)
	assert.Equal(t, 1, Build(results, NewState().WithSearch("true")).Filtered)
}

func TestBuild_Pagination25Rows(t *testing.T) {
	results := numbered(25)

	v := Build(results, NewState())
	assert.Equal(t, 3, v.TotalPages)
	assert.True(t, v.ShowPager())
	assert.False(t, v.HasPrev())
	assert.True(t, v.HasNext())

	v = Build(results, NewState().WithPage(3, v.TotalPages))
	assert.Equal(t, 3, v.Page)
	assert.Equal(t, []string{"21", "22", "23", "24", "25"}, column(v.Rows, "id"))
	assert.Equal(t, 21, v.Start)
	assert.Equal(t, 25, v.End)
	assert.False(t, v.HasNext())
}

func TestBuild_PageSlicesCoverSet(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 11, 25, 100} {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			results := numbered(n)
			first := Build(results, NewState())

			sum := 0
			var seen []string
			for p := 1; p <= max(first.TotalPages, 1); p++ {
				v := Build(results, NewState().WithPage(p, first.TotalPages))
				assert.GreaterOrEqual(t, v.Page, 1)
				sum += len(v.Rows)
				seen = append(seen, column(v.Rows, "id")...)
			}
			assert.Equal(t, n, sum)
			assert.Equal(t, column(results, "id"), append([]string{}, seen...))
		})
	}
}

func TestBuild_ClampsOutOfRangePage(t *testing.T) {
	results := numbered(25)

	v := Build(results, State{Page: 99})
	assert.Equal(t, 3, v.Page)

	v = Build(results, State{Page: -2})
	assert.Equal(t, 1, v.Page)

	v = Build(nil, State{Page: 4})
	assert.Equal(t, 1, v.Page)
	assert.Equal(t, 0, v.TotalPages)
	assert.Equal(t, 0, v.Start)
	assert.Empty(t, v.Rows)
}

func TestFilter_MonotoneAsTermExtends(t *testing.T) {
	results := resultsFromCSV("w\nalpha\nalphabet\nalpine\nbeta\nalp")
	prev := len(results)
	for _, term := range []string{"", "a", "al", "alp", "alph", "alpha", "alphab"} {
		got := Filter(results, term)
		assert.LessOrEqual(t, len(got), prev, "term %q", term)
		prev = len(got)
	}
}

func TestSort_Numeric(t *testing.T) {
	results := resultsFromJSON(t, `[{"v":10},{"v":9},{"v":100},{"v":-1}]`)

	got := column(Sort(results, "v", false), "v")
	assert.Equal(t, []string{"-1", "9", "10", "100"}, got)

	got = column(Sort(results, "v", true), "v")
	assert.Equal(t, []string{"100", "10", "9", "-1"}, got)
}

func TestSort_StringCompareForMixed(t *testing.T) {
	results := resultsFromJSON(t, `[{"v":"10"},{"v":"9"},{"v":"100"}]`)

	got := column(Sort(results, "v", false), "v")
	assert.Equal(t, []string{"10", "100", "9"}, got)
}

func TestSort_MissingSortsLast(t *testing.T) {
	results := resultsFromJSON(t, `[{"id":1},{"id":2,"v":"b"},{"id":3},{"id":4,"v":"a"}]`)

	asc := Sort(results, "v", false)
	assert.Equal(t, []string{"4", "2", "1", "3"}, column(asc, "id"))

	desc := Sort(results, "v", true)
	assert.Equal(t, []string{"2", "4", "1", "3"}, column(desc, "id"))
}

func TestSort_Properties(t *testing.T) {
	results := resultsFromCSV("k,id\nb,1\na,2\nb,3\nc,4\na,5")

	once := Sort(results, "k", false)
	twice := Sort(once, "k", false)
	if diff := cmp.Diff(column(once, "id"), column(twice, "id")); diff != "" {
		t.Errorf("ascending twice differs from once (-once +twice):\n%s", diff)
	}
	assert.Equal(t, []string{"2", "5", "1", "3", "4"}, column(once, "id"), "stable")

	st := NewState().WithSort("k")
	assert.False(t, st.SortDesc)
	st = st.WithSort("k")
	assert.True(t, st.SortDesc)
	st = st.WithSort("k")
	assert.False(t, st.SortDesc)
	assert.Equal(t, column(once, "id"), column(Build(results, st).Rows, "id"))

	assert.Equal(t, column(results, "id"), column(Sort(results, "", false), "id"))
}

func TestState_Transitions(t *testing.T) {
	st := State{Search: "x", SortColumn: "a", SortDesc: true, Page: 3}

	assert.Equal(t, 1, st.WithSearch("y").Page)
	assert.Equal(t, "y", st.WithSearch("y").Search)

	next := st.WithSort("b")
	assert.Equal(t, "b", next.SortColumn)
	assert.False(t, next.SortDesc)
	assert.Equal(t, 3, next.Page)

	assert.Equal(t, 2, st.WithPage(2, 5).Page)
	assert.Equal(t, 5, st.WithPage(9, 5).Page)
	assert.Equal(t, 1, st.WithPage(0, 5).Page)
	assert.Equal(t, 1, st.WithPage(3, 0).Page)

	assert.Equal(t, NewState(), st.Reset())
}

func TestColumns_UnionInFirstSeenOrder(t *testing.T) {
	results := resultsFromJSON(t, `[{"a":1,"b":2},{"c":3,"a":4},{"d":5,"b":6}]`)
	assert.Equal(t, []string{"a", "b", "c", "d"}, Columns(results))
	assert.Empty(t, Columns(nil))
}

func renderItems(items []PageItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		switch {
		case it.Ellipsis:
			parts[i] = "..."
		case it.Current:
			parts[i] = "[" + strconv.Itoa(it.Page) + "]"
		default:
			parts[i] = strconv.Itoa(it.Page)
		}
	}
	return strings.Join(parts, " ")
}

func TestPageItems(t *testing.T) {
	tests := []struct {
		current, total int
		want           string
	}{
		{1, 1, "[1]"},
		{1, 2, "[1] 2"},
		{2, 3, "1 [2] 3"},
		{3, 5, "1 2 [3] 4 5"},
		{1, 10, "[1] 2 3 4 5 ... 10"},
		{3, 10, "1 2 [3] 4 5 ... 10"},
		{4, 10, "1 ... 3 [4] 5 ... 10"},
		{5, 10, "1 ... 4 [5] 6 ... 10"},
		{8, 10, "1 ... 6 7 [8] 9 10"},
		{10, 10, "1 ... 6 7 8 9 [10]"},
		{3, 6, "1 2 [3] 4 5 ... 6"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_of_%d", tt.current, tt.total), func(t *testing.T) {
			if got := renderItems(PageItems(tt.current, tt.total)); got != tt.want {
				t.Errorf("PageItems(%d, %d) = %q, want %q", tt.current, tt.total, got, tt.want)
			}
		})
	}
}

func TestBadge(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"", "blue"},
		{"Category A", "green"},
		{"Category B", "orange"},
		{"A", "blue"},   // 65
		{"B", "purple"}, // 66
	}
	for _, tt := range tests {
		if got := Badge(tt.label); got != tt.want {
			t.Errorf("Badge(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		c        float64
		wantTier Tier
		wantText string
	}{
		{0.95, TierHigh, "95.0%"},
		{0.8, TierHigh, "80.0%"},
		{0.7999, TierMedium, "80.0%"},
		{0.6, TierMedium, "60.0%"},
		{0.1234, TierLow, "12.3%"},
		{1.7, TierHigh, "170.0%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.wantTier, ConfidenceTier(tt.c), "tier for %v", tt.c)
		assert.Equal(t, tt.wantText, FormatConfidence(tt.c), "text for %v", tt.c)
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-01-02T15:04:05Z", "1/2/2024, 3:04:05 PM"},
		{"2024-01-02T15:04:05.123Z", "1/2/2024, 3:04:05 PM"},
		{"2024-01-02T01:04:05+02:00", "1/1/2024, 11:04:05 PM"},
		{"2024-12-31", "12/31/2024, 12:00:00 AM"},
		{"2024-12-31T08:00:00", "12/31/2024, 8:00:00 AM"},
		{"not a date", "Invalid Date"},
		{"", "Invalid Date"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.in, time.UTC); got != tt.want {
			t.Errorf("FormatTimestamp(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHeaderLabel(t *testing.T) {
	assert.Equal(t, "Classification", HeaderLabel("classification"))
	assert.Equal(t, "ProcessedAt", HeaderLabel("processedAt"))
	assert.Equal(t, "Éclair", HeaderLabel("éclair"))
	assert.Equal(t, "", HeaderLabel(""))
	assert.Equal(t, "1st", HeaderLabel("1st"))
}
