package tabular

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Basic(t *testing.T) {
	tbl := Parse("name,age\nA,10\nB,20\nC,30")

	require.Equal(t, []string{"name", "age"}, tbl.Columns)
	require.Len(t, tbl.Rows, 3)

	got, ok := tbl.Rows[1].Get("name")
	assert.True(t, ok)
	assert.Equal(t, "B", got)

	got, ok = tbl.Rows[2].Get("age")
	assert.True(t, ok)
	assert.Equal(t, "30", got)
}

func TestParse_Empty(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"only newlines", "\n\n\n"},
		{"whitespace lines", "   \n\t\n  \r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := Parse(tt.input)
			assert.Empty(t, tbl.Columns)
			assert.Empty(t, tbl.Rows)
			assert.True(t, tbl.Empty())
		})
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	tbl := Parse("a,b,c\n")
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Columns)
	assert.Equal(t, 0, tbl.Len())
}

func TestParse_SkipsBlankLines(t *testing.T) {
	tbl := Parse("a,b\n\n1,2\n   \n3,4\n")
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"1", "2"}, tbl.Rows[0].Values())
	assert.Equal(t, []string{"3", "4"}, tbl.Rows[1].Values())
}

func TestParse_PadsShortRows(t *testing.T) {
	tbl := Parse("a,b,c\n1\n1,2")
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"1", "", ""}, tbl.Rows[0].Values())
	assert.Equal(t, []string{"1", "2", ""}, tbl.Rows[1].Values())
}

func TestParse_DropsExtraFields(t *testing.T) {
	tbl := Parse("a,b\n1,2,3,4")
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, []string{"1", "2"}, tbl.Rows[0].Values())
}

func TestParse_TrimsAndStripsQuotes(t *testing.T) {
	tbl := Parse("\" name \" , \"age\"\r\n  \"Alice\"  ,  \"3\"\"0\"  \r\n")
	assert.Equal(t, []string{" name ", "age"}, tbl.Columns)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, []string{"Alice", "30"}, tbl.Rows[0].Values())
}

func TestParse_QuotedCommaStillSplits(t *testing.T) {
	tbl := Parse("a,b\n\"x,y\",z")
	require.Equal(t, 1, tbl.Len())
	// The comma is not protected by the quotes.
	assert.Equal(t, []string{"x", "y"}, tbl.Rows[0].Values())
}

func TestParse_DuplicateHeaders(t *testing.T) {
	tbl := Parse("id,name,id\n1,A,2")
	assert.Equal(t, []string{"id", "name"}, tbl.Columns)
	require.Equal(t, 1, tbl.Len())

	id, _ := tbl.Rows[0].Get("id")
	assert.Equal(t, "2", id, "later header position wins")
}

func TestParse_RowCountProperty(t *testing.T) {
	for n := 1; n <= 30; n++ {
		t.Run(fmt.Sprintf("lines=%d", n), func(t *testing.T) {
			var b strings.Builder
			b.WriteString("h1,h2,h3\n")
			for i := 1; i < n; i++ {
				// Vary the field count to exercise padding and truncation.
				fields := make([]string, i%5)
				for j := range fields {
					fields[j] = fmt.Sprintf("v%d", j)
				}
				line := strings.Join(fields, ",")
				if line == "" {
					line = "x"
				}
				b.WriteString(line)
				b.WriteString("\n\n")
			}

			tbl := Parse(b.String())
			require.Equal(t, n-1, tbl.Len())
			for _, row := range tbl.Rows {
				assert.Equal(t, 3, row.Len())
				assert.Len(t, row.Values(), 3)
			}
		})
	}
}

func TestRow_GetMissing(t *testing.T) {
	row := NewRow([]string{"a"}, []string{"1", "2"})
	_, ok := row.Get("b")
	assert.False(t, ok)
	assert.Equal(t, []string{"1"}, row.Values())
}

func TestRow_ValuesIsCopy(t *testing.T) {
	row := NewRow([]string{"a"}, []string{"1"})
	v := row.Values()
	v[0] = "changed"
	got, _ := row.Get("a")
	assert.Equal(t, "1", got)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk gone")
}

func TestParseReader(t *testing.T) {
	tbl, err := ParseReader(strings.NewReader("a\n1\n2"))
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())

	_, err = ParseReader(failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}
