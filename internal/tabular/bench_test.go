package tabular

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

// generateTestCSV builds a CSV with rows data lines of mixed content.
func generateTestCSV(rows int) string {
	var b strings.Builder
	b.WriteString("id,name,email,amount,notes\n")
	for i := range rows {
		fmt.Fprintf(&b, "%d,User %d,user%d@example.com,%d.%02d,\"quoted note %d\"\n", i, i, i, i*3, i%100, i)
	}
	return b.String()
}

// BenchmarkParse benchmarks parsing a typical upload.
func BenchmarkParse(b *testing.B) {
	data := generateTestCSV(100)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Parse(data)
	}
}

// BenchmarkParse_Large benchmarks parsing a larger upload.
func BenchmarkParse_Large(b *testing.B) {
	data := generateTestCSV(10000)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Parse(data)
	}
}

// BenchmarkParse_Comparison compares parsing from a string and a reader.
func BenchmarkParse_Comparison(b *testing.B) {
	data := generateTestCSV(1000)

	b.Run("String", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			Parse(data)
		}
	})

	b.Run("Reader", func(b *testing.B) {
		raw := []byte(data)
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := ParseReader(bytes.NewReader(raw)); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkParse_Wide benchmarks a file with many columns.
func BenchmarkParse_Wide(b *testing.B) {
	header := make([]string, 100)
	row := make([]string, 100)
	for i := range header {
		header[i] = fmt.Sprintf("Column_%d", i)
		row[i] = fmt.Sprintf("value %d", i)
	}
	data := strings.Join(header, ",") + "\n" + strings.Repeat(strings.Join(row, ",")+"\n", 200)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Parse(data)
	}
}
