package upload

import (
	"bytes"
	"testing"
)

// BenchmarkAccept benchmarks validating, decoding and parsing an upload
// that starts with a byte order mark.
func BenchmarkAccept(b *testing.B) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name,value\n")...)
	data = append(data, bytes.Repeat([]byte("alpha,1\n"), 5000)...)
	c := NewCoordinator(0)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := c.Accept(Selection{Name: "bench.csv", Size: int64(len(data)), Content: bytes.NewReader(data)}); err != nil {
			b.Fatal(err)
		}
	}
}
