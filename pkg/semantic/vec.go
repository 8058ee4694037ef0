package semantic

import (
	"bytes"
	"encoding/binary"

	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

func init() {
	// Register the sqlite-vec extension with the mattn/go-sqlite3 driver so
	// vec0 virtual tables and vec_distance_cosine are available on every
	// connection.
	vec.Auto()
}

// encodeVector serializes a float32 slice to the little-endian blob format
// sqlite-vec expects.
func encodeVector(v []float32) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, v)
	return buf.Bytes()
}
