package dataset

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns a content hash over column names and cell values.
// Two datasets with identical content produce the same fingerprint
// regardless of their UUIDs, so hosts can use it as a cache key for
// derived artifacts (classification, stats, correlation).
func (d *Dataset) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [8]byte
	for _, col := range d.cols {
		_, _ = h.WriteString(col.Name)
		_, _ = h.Write([]byte{0xff})
		for _, cell := range col.Cells {
			_, _ = h.Write([]byte{byte(cell.kind)})
			switch cell.kind {
			case KindNumber:
				binary.LittleEndian.PutUint64(buf[:], math.Float64bits(cell.num))
				_, _ = h.Write(buf[:])
			case KindText:
				_, _ = h.WriteString(cell.text)
				_, _ = h.Write([]byte{0x00})
			case KindTime:
				binary.LittleEndian.PutUint64(buf[:], uint64(cell.ts.UnixNano()))
				_, _ = h.Write(buf[:])
			}
		}
		_, _ = h.Write([]byte{0xfe})
	}
	return h.Sum64()
}
