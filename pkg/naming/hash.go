package naming

import (
	"fmt"

	"github.com/minio/crc64nvme"
)

// Checksum returns the CRC-64/NVME checksum of data
func Checksum(data ...[]byte) uint64 {
	h := crc64nvme.New()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum64()
}

// ContentHash returns the checksum of data as 16 hex digits
func ContentHash(data ...[]byte) string {
	return fmt.Sprintf("%016x", Checksum(data...))
}
