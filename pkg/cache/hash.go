package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey builds prefix:sha256(json(parts)).
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes the SHA-256 of data as 64 hex characters.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashInts hashes a sequence of integer arrays. Each array is prefixed with
// its length so that different splits of the same numbers hash apart.
func HashInts(arrays ...[]int) string {
	h := sha256.New()
	var buf [8]byte
	for _, a := range arrays {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(a)))
		h.Write(buf[:])
		for _, v := range a {
			binary.LittleEndian.PutUint64(buf[:], uint64(v))
			h.Write(buf[:])
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
