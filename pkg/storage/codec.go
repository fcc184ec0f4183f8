package storage

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
)

func encodeGob(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeGob(b []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(b)).Decode(v)
}

// seqKey keeps records in append order under pebble's byte ordering.
func seqKey(seq uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], seq)
	return k[:]
}

func seqFromKey(k []byte) uint64 {
	return binary.BigEndian.Uint64(k)
}
