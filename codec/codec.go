// Package codec holds the serializers used at the byte-tier boundary.
// The typed local tier (tier/memory) stores values directly and needs none.
package codec

// Codec encodes/decodes values V to []byte for storage.
// Encode errors surface from Set; Decode errors surface from Get. Neither is retried.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
