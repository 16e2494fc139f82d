package codec

import "fmt"

// ByName returns the codec registered under name: "json", "msgpack", "cbor" or
// "cbor-det" (deterministic CBOR). Protobuf needs a constructor and is not listed.
func ByName[V any](name string) (Codec[V], error) {
	switch name {
	case "", "json":
		return JSON[V]{}, nil
	case "msgpack":
		return Msgpack[V]{}, nil
	case "cbor":
		return NewCBOR[V](CBOROptions{})
	case "cbor-det":
		return NewCBOR[V](CBOROptions{Deterministic: true})
	default:
		return nil, fmt.Errorf("codec: unknown codec %q", name)
	}
}
