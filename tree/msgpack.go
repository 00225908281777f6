package tree

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// maxPrealloc bounds the capacity taken from a length prefix, which may
// announce far more items than the payload holds.
const maxPrealloc = 1024

// EncodeMsgpack renders n as MessagePack. Mappings are written as maps with
// string keys in mapping order.
func EncodeMsgpack(n Node) ([]byte, error) {
	var buf bytes.Buffer

	enc := msgpack.NewEncoder(&buf)
	if err := encodeMsgpack(enc, OrNull(n)); err != nil {
		return nil, fmt.Errorf("failed to encode msgpack: %w", err)
	}

	return buf.Bytes(), nil
}

func encodeMsgpack(enc *msgpack.Encoder, n Node) error {
	switch v := n.(type) {
	default:
		return enc.EncodeNil()
	case Scalar:
		switch x := v.Value().(type) {
		case bool:
			return enc.EncodeBool(x)
		case int64:
			return enc.EncodeInt(x)
		case float64:
			return enc.EncodeFloat64(x)
		default:
			return enc.EncodeString(v.Text())
		}
	case Sequence:
		if err := enc.EncodeArrayLen(v.Len()); err != nil {
			return err
		}

		for _, item := range v.items {
			if err := encodeMsgpack(enc, item); err != nil {
				return err
			}
		}

		return nil
	case Mapping:
		if err := enc.EncodeMapLen(v.Len()); err != nil {
			return err
		}

		for _, e := range v.entries {
			if err := enc.EncodeString(e.Key); err != nil {
				return err
			}

			if err := encodeMsgpack(enc, e.Value); err != nil {
				return err
			}
		}

		return nil
	}
}

// DecodeMsgpack parses a single MessagePack value. Map order is kept,
// scalar map keys are turned into text, binaries into text and timestamps
// into RFC3339Nano text.
func DecodeMsgpack(data []byte) (Node, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))

	n, err := decodeMsgpack(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to decode msgpack: %w", err)
	}

	if _, err := dec.PeekCode(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode msgpack: %w", ErrTrailingData)
	}

	return n, nil
}

func decodeMsgpack(dec *msgpack.Decoder) (Node, error) {
	code, err := dec.PeekCode()
	if err != nil {
		return nil, err
	}

	switch {
	case code == msgpcode.Nil:
		return Null{}, dec.DecodeNil()
	case msgpcode.IsFixedArray(code) || code == msgpcode.Array16 || code == msgpcode.Array32:
		size, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}

		items := make([]Node, 0, min(size, maxPrealloc))
		for range size {
			item, err := decodeMsgpack(dec)
			if err != nil {
				return nil, err
			}

			items = append(items, item)
		}

		return Seq(items...), nil
	case msgpcode.IsFixedMap(code) || code == msgpcode.Map16 || code == msgpcode.Map32:
		size, err := dec.DecodeMapLen()
		if err != nil {
			return nil, err
		}

		entries := make([]Entry, 0, min(size, maxPrealloc))
		for range size {
			key, err := decodeMsgpackKey(dec)
			if err != nil {
				return nil, err
			}

			value, err := decodeMsgpack(dec)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}

			entries = append(entries, Pair(key, value))
		}

		return Map(entries...), nil
	}

	v, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return nil, err
	}

	if t, ok := v.(time.Time); ok {
		return Text(t.UTC().Format(time.RFC3339Nano)), nil
	}

	return FromAny(v)
}

func decodeMsgpackKey(dec *msgpack.Decoder) (string, error) {
	n, err := decodeMsgpack(dec)
	if err != nil {
		return "", err
	}

	s, ok := n.(Scalar)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNonTextKey, n.Kind())
	}

	return s.Text(), nil
}
