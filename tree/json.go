package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

var ErrTrailingData = errors.New("trailing data after json value")

// UnmarshalJSON parses a single JSON value keeping the order of object
// members. Integral numbers become Int scalars, the rest Float.
func UnmarshalJSON(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	n, err := readJSON(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to parse json: %w", err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse json: %w", ErrTrailingData)
	}

	return n, nil
}

func readJSON(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	default:
		return nil, fmt.Errorf("unexpected json token %v", tok)
	case nil:
		return Null{}, nil
	case bool:
		return Bool(v), nil
	case string:
		return Text(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return Int(i), nil
		}

		f, err := v.Float64()
		if err != nil {
			return nil, err
		}

		return Float(f), nil
	case json.Delim:
		switch v {
		case '[':
			var items []Node

			for dec.More() {
				item, err := readJSON(dec)
				if err != nil {
					return nil, err
				}

				items = append(items, item)
			}

			_, err := dec.Token() // ]

			return Seq(items...), err
		case '{':
			var entries []Entry

			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}

				key, _ := keyTok.(string)

				value, err := readJSON(dec)
				if err != nil {
					return nil, err
				}

				entries = append(entries, Pair(key, value))
			}

			_, err := dec.Token() // }

			return Map(entries...), err
		default:
			return nil, fmt.Errorf("unexpected json delimiter %v", v)
		}
	}
}

// MarshalJSON renders n as compact JSON, members in mapping order.
func MarshalJSON(n Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, OrNull(n)); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// MarshalJSONIndent is MarshalJSON followed by json.Indent.
func MarshalJSONIndent(n Node, prefix, indent string) ([]byte, error) {
	compact, err := MarshalJSON(n)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, prefix, indent); err != nil {
		return nil, fmt.Errorf("failed to indent json: %w", err)
	}

	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, n Node) error {
	switch v := n.(type) {
	default:
		buf.WriteString("null")
	case Scalar:
		return writeJSONScalar(buf, v)
	case Sequence:
		buf.WriteByte('[')

		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}

		buf.WriteByte(']')
	case Mapping:
		buf.WriteByte('{')

		for i, e := range v.entries {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := writeJSONString(buf, e.Key); err != nil {
				return err
			}

			buf.WriteByte(':')

			if err := writeJSON(buf, e.Value); err != nil {
				return fmt.Errorf("%s: %w", e.Key, err)
			}
		}

		buf.WriteByte('}')
	}

	return nil
}

func writeJSONScalar(buf *bytes.Buffer, s Scalar) error {
	switch v := s.Value().(type) {
	case bool:
		buf.WriteString(strconv.FormatBool(v))
	case int64:
		buf.WriteString(strconv.FormatInt(v, 10))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %v is not representable in json", ErrUnsupportedValue, v)
		}

		buf.WriteString(formatFloat(v))
	default:
		return writeJSONString(buf, s.Text())
	}

	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(s); err != nil {
		return err
	}

	buf.Truncate(buf.Len() - 1) // Encode appends a newline

	return nil
}
