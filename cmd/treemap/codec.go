package main

import (
	"fmt"
	"io"
	"os"

	"tree-mapper/tree"
)

const (
	formatYAML    = "yaml"
	formatJSON    = "json"
	formatMsgpack = "msgpack"
)

var formats = []string{formatYAML, formatJSON, formatMsgpack}

func decode(format string, data []byte) (tree.Node, error) {
	switch format {
	case formatYAML:
		return tree.UnmarshalYAML(data)
	case formatJSON:
		return tree.UnmarshalJSON(data)
	case formatMsgpack:
		return tree.DecodeMsgpack(data)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// encode renders n; indent only applies to JSON, zero means compact.
func encode(format string, n tree.Node, indent int) ([]byte, error) {
	switch format {
	case formatYAML:
		return tree.MarshalYAML(n)
	case formatJSON:
		if indent <= 0 {
			return tree.MarshalJSON(n)
		}

		out, err := tree.MarshalJSONIndent(n, "", fmt.Sprintf("%*s", indent, ""))
		if err != nil {
			return nil, err
		}

		return append(out, '\n'), nil
	case formatMsgpack:
		return tree.EncodeMsgpack(n)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// readInput reads a file, or stdin for "-".
func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}

	return os.ReadFile(path)
}

func load(stdin io.Reader, path, format string) (tree.Node, error) {
	data, err := readInput(stdin, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	n, err := decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s as %s: %w", path, format, err)
	}

	return n, nil
}
