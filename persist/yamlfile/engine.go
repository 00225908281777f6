// Package yamlfile stores values as YAML documents on disk. Property docs and
// type headers become comments, so the written file explains itself.
package yamlfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"

	"tree-mapper/mapper"
	"tree-mapper/persist"
	"tree-mapper/tree"
)

type Config struct {
	FileMode fs.FileMode
	DirMode  fs.FileMode
	// Comments writes property docs and type headers as YAML comments.
	Comments bool
}

func DefaultConfig() Config {
	return Config{
		FileMode: 0o644,
		DirMode:  0o755,
		Comments: true,
	}
}

// Engine is a persist.Engine for PathRef references.
type Engine struct {
	m      *mapper.Mapper
	cfg    Config
	logger *slog.Logger
}

var _ persist.Engine = (*Engine)(nil)

// New creates an engine. A nil logger discards records.
func New(m *mapper.Mapper, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Engine{m: m, cfg: cfg, logger: logger}
}

// Load reads the file at ref. A missing file is created from defaults and an
// empty file reads as an empty mapping.
func (e *Engine) Load(ctx context.Context, ref persist.Ref, t reflect.Type, defaults func() any) (any, error) {
	path, err := persist.PathOf(ref)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		v := persist.Defaults(t, defaults)
		if err := e.Save(ctx, ref, v); err != nil {
			return nil, err
		}

		e.logger.Info("defaults written", "path", path)

		return v, nil
	}

	if err != nil {
		return nil, fmt.Errorf("yamlfile: read %s: %w", path, err)
	}

	n, err := tree.UnmarshalYAML(data)
	if err != nil {
		return nil, fmt.Errorf("yamlfile: %s: %w", path, err)
	}

	if tree.IsNull(n) {
		n = tree.Map()
	}

	v, err := e.m.Decode(n, t)
	if err != nil {
		return nil, fmt.Errorf("yamlfile: decode %s: %w", path, err)
	}

	return v, nil
}

// Save writes v atomically, creating missing parent directories.
func (e *Engine) Save(_ context.Context, ref persist.Ref, v any) error {
	path, err := persist.PathOf(ref)
	if err != nil {
		return err
	}

	data, err := e.Marshal(v)
	if err != nil {
		return fmt.Errorf("yamlfile: encode %s: %w", path, err)
	}

	if err := writeAtomically(path, data, e.cfg.FileMode, e.cfg.DirMode); err != nil {
		return fmt.Errorf("yamlfile: write %s: %w", path, err)
	}

	e.logger.Debug("document saved", "path", path, "bytes", len(data))

	return nil
}

// Marshal renders v the way Save writes it.
func (e *Engine) Marshal(v any) ([]byte, error) {
	n, err := e.m.Encode(v)
	if err != nil {
		return nil, err
	}

	if tree.IsNull(n) {
		n = tree.Map()
	}

	doc := tree.ToYAMLNode(n)
	if e.cfg.Comments {
		doc = e.annotate(doc, reflect.ValueOf(v))
	}

	return tree.EncodeYAMLNode(doc)
}

func (e *Engine) Exists(_ context.Context, ref persist.Ref) (bool, error) {
	path, err := persist.PathOf(ref)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("yamlfile: stat %s: %w", path, err)
	}
}

// Delete removes the file; a missing file is not an error.
func (e *Engine) Delete(_ context.Context, ref persist.Ref) error {
	path, err := persist.PathOf(ref)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("yamlfile: delete %s: %w", path, err)
	}

	return nil
}

func (e *Engine) Close() error { return nil }

// writeAtomically writes into a temporary sibling and renames it over path.
func writeAtomically(path string, data []byte, fileMode, dirMode fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}

	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmp.Name(), fileMode); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
