package manifest

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schema []byte

const schemaRoot = "#Manifest"

// Load reads the manifest at path, choosing the decoder by extension.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	return Parse(data, filepath.Base(path))
}

// Parse decodes data as YAML (.yaml, .yml) or CUE (.cue, .json) based on the
// extension of filename, then validates the result.
func Parse(data []byte, filename string) (*Manifest, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".yaml", ".yml":
		return ParseYAML(data, filename)
	case ".cue", ".json":
		return ParseCUE(data, filename)
	default:
		return nil, ParseError{File: filename, Err: fmt.Errorf("unsupported extension %q", ext)}
	}
}

// ParseYAML decodes a YAML manifest. Unknown fields are rejected.
func ParseYAML(data []byte, filename string) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty document")
		}
		return nil, ParseError{File: filename, Err: err}
	}
	m.normalize()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// ParseCUE compiles data, unifies it with the #Manifest schema, validates and
// decodes it. JSON input is accepted since JSON is valid CUE.
func ParseCUE(data []byte, filename string) (*Manifest, error) {
	ctx := cuecontext.New()

	def := ctx.CompileBytes(schema).LookupPath(cue.ParsePath(schemaRoot))
	if def.Err() != nil {
		return nil, fmt.Errorf("manifest: schema %s: %w", schemaRoot, def.Err())
	}

	user := ctx.CompileBytes(data, cue.Filename(filename))
	if user.Err() != nil {
		return nil, cueError(user.Err(), filename)
	}

	unified := def.Unify(user)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError(err, filename)
	}

	var m Manifest
	if err := unified.Decode(&m); err != nil {
		return nil, cueError(err, filename)
	}
	m.normalize()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// cueError flattens a CUE error list into "path: message" lines.
func cueError(err error, filename string) error {
	pe := ParseError{File: filename, Err: err}
	for _, e := range cueerrors.Errors(err) {
		path := strings.Join(cueerrors.Path(e), ".")
		msg := e.Error()
		if path != "" && strings.HasPrefix(msg, path) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, path), ":"))
		}
		if path != "" {
			msg = path + ": " + msg
		}
		pe.Problems = append(pe.Problems, msg)
	}
	return pe
}
