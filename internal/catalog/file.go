package catalog

import (
	"bytes"
	_ "embed"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed data/default.yaml
var defaultData []byte

// Default returns a Memory catalog holding the built-in ingredient set.
func Default() *Memory {
	m, err := NewMemory(DefaultData())
	if err != nil {
		panic(err)
	}
	return m
}

// DefaultData returns a fresh copy of the built-in ingredient set. It panics
// if the embedded document does not parse.
func DefaultData() *Data {
	d, err := Parse(defaultData)
	if err != nil {
		panic(err)
	}
	return d
}

// Parse decodes a YAML catalog document. Unknown fields are rejected.
func Parse(b []byte) (*Data, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	d := &Data{}
	if err := dec.Decode(d); err != nil {
		return nil, eris.Wrap(err, "catalog: decode yaml")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
