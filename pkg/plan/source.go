package plan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Plans []Entry `yaml:"plans"`
}

// LoadCatalog decodes a YAML catalog document:
//
//	plans:
//	  - price_id: price_123
//	    name: Starter
//	    mode: subscription
//	    pending_status: pending_activation
func LoadCatalog(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f catalogFile
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Join(ErrInvalidCatalog, fmt.Errorf("decode catalog: %w", err))
	}
	return NewCatalog(f.Plans...)
}

// LoadCatalogFile reads a YAML catalog from path.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return LoadCatalog(bytes.NewReader(data))
}
