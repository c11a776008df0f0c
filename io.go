// File: lixenwraith/hiconf/io.go
package hiconf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Dump writes the resolved configuration to w in TOML format
func (r *Resolved) Dump(w io.Writer) error {
	encoder := toml.NewEncoder(w)
	if err := encoder.Encode(r.ToMap()); err != nil {
		return fmt.Errorf("failed to marshal config data to TOML: %w", err)
	}
	return nil
}

// Save writes the resolved configuration to path atomically.
// The format follows the file extension: .toml, .json, .yaml or .yml.
func (r *Resolved) Save(path string) error {
	format := detectFileFormat(path)
	if format == "" {
		return fmt.Errorf("cannot determine export format from '%s'; use .toml, .json or .yaml", path)
	}

	data, err := r.Marshal(format)
	if err != nil {
		return err
	}
	return atomicWriteFile(path, data)
}

// Marshal encodes the resolved configuration as toml, json or yaml.
// JSON and YAML keep field declaration order.
func (r *Resolved) Marshal(format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "toml":
		if err := r.Dump(&buf); err != nil {
			return nil, err
		}

	case "yaml":
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(recordNode(r.root)); err != nil {
			return nil, fmt.Errorf("failed to marshal config data to YAML: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return nil, fmt.Errorf("failed to marshal config data to YAML: %w", err)
		}

	case "json":
		data, err := json.MarshalIndent(r.ToMap(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config data to JSON: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')

	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	return buf.Bytes(), nil
}

// recordNode builds a yaml mapping node in field declaration order
func recordNode(rec *Record) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range rec.Keys() {
		v, _ := rec.Get(key)
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			valueNode(v))
	}
	return node
}

func valueNode(v Value) *yaml.Node {
	switch v.Kind() {
	case KindRecord:
		return recordNode(v.AsRecord())
	case KindList:
		node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, e := range v.AsList() {
			node.Content = append(node.Content, valueNode(e))
		}
		return node
	}
	var node yaml.Node
	// Scalars cannot fail to encode
	_ = node.Encode(v.Interface())
	return &node
}

// atomicWriteFile performs atomic file write
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // Clean up on any error

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file '%s' to '%s': %w", tempPath, path, err)
	}

	return nil
}
