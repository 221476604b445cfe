package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/heinlein/internal/log"
	"github.com/zjrosen/heinlein/internal/presentation"
	"github.com/zjrosen/heinlein/internal/tracing"
)

type settingKind int

const (
	kindString settingKind = iota
	kindBool
	kindFloat
)

type setting struct {
	kind  settingKind
	check func(string) error
}

// settings lists every key config:set accepts.
var settings = map[string]setting{
	"root":       {kind: kindString},
	"debug":      {kind: kindBool},
	"log_file":   {kind: kindString},
	"assume_yes": {kind: kindBool},
	"output": {kind: kindString, check: func(v string) error {
		_, err := presentation.ParseFormat(v)
		return err
	}},
	"tracing.enabled": {kind: kindBool},
	"tracing.exporter": {kind: kindString, check: func(v string) error {
		return tracing.Config{Exporter: v}.Validate()
	}},
	"tracing.file_path":     {kind: kindString},
	"tracing.otlp_endpoint": {kind: kindString},
	"tracing.sample_rate": {kind: kindFloat, check: func(v string) error {
		f, _ := strconv.ParseFloat(v, 64)
		return tracing.Config{SampleRate: f}.Validate()
	}},
	"tracing.service_name": {kind: kindString},
}

// SettingKeys returns the keys accepted by SaveSetting, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SaveSetting sets a single dotted key in the config file, creating the file and
// any intermediate mappings as needed. Comments and formatting elsewhere in the
// file are preserved by editing a yaml.Node tree.
func SaveSetting(configPath, key, value string) error {
	s, ok := settings[key]
	if !ok {
		return fmt.Errorf("unknown setting %q (valid: %s)", key, strings.Join(SettingKeys(), ", "))
	}
	valueNode, err := scalarNode(s.kind, value)
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	if s.check != nil {
		if err := s.check(value); err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
	}

	data, err := os.ReadFile(configPath) //nolint:gosec // G304: path is the user's own config file
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	// Parse into yaml.Node to preserve comments
	var doc yaml.Node
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("parsing config: top level is not a mapping")
	}

	if err := setPath(root, strings.Split(key, "."), valueNode); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := renameio.WriteFile(configPath, buf.Bytes(), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to save setting", err, "path", configPath, "key", key)
		return fmt.Errorf("writing config: %w", err)
	}

	log.Info(log.CatConfig, "Saved setting", "path", configPath, "key", key, "value", value)
	return nil
}

// setPath walks mapping nodes along keys, creating missing ones, and replaces
// the final value while keeping its comments.
func setPath(node *yaml.Node, keys []string, value *yaml.Node) error {
	for i, k := range keys {
		last := i == len(keys)-1

		var child *yaml.Node
		for j := 0; j < len(node.Content)-1; j += 2 {
			if node.Content[j].Value == k {
				child = node.Content[j+1]
				if last {
					value.HeadComment = child.HeadComment
					value.LineComment = child.LineComment
					value.FootComment = child.FootComment
					node.Content[j+1] = value
					return nil
				}
				break
			}
		}

		if last {
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, value)
			return nil
		}

		switch {
		case child == nil:
			child = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, child)
		case child.Kind == yaml.ScalarNode && child.Tag == "!!null":
			// "tracing:" with no value
			child.Kind, child.Tag, child.Value = yaml.MappingNode, "!!map", ""
		}
		if child.Kind != yaml.MappingNode {
			return fmt.Errorf("%s is not a mapping", strings.Join(keys[:i+1], "."))
		}
		node = child
	}
	return nil
}

func scalarNode(kind settingKind, value string) (*yaml.Node, error) {
	switch kind {
	case kindBool:
		switch strings.ToLower(value) {
		case "yes", "on":
			value = "true"
		case "no", "off":
			value = "false"
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", value)
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(b)}, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", value)
		}
		text := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(text, ".") {
			text += ".0"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: text}, nil
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}, nil
	}
}
