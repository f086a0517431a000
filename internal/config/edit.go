package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SetValue rewrites a single key in the YAML file at path, keeping the rest
// of the document (comments included) as it is. Missing mappings along
// keyPath are created; a missing file starts from an empty document. The
// result must still load and validate, otherwise the file is left untouched.
func SetValue(path, keyPath string, value any) error {
	keys := strings.Split(keyPath, ".")
	for _, k := range keys {
		if k == "" {
			return fmt.Errorf("invalid key path %q", keyPath)
		}
	}

	var doc yaml.Node
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("%s: failed to parse yaml: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return fmt.Errorf("%s: failed to read: %w", path, err)
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		head := doc.HeadComment
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
		doc.HeadComment = head
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("%s: top level must be a mapping", path)
	}

	var valNode yaml.Node
	if err := valNode.Encode(value); err != nil {
		return fmt.Errorf("failed to encode %s: %w", keyPath, err)
	}

	node := root
	for i, key := range keys {
		last := i == len(keys)-1
		child := mappingValue(node, key)
		if child == nil {
			child = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			if last {
				child = &valNode
			}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, child)
		} else if last {
			valNode.HeadComment = child.HeadComment
			valNode.LineComment = child.LineComment
			valNode.FootComment = child.FootComment
			*child = valNode
		}
		if !last && child.Kind != yaml.MappingNode {
			return fmt.Errorf("%s: %s is not a mapping", path, strings.Join(keys[:i+1], "."))
		}
		node = child
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	var raw RawConfig
	if err := decodeStrictYAML(buf.Bytes(), &raw); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := BuildEffectiveConfig(raw).Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
