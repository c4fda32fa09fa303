package yamlconfig

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	pathSeparator = "."

	tagStr  = "!!str"
	tagMap  = "!!map"
	tagNull = "!!null"
)

func splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	parts := strings.Split(path, pathSeparator)
	if slices.Contains(parts, "") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return parts, nil
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + pathSeparator + key
}

func newMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: tagMap}
}

func newString(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagStr, Value: v}
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// mappingValue returns the position of key's value in m.Content or -1.
func mappingValue(m *yaml.Node, key string) int {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return i + 1
		}
	}
	return -1
}

func sequenceIndex(s *yaml.Node, seg string) int {
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 || i >= len(s.Content) {
		return -1
	}
	return i
}

// child returns the node addressed by seg below n, following aliases.
func child(n *yaml.Node, seg string) *yaml.Node {
	n = resolve(n)
	switch n.Kind {
	case yaml.MappingNode:
		if i := mappingValue(n, seg); i >= 0 {
			return n.Content[i]
		}
	case yaml.SequenceNode:
		if i := sequenceIndex(n, seg); i >= 0 {
			return n.Content[i]
		}
	}
	return nil
}

func lookup(root *yaml.Node, parts []string) (*yaml.Node, error) {
	cur := root
	for i, seg := range parts {
		cur = child(cur, seg)
		if cur == nil {
			return nil, fmt.Errorf("%w: %q", ErrPathNotFound, strings.Join(parts[:i+1], pathSeparator))
		}
	}
	return resolve(cur), nil
}

// leafText returns a scalar's text and whether it is a YAML string.
func leafText(n *yaml.Node) (string, bool, error) {
	if n.Kind != yaml.ScalarNode {
		return "", false, ErrNotLeaf
	}
	return n.Value, n.ShortTag() == tagStr, nil
}

// parent walks to the node holding the last segment, creating missing
// mappings on the way. Null values are turned into mappings.
func parent(root *yaml.Node, parts []string) (*yaml.Node, error) {
	cur := root
	for i, seg := range parts[:len(parts)-1] {
		next := child(cur, seg)
		switch {
		case next == nil && resolve(cur).Kind == yaml.MappingNode:
			next = newMapping()
			m := resolve(cur)
			m.Content = append(m.Content, newString(seg), next)
		case next == nil:
			return nil, fmt.Errorf("%w: %q", ErrPathNotFound, strings.Join(parts[:i+1], pathSeparator))
		default:
			next = resolve(next)
			if next.Kind == yaml.ScalarNode && next.ShortTag() == tagNull {
				*next = yaml.Node{Kind: yaml.MappingNode, Tag: tagMap, HeadComment: next.HeadComment, LineComment: next.LineComment}
			}
		}

		if k := next.Kind; k != yaml.MappingNode && k != yaml.SequenceNode {
			return nil, fmt.Errorf("%w: %q", ErrNotMapping, strings.Join(parts[:i+1], pathSeparator))
		}
		cur = next
	}
	return resolve(cur), nil
}

func setLeaf(root *yaml.Node, parts []string, value string) error {
	container, err := parent(root, parts)
	if err != nil {
		return err
	}
	path := strings.Join(parts, pathSeparator)
	last := parts[len(parts)-1]

	var slot **yaml.Node
	switch container.Kind {
	case yaml.MappingNode:
		i := mappingValue(container, last)
		if i < 0 {
			container.Content = append(container.Content, newString(last), newString(value))
			return nil
		}
		slot = &container.Content[i]
	case yaml.SequenceNode:
		i := sequenceIndex(container, last)
		if i < 0 {
			return fmt.Errorf("%w: %q", ErrPathNotFound, path)
		}
		slot = &container.Content[i]
	default:
		return fmt.Errorf("%w: %q", ErrNotMapping, path)
	}

	old := *slot
	switch old.Kind {
	case yaml.ScalarNode:
		old.Tag = tagStr
		old.Value = value
		if old.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) == 0 {
			old.Style = 0
		}
	case yaml.AliasNode:
		// Replace the alias itself, never the anchored node it points to.
		if resolve(old).Kind != yaml.ScalarNode {
			return fmt.Errorf("%w: %q", ErrNotLeaf, path)
		}
		*slot = newString(value)
	default:
		return fmt.Errorf("%w: %q", ErrNotLeaf, path)
	}
	return nil
}

func remove(root *yaml.Node, parts []string) error {
	if _, err := lookup(root, parts); err != nil {
		return err
	}

	container := root
	if len(parts) > 1 {
		var err error
		if container, err = lookup(root, parts[:len(parts)-1]); err != nil {
			return err
		}
	}
	if container.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: %q", ErrNotMapping, strings.Join(parts[:len(parts)-1], pathSeparator))
	}

	i := mappingValue(container, parts[len(parts)-1])
	container.Content = slices.Delete(container.Content, i-1, i+1)
	return nil
}

func keys(m *yaml.Node) []string {
	names := make([]string, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		names = append(names, m.Content[i].Value)
	}
	return names
}

// walkStrings calls fn for every string scalar below n in document order.
// Aliases are skipped so anchored values are visited once.
func walkStrings(n *yaml.Node, prefix string, fn func(path string, leaf *yaml.Node) error) error {
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			if err := walkNode(n.Content[i+1], joinPath(prefix, n.Content[i].Value), fn); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		for i, item := range n.Content {
			if err := walkNode(item, joinPath(prefix, strconv.Itoa(i)), fn); err != nil {
				return err
			}
		}
	}
	return nil
}

func walkNode(n *yaml.Node, path string, fn func(string, *yaml.Node) error) error {
	if n.Kind == yaml.ScalarNode {
		if n.ShortTag() == tagStr {
			return fn(path, n)
		}
		return nil
	}
	return walkStrings(n, path, fn)
}

// merge copies src pairs into dst, recursing into mappings present on both
// sides.
func merge(dst, src *yaml.Node) {
	for i := 0; i+1 < len(src.Content); i += 2 {
		key, val := src.Content[i], src.Content[i+1]
		j := mappingValue(dst, key.Value)
		switch {
		case j < 0:
			dst.Content = append(dst.Content, key, val)
		case dst.Content[j].Kind == yaml.MappingNode && val.Kind == yaml.MappingNode:
			merge(dst.Content[j], val)
		default:
			dst.Content[j] = val
		}
	}
}
