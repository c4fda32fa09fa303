package jsonconfig

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

const pathSeparator = "."

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

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}

func index(a []any, seg string) (int, bool) {
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 || i >= len(a) {
		return 0, false
	}
	return i, true
}

// lookup resolves parts against root. Array elements are addressed by their
// decimal index.
func lookup(root any, parts []string) (any, error) {
	cur := root
	for i, seg := range parts {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrPathNotFound, strings.Join(parts[:i+1], pathSeparator))
			}
			cur = v
		case []any:
			idx, ok := index(node, seg)
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrPathNotFound, strings.Join(parts[:i+1], pathSeparator))
			}
			cur = node[idx]
		default:
			return nil, fmt.Errorf("%w: %q", ErrPathNotFound, strings.Join(parts[:i+1], pathSeparator))
		}
	}
	return cur, nil
}

// leafText returns the textual form of a scalar and whether it is a JSON
// string.
func leafText(v any) (string, bool, error) {
	switch x := v.(type) {
	case string:
		return x, true, nil
	case json.Number:
		return x.String(), false, nil
	case bool:
		return strconv.FormatBool(x), false, nil
	case nil:
		return "null", false, nil
	default:
		return "", false, ErrNotLeaf
	}
}

// parent walks to the container holding the last segment, creating missing
// objects on the way.
func parent(root map[string]any, parts []string) (any, error) {
	var cur any = root
	for i, seg := range parts[:len(parts)-1] {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok || next == nil {
				child := make(map[string]any)
				node[seg] = child
				cur = child
				continue
			}
			cur = next
		case []any:
			idx, ok := index(node, seg)
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrPathNotFound, strings.Join(parts[:i+1], pathSeparator))
			}
			cur = node[idx]
		default:
			return nil, fmt.Errorf("%w: %q", ErrNotObject, strings.Join(parts[:i+1], pathSeparator))
		}
	}
	return cur, nil
}

func setLeaf(root map[string]any, parts []string, value string) error {
	container, err := parent(root, parts)
	if err != nil {
		return err
	}

	last := parts[len(parts)-1]
	switch node := container.(type) {
	case map[string]any:
		if old, ok := node[last]; ok {
			if _, _, err := leafText(old); err != nil {
				return fmt.Errorf("%w: %q", ErrNotLeaf, strings.Join(parts, pathSeparator))
			}
		}
		node[last] = value
	case []any:
		idx, ok := index(node, last)
		if !ok {
			return fmt.Errorf("%w: %q", ErrPathNotFound, strings.Join(parts, pathSeparator))
		}
		if _, _, err := leafText(node[idx]); err != nil {
			return fmt.Errorf("%w: %q", ErrNotLeaf, strings.Join(parts, pathSeparator))
		}
		node[idx] = value
	default:
		return fmt.Errorf("%w: %q", ErrNotObject, strings.Join(parts, pathSeparator))
	}
	return nil
}

// walkStrings calls fn for every string leaf below node in a stable order.
// set replaces the visited value.
func walkStrings(node any, prefix string, fn func(path, v string, set func(string)) error) error {
	switch n := node.(type) {
	case map[string]any:
		for _, k := range sortedKeys(n) {
			p := joinPath(prefix, k)
			if s, ok := n[k].(string); ok {
				if err := fn(p, s, func(v string) { n[k] = v }); err != nil {
					return err
				}
				continue
			}
			if err := walkStrings(n[k], p, fn); err != nil {
				return err
			}
		}
	case []any:
		for i := range n {
			p := joinPath(prefix, strconv.Itoa(i))
			if s, ok := n[i].(string); ok {
				if err := fn(p, s, func(v string) { n[i] = v }); err != nil {
					return err
				}
				continue
			}
			if err := walkStrings(n[i], p, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// merge copies src into dst, recursing into objects present on both sides.
func merge(dst, src map[string]any) {
	for k, v := range src {
		if sm, ok := v.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				merge(dm, sm)
				continue
			}
		}
		dst[k] = v
	}
}
