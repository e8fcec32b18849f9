package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/eringen/scholarpage/content"
)

// Patch operations.
const (
	OpSet    = "set"
	OpDelete = "delete"
	OpInsert = "insert"
	OpMove   = "move"
)

// freeForm objects accept new keys on set.
var freeForm = map[string]bool{
	"profile.name":   true,
	"profile.social": true,
}

var (
	ErrInvalidPath  = errors.New("editor: invalid path")
	ErrInvalidOp    = errors.New("editor: unknown patch op")
	ErrInvalidValue = errors.New("editor: invalid value")
)

// Patch is a single edit addressed by a dotted data path. For insert the
// last path segment is the index to insert before; for move, To is the
// destination index within the same list.
type Patch struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
	To    int             `json:"to,omitempty"`
}

// Apply runs patches against s in order. Either all patches apply or s is
// left unchanged.
func Apply(s *content.Site, patches ...Patch) error {
	b, err := content.Marshal(*s)
	if err != nil {
		return err
	}
	var tree interface{}
	if err := json.Unmarshal(b, &tree); err != nil {
		return err
	}

	for _, p := range patches {
		if tree, err = applyOne(tree, p); err != nil {
			return fmt.Errorf("%s %s: %w", p.Op, p.Path, err)
		}
	}

	b, err = json.Marshal(tree)
	if err != nil {
		return err
	}
	var out content.Site
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	out.Normalize()
	*s = out
	return nil
}

func applyOne(tree interface{}, p Patch) (interface{}, error) {
	segs := strings.Split(p.Path, ".")
	if p.Path == "" {
		return nil, ErrInvalidPath
	}
	var value interface{}
	if p.Op == OpSet || p.Op == OpInsert {
		if len(p.Value) == 0 {
			return nil, ErrInvalidValue
		}
		if err := json.Unmarshal(p.Value, &value); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
	}

	parent, err := walk(tree, segs[:len(segs)-1])
	if err != nil {
		return nil, err
	}
	last := segs[len(segs)-1]

	switch p.Op {
	case OpSet:
		if m, ok := parent.(map[string]interface{}); ok {
			if _, exists := m[last]; !exists && !freeForm[strings.Join(segs[:len(segs)-1], ".")] {
				return nil, ErrInvalidPath
			}
		}
		return tree, set(parent, last, value)
	case OpDelete:
		switch c := parent.(type) {
		case map[string]interface{}:
			if _, ok := c[last]; !ok {
				return nil, ErrInvalidPath
			}
			delete(c, last)
			return tree, nil
		case []interface{}:
			i, ok := index(last, len(c))
			if !ok {
				return nil, ErrInvalidPath
			}
			return tree, replace(tree, segs[:len(segs)-1], append(c[:i:i], c[i+1:]...))
		}
	case OpInsert:
		c, ok := parent.([]interface{})
		if !ok {
			return nil, ErrInvalidPath
		}
		i, ok := index(last, len(c)+1)
		if !ok {
			return nil, ErrInvalidPath
		}
		out := make([]interface{}, 0, len(c)+1)
		out = append(out, c[:i]...)
		out = append(out, value)
		out = append(out, c[i:]...)
		return tree, replace(tree, segs[:len(segs)-1], out)
	case OpMove:
		c, ok := parent.([]interface{})
		if !ok {
			return nil, ErrInvalidPath
		}
		from, ok := index(last, len(c))
		if !ok || p.To < 0 || p.To >= len(c) {
			return nil, ErrInvalidPath
		}
		v := c[from]
		rest := append(c[:from:from], c[from+1:]...)
		out := make([]interface{}, 0, len(c))
		out = append(out, rest[:p.To]...)
		out = append(out, v)
		out = append(out, rest[p.To:]...)
		return tree, replace(tree, segs[:len(segs)-1], out)
	default:
		return nil, ErrInvalidOp
	}
	return nil, ErrInvalidPath
}

func walk(node interface{}, segs []string) (interface{}, error) {
	for _, seg := range segs {
		switch c := node.(type) {
		case map[string]interface{}:
			v, ok := c[seg]
			if !ok {
				return nil, ErrInvalidPath
			}
			node = v
		case []interface{}:
			i, ok := index(seg, len(c))
			if !ok {
				return nil, ErrInvalidPath
			}
			node = c[i]
		default:
			return nil, ErrInvalidPath
		}
	}
	return node, nil
}

func set(parent interface{}, key string, value interface{}) error {
	switch c := parent.(type) {
	case map[string]interface{}:
		c[key] = value
		return nil
	case []interface{}:
		i, ok := index(key, len(c))
		if !ok {
			return ErrInvalidPath
		}
		c[i] = value
		return nil
	}
	return ErrInvalidPath
}

// replace stores a rebuilt list at path. Lists are values in the decoded
// tree, so the slot in the containing object or list must be rewritten.
func replace(tree interface{}, path []string, list []interface{}) error {
	if len(path) == 0 {
		return ErrInvalidPath
	}
	holder, err := walk(tree, path[:len(path)-1])
	if err != nil {
		return err
	}
	return set(holder, path[len(path)-1], list)
}

func index(seg string, n int) (int, bool) {
	i, err := strconv.Atoi(seg)
	return i, err == nil && i >= 0 && i < n
}
