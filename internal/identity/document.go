package identity

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/risunCode/SurfManager/internal/errs"
)

// MutateDocument rewrites identity keys and deletes session keys at every
// nesting level of a JSON document. The file is rewritten only when at
// least one key was touched. Non-object documents and unparseable files are
// reported as ErrCorruption so batch callers can count and continue.
func (m *Mutator) MutateDocument(path, token string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read document: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Result{}, fmt.Errorf("%w: unparseable document %s: %v", errs.ErrCorruption, path, err)
	}

	obj, ok := doc.(map[string]interface{})
	if !ok {
		return Result{}, fmt.Errorf("%w: document root is not an object: %s", errs.ErrCorruption, path)
	}

	res := m.walkObject(obj, token)
	if res.Updated == 0 && res.Deleted == 0 {
		return res, nil
	}

	out, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal document: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return Result{}, fmt.Errorf("failed to write document: %w", err)
	}
	return res, nil
}

// walkObject applies the key sets to one object, then recurses into nested
// objects and arrays-of-objects.
func (m *Mutator) walkObject(obj map[string]interface{}, token string) Result {
	var res Result

	for key, value := range obj {
		if m.identityKeys[key] {
			if _, isString := value.(string); isString {
				obj[key] = token
				res.Updated++
				continue
			}
		}
		if m.sessionKeys[key] {
			delete(obj, key)
			res.Deleted++
			continue
		}

		switch v := value.(type) {
		case map[string]interface{}:
			nested := m.walkObject(v, token)
			res.Updated += nested.Updated
			res.Deleted += nested.Deleted
		case []interface{}:
			for _, item := range v {
				if child, ok := item.(map[string]interface{}); ok {
					nested := m.walkObject(child, token)
					res.Updated += nested.Updated
					res.Deleted += nested.Deleted
				}
			}
		}
	}

	return res
}
