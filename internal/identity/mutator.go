// Package identity rewrites or deletes identity/session fields inside
// structured documents and embedded record stores.
package identity

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Result holds the per-artifact outcome of a mutation pass.
type Result struct {
	Updated int
	Deleted int
}

// Summary aggregates a batch pass across many artifacts. Failures never
// abort the batch; they are counted here instead.
type Summary struct {
	Token     string
	Processed int
	Updated   int
	Deleted   int
	Failed    int
}

// Mutator walks structured artifacts, replacing values under identity keys
// and deleting session keys. Every identity key touched within one
// invocation receives the same freshly generated token.
type Mutator struct {
	identityKeys map[string]bool
	sessionKeys  map[string]bool
}

// New creates a Mutator for the configured key sets.
func New(identityKeys, sessionKeys []string) *Mutator {
	m := &Mutator{
		identityKeys: make(map[string]bool, len(identityKeys)),
		sessionKeys:  make(map[string]bool, len(sessionKeys)),
	}
	for _, k := range identityKeys {
		m.identityKeys[k] = true
	}
	for _, k := range sessionKeys {
		m.sessionKeys[k] = true
	}
	return m
}

// NewToken generates the replacement value for one mutation pass.
func NewToken() string {
	return uuid.NewString()
}

// storeExtensions are the embedded record-store forms the mutator handles.
var storeExtensions = map[string]bool{
	".vscdb":   true,
	".db":      true,
	".sqlite":  true,
	".sqlite3": true,
}

// MutateTree runs one mutation pass over every structured artifact found
// under root: .json documents and embedded sqlite stores. Malformed
// artifacts increment the failure counter and the batch continues.
func (m *Mutator) MutateTree(root string) *Summary {
	summary := &Summary{Token: NewToken()}

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(d.Name()))
		var res Result
		var mErr error
		switch {
		case ext == ".json":
			res, mErr = m.MutateDocument(path, summary.Token)
		case storeExtensions[ext]:
			res, mErr = m.MutateStore(path, summary.Token)
		default:
			return nil
		}

		summary.Processed++
		if mErr != nil {
			summary.Failed++
			return nil
		}
		summary.Updated += res.Updated
		summary.Deleted += res.Deleted
		return nil
	})

	return summary
}
