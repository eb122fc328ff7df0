// Package undo records destructive operations as reversible actions, each
// backed by its own snapshot in a ledger-owned directory tree.
package undo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/risunCode/SurfManager/internal/errs"
)

// Action types recorded in the ledger.
const (
	ActionDelete = "delete"
	ActionReset  = "reset"
	ActionModify = "modify"
)

// indexName is the persisted index enumerating both stacks; rewritten after
// every mutation so the ledger survives a crash.
const indexName = "undo_history.json"

// Action is one reversible destructive operation.
type Action struct {
	Type         string            `json:"action_type"`
	Timestamp    string            `json:"timestamp"`
	AppName      string            `json:"app_name"`
	BackupPath   string            `json:"backup_path"`
	OriginalPath string            `json:"original_path"`
	Description  string            `json:"description"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Ledger is a bounded undo/redo stack over filesystem snapshots. The ledger
// exclusively owns its backup directory, separate from user-initiated
// backups.
type Ledger struct {
	root     string
	maxDepth int

	mu        sync.Mutex
	undoStack []*Action
	redoStack []*Action
}

// New creates a Ledger rooted at root, loading any persisted history.
func New(root string, maxDepth int) (*Ledger, error) {
	if maxDepth <= 0 {
		maxDepth = 10
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create undo directory: %w", err)
	}
	l := &Ledger{root: root, maxDepth: maxDepth}
	l.loadIndex()
	return l, nil
}

// CreateBackupBeforeAction snapshots originalPath into the ledger's own
// directory and returns the action describing it. A missing original path
// yields (nil, nil): nothing to back up, nothing to undo.
func (l *Ledger) CreateBackupBeforeAction(actionType, appName, originalPath, description string, metadata map[string]string) (*Action, error) {
	info, err := os.Stat(originalPath)
	if err != nil {
		return nil, nil
	}

	timestamp := time.Now().Format("20060102_150405")
	backupPath := filepath.Join(l.root, fmt.Sprintf("%s_%s_%s", appName, actionType, timestamp))

	if info.IsDir() {
		if err := copyDir(originalPath, backupPath); err != nil {
			return nil, fmt.Errorf("failed to create undo backup: %w", err)
		}
	} else {
		if err := copyFile(originalPath, backupPath); err != nil {
			return nil, fmt.Errorf("failed to create undo backup: %w", err)
		}
	}

	return &Action{
		Type:         actionType,
		Timestamp:    timestamp,
		AppName:      appName,
		BackupPath:   backupPath,
		OriginalPath: originalPath,
		Description:  description,
		Metadata:     metadata,
	}, nil
}

// Push appends an action to the undo stack. New actions invalidate forward
// history, so the redo stack is cleared and its backups deleted. When the
// stack exceeds the maximum depth the oldest action is evicted and its
// backup removed. The index is persisted before returning.
func (l *Ledger) Push(action *Action) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.undoStack = append(l.undoStack, action)

	for _, stale := range l.redoStack {
		removeBackup(stale.BackupPath)
	}
	l.redoStack = nil

	if len(l.undoStack) > l.maxDepth {
		oldest := l.undoStack[0]
		l.undoStack = l.undoStack[1:]
		removeBackup(oldest.BackupPath)
	}

	return l.saveIndex()
}

// Undo reverses the most recent action: current state at the original path
// is replaced by the backup contents and the action moves to the redo
// stack. On failure the action is restored to the undo stack unchanged, so
// the operation is retryable.
func (l *Ledger) Undo() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.undoStack) == 0 {
		return "", fmt.Errorf("%w: no actions to undo", errs.ErrNotFound)
	}

	action := l.undoStack[len(l.undoStack)-1]
	l.undoStack = l.undoStack[:len(l.undoStack)-1]

	if err := restorePath(action.BackupPath, action.OriginalPath); err != nil {
		l.undoStack = append(l.undoStack, action)
		return "", fmt.Errorf("undo failed: %w", err)
	}

	l.redoStack = append(l.redoStack, action)
	if err := l.saveIndex(); err != nil {
		return "", err
	}
	return fmt.Sprintf("undone: %s", action.Description), nil
}

// Redo re-applies the original destructive effect (removal of the current
// state at the original path) and moves the action back to the undo stack.
func (l *Ledger) Redo() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.redoStack) == 0 {
		return "", fmt.Errorf("%w: no actions to redo", errs.ErrNotFound)
	}

	action := l.redoStack[len(l.redoStack)-1]
	l.redoStack = l.redoStack[:len(l.redoStack)-1]

	if err := os.RemoveAll(action.OriginalPath); err != nil {
		l.redoStack = append(l.redoStack, action)
		return "", fmt.Errorf("redo failed: %w", err)
	}

	l.undoStack = append(l.undoStack, action)
	if err := l.saveIndex(); err != nil {
		return "", err
	}
	return fmt.Sprintf("redone: %s", action.Description), nil
}

// Clear deletes every backup owned by both stacks and empties them.
func (l *Ledger) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, action := range l.undoStack {
		removeBackup(action.BackupPath)
	}
	for _, action := range l.redoStack {
		removeBackup(action.BackupPath)
	}
	l.undoStack = nil
	l.redoStack = nil
	return l.saveIndex()
}

// CanUndo reports whether the undo stack is non-empty.
func (l *Ledger) CanUndo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.undoStack) > 0
}

// CanRedo reports whether the redo stack is non-empty.
func (l *Ledger) CanRedo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.redoStack) > 0
}

// PeekUndo returns the description of the action Undo would reverse.
func (l *Ledger) PeekUndo() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.undoStack) == 0 {
		return "", false
	}
	return l.undoStack[len(l.undoStack)-1].Description, true
}

// PeekRedo returns the description of the action Redo would re-apply.
func (l *Ledger) PeekRedo() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.redoStack) == 0 {
		return "", false
	}
	return l.redoStack[len(l.redoStack)-1].Description, true
}

// History returns copies of both stacks, oldest first.
func (l *Ledger) History() (undoActions, redoActions []Action) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, a := range l.undoStack {
		undoActions = append(undoActions, *a)
	}
	for _, a := range l.redoStack {
		redoActions = append(redoActions, *a)
	}
	return undoActions, redoActions
}

// HistorySize returns the total on-disk size of all ledger backups.
func (l *Ledger) HistorySize() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	var total int64
	for _, action := range append(append([]*Action(nil), l.undoStack...), l.redoStack...) {
		total += pathSize(action.BackupPath)
	}
	return total
}

type indexFile struct {
	Undo []*Action `json:"undo"`
	Redo []*Action `json:"redo"`
}

// loadIndex reads the persisted stacks; a missing or unparseable index
// starts the ledger empty.
func (l *Ledger) loadIndex() {
	data, err := os.ReadFile(filepath.Join(l.root, indexName))
	if err != nil {
		return
	}
	var idx indexFile
	if err := json.Unmarshal(data, &idx); err != nil {
		return
	}
	l.undoStack = idx.Undo
	l.redoStack = idx.Redo
}

// saveIndex must be called with the lock held.
func (l *Ledger) saveIndex() error {
	idx := indexFile{Undo: l.undoStack, Redo: l.redoStack}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal undo index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(l.root, indexName), data, 0644); err != nil {
		return fmt.Errorf("failed to persist undo index: %w", err)
	}
	return nil
}
