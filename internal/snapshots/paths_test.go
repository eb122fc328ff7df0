package snapshots

import (
	"strings"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"absolute unix", "/home/user/.config/app", false},
		{"windows drive colon", `C:\Users\user\AppData`, false},
		{"relative", "data/app", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"traversal", "../../etc/passwd", true},
		{"embedded traversal", `data\..\..\secret`, true},
		{"invalid chars", `data/<bad>`, true},
		{"over-long", "/" + strings.Repeat("a", 300), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain_backup", "plain_backup"},
		{`cursor:2024/01*`, "cursor_2024_01_"},
		{"  padded  ", "padded"},
		{"", "unnamed"},
		{"***", "___"},
	}

	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestShouldSkip(t *testing.T) {
	skip := []string{"node_modules", "__pycache__", ".git", ".venv", "venv", "Temp", "debug.log", "x.tmp", "chunk.cache"}
	keep := []string{"settings.json", "state.vscdb", "templates", "catalog"}

	for _, name := range skip {
		if !shouldSkip(name) {
			t.Errorf("shouldSkip(%q) = false, want true", name)
		}
	}
	for _, name := range keep {
		if shouldSkip(name) {
			t.Errorf("shouldSkip(%q) = true, want false", name)
		}
	}
}
