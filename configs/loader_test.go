package configs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFiles(t *testing.T, contents ...string) (paths []string) {
	dir := t.TempDir()
	for i, content := range contents {
		path := filepath.Join(dir, string(rune('a'+i))+".cue")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}
	return
}

func TestLoaderAssignFirst(t *testing.T) {
	loader := NewLoader(writeFiles(t, `
log_dir: "/tmp/logs"
target: {
	func: "Chat"
	position: 1
}
`), Schema)

	var dir string
	if err := loader.AssignFirst("log_dir", &dir); err != nil {
		t.Fatal(err)
	}
	if dir != "/tmp/logs" {
		t.Fatalf("got %q", dir)
	}

	var target struct {
		Func     string `json:"func"`
		Position int    `json:"position"`
	}
	if err := loader.AssignFirst("target", &target); err != nil {
		t.Fatal(err)
	}
	if target.Func != "Chat" || target.Position != 1 {
		t.Fatalf("got %+v", target)
	}

	err := loader.AssignFirst("index_path", &dir)
	if !errors.Is(err, ErrValueNotFound) {
		t.Fatalf("got %v", err)
	}
}

func TestLoaderPrecedence(t *testing.T) {
	loader := NewLoader(writeFiles(t,
		`log_dir: "first"`,
		`log_dir: "second"`,
	), Schema)

	var dirs []string
	for dir, err := range All[string](loader, "log_dir") {
		if err != nil {
			t.Fatal(err)
		}
		dirs = append(dirs, dir)
	}
	if diff := cmp.Diff([]string{"first", "second"}, dirs); diff != "" {
		t.Fatal(diff)
	}

	dir, err := First[string](loader, "log_dir")
	if err != nil {
		t.Fatal(err)
	}
	if dir != "first" {
		t.Fatalf("got %v", dir)
	}

	paths, err := loader.Paths()
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("got %v", paths)
	}
}

func TestUnknownField(t *testing.T) {
	loader := NewLoader(writeFiles(t, `unknown_field: "x"`), Schema)
	var str string
	err := loader.AssignFirst("unknown_field", &str)
	if err == nil {
		t.Fatal("should error")
	}
}

func TestMissingFile(t *testing.T) {
	loader := NewLoader([]string{filepath.Join(t.TempDir(), "none.cue")}, Schema)
	if _, err := First[string](loader, "log_dir"); err == nil {
		t.Fatal("should error")
	}
}
