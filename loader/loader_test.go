package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/WillemNicolas/vulkyn/vm"
	"github.com/WillemNicolas/vulkyn/word"
)

func TestLoadSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.vsm")
	if err := os.WriteFile(path, []byte("push 2 push 3 add exit"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	prog, err := LoadSource(path)
	if err != nil {
		t.Fatalf("LoadSource failed: %v", err)
	}
	if len(prog.Instructions) != 4 {
		t.Errorf("instruction count = %d, want 4", len(prog.Instructions))
	}
}

func TestSaveAndLoadImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.vimg")

	prog := &vm.Program{Instructions: []vm.Instruction{
		{Op: vm.OpPush, Either1: vm.Either{Word: word.U64(1)}},
		{Op: vm.OpExit},
	}}

	if err := SaveImage(path, prog); err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}

	got, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if len(got.Instructions) != len(prog.Instructions) {
		t.Fatalf("instruction count = %d, want %d", len(got.Instructions), len(prog.Instructions))
	}
}

func TestLoadSourceMissingFile(t *testing.T) {
	if _, err := LoadSource("/nonexistent/path.vsm"); err == nil {
		t.Error("expected an error loading a nonexistent file")
	}
}
