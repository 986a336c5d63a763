package hookconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadValidPlan(t *testing.T) {
	path := writeTemp(t, `
image: libtarget.so
pid: 1234
hooks:
  - symbol: malloc
    new_func: 0x7f0000001000
  - symbol: free
    new_func: 0x7f0000002000
`)

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Image != "libtarget.so" || p.PID != 1234 {
		t.Fatalf("unexpected plan header: %+v", p)
	}
	if len(p.Hooks) != 2 || p.Hooks[0].Symbol != "malloc" || p.Hooks[1].NewFunc != "0x7f0000002000" {
		t.Fatalf("unexpected hooks: %+v", p.Hooks)
	}
}

func TestLoadRejectsMissingImage(t *testing.T) {
	path := writeTemp(t, `
hooks:
  - symbol: malloc
    new_func: 0x7f0000001000
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for a plan with no image")
	}
}

func TestLoadRejectsEmptyHooks(t *testing.T) {
	path := writeTemp(t, `image: libtarget.so`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for a plan with no hooks")
	}
}

func TestLoadRejectsIncompleteHook(t *testing.T) {
	path := writeTemp(t, `
image: libtarget.so
hooks:
  - symbol: malloc
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for a hook missing new_func")
	}
}
