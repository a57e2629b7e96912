package pathutil_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/erauner/Software-planning-mcp/internal/pathutil"
)

func Test_ResolveWithin_Cases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dir     string
		wantErr bool
	}{
		{name: "relative inside root", dir: ".planning", wantErr: false},
		{name: "nested relative", dir: "docs/planning", wantErr: false},
		{name: "dot", dir: ".", wantErr: false},
		{name: "empty", dir: "", wantErr: true},
		{name: "whitespace only", dir: "   ", wantErr: true},
		{name: "null byte", dir: "plan\x00ning", wantErr: true},
		{name: "parent traversal", dir: "../outside", wantErr: true},
		{name: "deep traversal", dir: "a/../../outside", wantErr: true},
		{name: "traversal back inside", dir: "a/../b", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			got, err := pathutil.ResolveWithin(root, tt.dir)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ResolveWithin(%q, %q) = %q, want error", root, tt.dir, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveWithin(%q, %q) error: %v", root, tt.dir, err)
			}
			if !filepath.IsAbs(got) {
				t.Errorf("resolved path %q is not absolute", got)
			}
		})
	}
}

func Test_ResolveWithin_AbsoluteInsideRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := filepath.Join(root, ".planning")
	got, err := pathutil.ResolveWithin(root, dir)
	if err != nil {
		t.Fatalf("ResolveWithin error: %v", err)
	}
	if filepath.Base(got) != ".planning" {
		t.Errorf("resolved path = %q, want last segment %q", got, ".planning")
	}
}

func Test_ResolveWithin_AbsoluteOutsideRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	outside := t.TempDir()
	if _, err := pathutil.ResolveWithin(root, outside); err == nil {
		t.Error("expected error for absolute path outside project root")
	}
}

func Test_ResolveWithin_NotYetCreated(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	got, err := pathutil.ResolveWithin(root, "does/not/exist/yet")
	if err != nil {
		t.Fatalf("ResolveWithin error: %v", err)
	}
	if filepath.Base(got) != "yet" {
		t.Errorf("resolved path = %q, want last segment %q", got, "yet")
	}
}

func Test_ResolveWithin_SymlinkEscape(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation not reliable on windows")
	}

	root := t.TempDir()
	outside := t.TempDir()
	link := filepath.Join(root, "escape")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	if _, err := pathutil.ResolveWithin(root, "escape"); err == nil {
		t.Error("expected error for symlink pointing outside project root")
	}
	if _, err := pathutil.ResolveWithin(root, "escape/sub"); err == nil {
		t.Error("expected error for path under escaping symlink")
	}
}

func Test_ResolveWithin_SymlinkInsideRoot(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation not reliable on windows")
	}

	root := t.TempDir()
	target := filepath.Join(root, "real")
	if err := os.Mkdir(target, 0o755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(root, "alias")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	got, err := pathutil.ResolveWithin(root, "alias")
	if err != nil {
		t.Fatalf("ResolveWithin error: %v", err)
	}
	if filepath.Base(got) != "real" {
		t.Errorf("resolved path = %q, want symlink target %q", got, target)
	}
}
