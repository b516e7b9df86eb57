package plugin

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsPluginFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"youtube.so", true},
		{"youtube.SO", false},
		{"youtube.go", false},
		{"youtube", false},
	}
	for _, tt := range tests {
		if got := IsPluginFile(tt.name); got != tt.want {
			t.Errorf("IsPluginFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDirPathsUsesEnvOverride(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()
	t.Setenv(EnvPluginPath, dir1+string(os.PathListSeparator)+dir2)

	got := DirPaths()
	want := []string{dir1, dir2}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("DirPaths() = %v, want %v", got, want)
	}
}

func TestDirPathsFallsBackToXDGDataHome(t *testing.T) {
	t.Setenv(EnvPluginPath, "")
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data-home")

	got := DirPaths()
	want := filepath.Join("/tmp/xdg-data-home", "gtuber", "plugins")
	if len(got) != 1 || got[0] != want {
		t.Errorf("DirPaths() = %v, want [%s]", got, want)
	}
}

func TestListModulesFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zzz.so", "aaa.so", "readme.txt", "sub"} {
		if name == "sub" {
			if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := ListModules(dir)
	if err != nil {
		t.Fatalf("ListModules returned error: %v", err)
	}
	want := []string{"aaa.so", "zzz.so"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("ListModules(%q) = %v, want %v", dir, got, want)
	}
}

func TestListModulesMissingDirIsEmptyNotError(t *testing.T) {
	got, err := ListModules(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("expected no error for a missing directory, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no modules, got %v", got)
	}
}
