package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Harry-Lees/Wellick/src/util"
)

// -----------------------------
// ----- Type definitions ------
// -----------------------------

// pipelineTest defines one source program driven through the whole compiler
// with pre-defined options.
type pipelineTest struct {
	name string // Informative name of the test program.
	src  string // The Wellick source as a string.
	want string // Substring of the expected diagnostic; empty if the program must compile.
}

// ----------------------
// ----- Functions ------
// ----------------------

// helperWriteSource stores src in a temporary file and returns its path.
func helperWriteSource(t *testing.T, dir, src string) string {
	t.Helper()
	path := filepath.Join(dir, "main.wk")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("I/O error, could not write source file: %s", err)
	}
	return path
}

// TestPipeline drives source programs through read, parse, translate and
// object emission.
func TestPipeline(t *testing.T) {
	tests := []pipelineTest{
		{
			name: "return zero",
			src:  `fn main() -> i32 { return 0; }`,
		},
		{
			name: "user call",
			src: `
				fn add(x: i32, y: i32) -> i32 { return iadd(x, y); }
				fn main() -> i32 { return add(2, 3); }
			`,
		},
		{
			name: "immutable reassignment is fatal",
			src:  `fn main() -> i32 { let x: i32 = 7; x = 9; return x; }`,
			want: "cannot mutate immutable variable x",
		},
		{
			name: "pointer mutability mismatch is fatal",
			src:  `fn main() -> i32 { let x: i32 = 3; let p: *mut i32 = &x; return 0; }`,
			want: "&mut",
		},
	}

	for _, e1 := range tests {
		t.Run(e1.name, func(t *testing.T) {
			dir := t.TempDir()
			opt := util.Options{
				Src: helperWriteSource(t, dir, e1.src),
				Out: filepath.Join(dir, "a.out"),
			}

			err := run(opt)
			if len(e1.want) > 0 {
				if err == nil {
					t.Fatalf("expected compile to fail")
				}
				if !strings.Contains(err.Error(), e1.want) {
					t.Errorf("expected error containing %q, got %q", e1.want, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("compiler error: %s", err)
			}
			fi, err := os.Stat(opt.Out)
			if err != nil {
				t.Fatalf("object file not written: %s", err)
			}
			if fi.Size() == 0 {
				t.Error("object file is empty")
			}
		})
	}
}
