package ast_test

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/arkscript-lang/arkscript/internal/filetest"
	"github.com/arkscript-lang/arkscript/lang/ast"
	"github.com/arkscript-lang/arkscript/lang/parser"
)

var update = flag.Bool("test.update-ast-tests", false, "update the ast golden files in testdata")

// TestPrinterGolden parses each testdata/*.ark file and checks its
// ast.Printer rendering against the matching golden testdata/*.ark.want
// file, following the teacher's internal/filetest convention (SourceFiles +
// DiffOutput) rather than inline want strings.
func TestPrinterGolden(t *testing.T) {
	const dir = "testdata"
	for _, fi := range filetest.SourceFiles(t, dir, ".ark") {
		fi := fi
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(dir, fi.Name()))
			if err != nil {
				t.Fatal(err)
			}
			root, _, err := parser.ParseFile(fi.Name(), src)
			if err != nil {
				t.Fatal(err)
			}

			var buf bytes.Buffer
			printer := ast.Printer{Output: &buf}
			if err := printer.Print(root); err != nil {
				t.Fatal(err)
			}

			filetest.DiffOutput(t, fi, buf.String(), dir, update)
		})
	}
}
