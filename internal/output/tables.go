// # internal/output/tables.go
package output

import (
	"fmt"
	"path/filepath"
	"strings"

	"dydcheck/internal/engine/parser"
	"dydcheck/internal/engine/symtab"

	"github.com/spf13/afero"
)

// Extensions names the three artifact files.
type Extensions struct {
	Procedures  string
	Variables   string
	Diagnostics string
}

var DefaultExtensions = Extensions{
	Procedures:  ".pro",
	Variables:   ".var",
	Diagnostics: ".err",
}

// Artifacts holds the paths written for one input.
type Artifacts struct {
	Procedures  string
	Variables   string
	Diagnostics string
}

// ArtifactPaths derives output paths from the input path: same base name,
// extension swapped, placed in dir (or next to the input when dir is empty).
func ArtifactPaths(input, dir string, exts Extensions) Artifacts {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if strings.TrimSpace(dir) == "" {
		dir = filepath.Dir(input)
	}
	return Artifacts{
		Procedures:  filepath.Join(dir, base+exts.Procedures),
		Variables:   filepath.Join(dir, base+exts.Variables),
		Diagnostics: filepath.Join(dir, base+exts.Diagnostics),
	}
}

// FormatProcedures renders `name type level first last`, one row per line.
func FormatProcedures(rows []symtab.Procedure) string {
	var buf strings.Builder
	for _, p := range rows {
		buf.WriteString(fmt.Sprintf("%s %s %d %d %d\n",
			p.Name, p.Type, p.Level, p.FirstAddress, p.LastAddress))
	}
	return buf.String()
}

// FormatVariables renders `name owner kind type level address`; kind is 0
// for a variable and 1 for a parameter.
func FormatVariables(rows []symtab.Variable) string {
	var buf strings.Builder
	for _, v := range rows {
		buf.WriteString(fmt.Sprintf("%s %s %d %s %d %d\n",
			v.Name, v.Owner, int(v.Kind), v.Type, v.Level, v.Address))
	}
	return buf.String()
}

func FormatDiagnostics(rows []parser.Diagnostic) string {
	var buf strings.Builder
	for _, d := range rows {
		buf.WriteString(d.String())
		buf.WriteByte('\n')
	}
	return buf.String()
}

type Writer struct {
	fs   afero.Fs
	dir  string
	exts Extensions
}

func NewWriter(fs afero.Fs, dir string, exts Extensions) *Writer {
	if exts == (Extensions{}) {
		exts = DefaultExtensions
	}
	return &Writer{fs: fs, dir: dir, exts: exts}
}

// Write stores all three artifacts for input. The diagnostics file is always
// written, empty on a clean run.
func (w *Writer) Write(input string, res *parser.Result) (Artifacts, error) {
	paths := ArtifactPaths(input, w.dir, w.exts)
	if dir := filepath.Dir(paths.Procedures); dir != "" && dir != "." {
		if err := w.fs.MkdirAll(dir, 0o755); err != nil {
			return Artifacts{}, fmt.Errorf("create output directory %q: %w", dir, err)
		}
	}

	files := []struct {
		path string
		body string
	}{
		{paths.Procedures, FormatProcedures(res.Procedures)},
		{paths.Variables, FormatVariables(res.Variables)},
		{paths.Diagnostics, FormatDiagnostics(res.Diagnostics)},
	}
	for _, f := range files {
		if err := afero.WriteFile(w.fs, f.path, []byte(f.body), 0o644); err != nil {
			return Artifacts{}, fmt.Errorf("write %s: %w", f.path, err)
		}
	}
	return paths, nil
}
