// Package latex renders LaTeX snippets to PNG by running latex and dvipng.
package latex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mattn/go-shellwords"
	"go.uber.org/zap"

	"github.com/Faultbox/threed/internal/logger"
)

// LaTeX errors.
var (
	ErrEmptyCommand = errors.New("empty command")
	ErrRender       = errors.New("latex rendering failed")
)

// Default command lines.
const (
	DefaultLatexCommand  = "latex -interaction=nonstopmode -halt-on-error"
	DefaultDvipngCommand = "dvipng -T tight -D 600 -bg Transparent"
)

// Renderer runs the TeX toolchain. Command lines are split like a shell
// would split them; the renderer appends its own file arguments.
type Renderer struct {
	LatexCommand  string
	DvipngCommand string
	// Packages are loaded in every document, before per-call packages.
	Packages []string
}

// NewRenderer returns a renderer using the default command lines.
func NewRenderer() *Renderer {
	return &Renderer{
		LatexCommand:  DefaultLatexCommand,
		DvipngCommand: DefaultDvipngCommand,
	}
}

// Document wraps tex in a minimal standalone document that loads packages.
func Document(tex string, packages []string) string {
	var b strings.Builder
	b.WriteString("\\documentclass{article}\n")
	seen := make(map[string]bool)
	for _, p := range packages {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		fmt.Fprintf(&b, "\\usepackage{%s}\n", p)
	}
	b.WriteString("\\pagestyle{empty}\n\\begin{document}\n")
	b.WriteString(tex)
	b.WriteString("\n\\end{document}\n")
	return b.String()
}

// Command splits a command line into program and arguments.
func Command(line string, extra ...string) ([]string, error) {
	args, err := shellwords.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", line, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyCommand, line)
	}
	return append(args, extra...), nil
}

// Render typesets tex and writes the resulting PNG to dst.
func (r *Renderer) Render(ctx context.Context, tex, dst string, packages []string) error {
	work, err := os.MkdirTemp("", "threed-latex-")
	if err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(work)

	all := append(append([]string(nil), r.Packages...), packages...)
	texPath := filepath.Join(work, "label.tex")
	if err := os.WriteFile(texPath, []byte(Document(tex, all)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", texPath, err)
	}

	latexArgs, err := Command(r.LatexCommand, "label.tex")
	if err != nil {
		return err
	}
	if err := run(ctx, work, latexArgs); err != nil {
		return err
	}

	absDst, err := filepath.Abs(dst)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", dst, err)
	}
	dviArgs, err := Command(r.DvipngCommand, "-o", absDst, "label.dvi")
	if err != nil {
		return err
	}
	if err := run(ctx, work, dviArgs); err != nil {
		return err
	}

	logger.Debug("latex rendered", zap.String("tex", tex), zap.String("png", dst))
	return nil
}

func run(ctx context.Context, dir string, args []string) error {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s: %v\n%s", ErrRender, args[0], err, tail(out.String(), 20))
	}
	return nil
}

// tail returns the last n lines of s.
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
