//go:build mage

// Package main contains Mage build targets for cheatsheet developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "cheatsheet"
	cmdPkg  = "./cmd/cheatsheet"

	sampleDir = "output/sample"
)

// sampleMarkdown exercises every construct the renderer styles.
const sampleMarkdown = `# Git Cheatsheet

## Everyday commands

| Command | Effect |
|---------|--------|
| ` + "`git status`" + ` | Show changed files |
| ` + "`git add -p`" + ` | Stage hunks interactively |
| ` + "`git commit --amend`" + ` | Rewrite the last commit |

## Branching

- Create and switch: ` + "`git switch -c topic`" + `
- Rebase onto main: ` + "`git rebase main`" + `
  - resolve conflicts, then ` + "`git rebase --continue`" + `
- ~~git checkout -b~~ still works

### Undo

1. Unstage a file
2. Discard local edits
3. Reset to a known commit

` + "```" + `
git restore --staged file.go
git restore file.go
git reset --hard HEAD~1
` + "```" + `

> **Tip:** *reflog* keeps every HEAD position for 90 days.
`

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Sample renders a sample cheatsheet to output/sample without calling the
// generative API.
func Sample() error {
	mg.Deps(Build)

	if err := os.MkdirAll(sampleDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", sampleDir, err)
	}
	src := filepath.Join(sampleDir, "cheatsheet.md")
	if err := os.WriteFile(src, []byte(sampleMarkdown), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", src, err)
	}
	bin := filepath.Join(binDir, binName)
	return sh.RunV(bin, "render", "--validate", "--out-dir", sampleDir, src)
}

// Clean removes build and sample output.
func Clean() error {
	for _, dir := range []string{binDir, sampleDir} {
		if err := sh.Rm(dir); err != nil {
			return err
		}
	}
	return nil
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	prodLines, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	testLines, err := countGoLines(".", true)
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (documentation):           %d\n", docWords)
	return nil
}

// skipDir reports directories that are not part of the project's own sources.
func skipDir(path string, info os.FileInfo) bool {
	if !info.IsDir() || path == "." {
		return false
	}
	name := info.Name()
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == binDir || name == "output"
}

// countGoLines walks the directory tree and counts non-blank lines in Go files.
// If testOnly is true, count only _test.go files; otherwise count non-test .go files.
func countGoLines(root string, testOnly bool) (int, error) {
	total := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if skipDir(path, info) {
			return filepath.SkipDir
		}
		if info.IsDir() || filepath.Ext(path) != ".go" {
			return nil
		}
		if testOnly != strings.HasSuffix(path, "_test.go") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				total++
			}
		}
		return nil
	})
	return total, err
}

// countDocWords counts words in the Markdown and YAML files of the project.
func countDocWords(root string) (int, error) {
	total := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if skipDir(path, info) {
			return filepath.SkipDir
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".md" && ext != ".yaml" && ext != ".yml" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(strings.Fields(string(data)))
		return nil
	})
	return total, err
}
