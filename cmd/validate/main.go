package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/novel-script/internal/storage"
	"github.com/jwebster45206/novel-script/pkg/script"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <script.txt> [script.txt...]\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		validator := &ScriptValidator{}
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		for _, w := range validator.warnings {
			fmt.Printf("  warning: %s\n", w)
		}
		fmt.Printf("%s is valid (%d subscenes, %d pages)\n", filename, validator.subscenes, validator.pages)
	}

	if failed {
		os.Exit(1)
	}
}

type ScriptValidator struct {
	warnings  []string
	subscenes int
	pages     int
}

func (v *ScriptValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".txt") {
		return fmt.Errorf("script file must have .txt extension: %s", baseName)
	}
	if name := strings.TrimSuffix(baseName, ".txt"); !storage.ValidName(name) {
		return fmt.Errorf("script name '%s' may only use letters, digits, '-' and '_'", name)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	s, err := script.Parse(string(data))
	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}

	v.subscenes = len(s.Labels())
	v.pages = s.PageCount()
	v.warnings = nil
	for _, w := range script.Lint(s) {
		v.warnings = append(v.warnings, w.String())
	}
	return nil
}
