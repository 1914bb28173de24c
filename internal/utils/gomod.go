package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// ModuleInfo describes the module enclosing a directory
type ModuleInfo struct {
	Root string // directory holding go.mod
	Path string // module path declared in go.mod
}

// ParseModuleName extracts the module name from a go.mod file
func ParseModuleName(goModPath string) (string, error) {
	cleanPath := filepath.Clean(goModPath)
	if filepath.Base(cleanPath) != "go.mod" {
		return "", fmt.Errorf("file is not a go.mod file: %s", goModPath)
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod file: %w", err)
	}

	// ParseLax skips replace/retract validation; only the module line is needed
	modFile, err := modfile.ParseLax(cleanPath, content, nil)
	if err != nil {
		return "", fmt.Errorf("failed to parse go.mod file: %w", err)
	}

	if modFile.Module == nil {
		return "", fmt.Errorf("no module declaration found in go.mod")
	}

	return modFile.Module.Mod.Path, nil
}

// FindGoModFile searches for go.mod file starting from the given directory and walking up
func FindGoModFile(startDir string) (string, error) {
	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		goModPath := filepath.Join(currentDir, "go.mod")
		if info, err := os.Stat(goModPath); err == nil && !info.IsDir() {
			return goModPath, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", fmt.Errorf("go.mod file not found above %s", startDir)
}

// FindModule locates the module enclosing startDir
func FindModule(startDir string) (ModuleInfo, error) {
	goModPath, err := FindGoModFile(startDir)
	if err != nil {
		return ModuleInfo{}, err
	}
	path, err := ParseModuleName(goModPath)
	if err != nil {
		return ModuleInfo{}, err
	}
	return ModuleInfo{Root: filepath.Dir(goModPath), Path: path}, nil
}

// Contains reports whether the import path belongs to this module
func (m ModuleInfo) Contains(importPath string) bool {
	if m.Path == "" {
		return false
	}
	return importPath == m.Path || strings.HasPrefix(importPath, m.Path+"/")
}
