package main

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// layerRule lists what a layer of a context service may import besides the
// standard library. Third-party imports are only checked when thirdParty is false.
type layerRule struct {
	allowed    []string
	thirdParty bool
}

var layerRules = map[string]layerRule{
	"domain":      {allowed: []string{"/domain"}},
	"ports":       {allowed: []string{"/domain"}},
	"application": {allowed: []string{"/application", "/domain", "/ports"}},
	"transport":   {allowed: []string{"/domain"}, thirdParty: true},
}

func main() {
	modulePath, err := readModulePath("go.mod")
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	violations := collectViolations(modulePath, "contexts")
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].File == violations[j].File {
			return violations[i].Line < violations[j].Line
		}
		return violations[i].File < violations[j].File
	})

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

func readModulePath(goMod string) (string, error) {
	file, err := os.Open(goMod)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", goMod, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(scanner.Text()), "module "); ok {
			return strings.TrimSpace(rest), nil
		}
	}
	return "", fmt.Errorf("no module directive in %s", goMod)
}

func collectViolations(modulePath string, root string) []violation {
	var violations []violation

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		parts := strings.Split(filepath.ToSlash(path), "/")
		if len(parts) < 4 || parts[0] != "contexts" {
			return nil
		}
		servicePrefix := fmt.Sprintf("%s/contexts/%s/%s", modulePath, parts[1], parts[2])
		violations = append(violations, validateFile(modulePath, path, parts[3], servicePrefix)...)
		return nil
	})

	return violations
}

func validateFile(modulePath string, path string, layer string, servicePrefix string) []violation {
	normalized := filepath.ToSlash(path)
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return []violation{{File: normalized, Line: 1, Rule: "file must parse"}}
	}

	var violations []violation
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, "\"")
		line := fset.Position(imp.Pos()).Line
		report := func(rule string) {
			violations = append(violations, violation{File: normalized, Line: line, Import: importPath, Rule: rule})
		}

		local := hasPrefix(importPath, modulePath)
		if local && strings.HasPrefix(importPath, modulePath+"/contexts/") && !hasPrefix(importPath, servicePrefix) {
			report("cross-module imports are forbidden")
		}

		rule, ok := layerRules[layer]
		if !ok || isStdlib(importPath, modulePath) {
			continue
		}
		if strings.Contains(importPath, "/adapters/") {
			report(layer + " must not import adapters")
			continue
		}
		if local && strings.HasPrefix(importPath, modulePath+"/internal/") {
			report(layer + " must not import runtime infrastructure")
			continue
		}
		if !local && rule.thirdParty {
			continue
		}
		if !isAllowed(importPath, servicePrefix, rule.allowed) {
			report(layer + " import is outside explicit allowlist")
		}
	}
	return violations
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isAllowed(importPath string, servicePrefix string, allowedLayers []string) bool {
	for _, layer := range allowedLayers {
		if hasPrefix(importPath, servicePrefix+layer) {
			return true
		}
	}
	return false
}

func isStdlib(importPath string, modulePath string) bool {
	if hasPrefix(importPath, modulePath) {
		return false
	}
	first := importPath
	if idx := strings.Index(first, "/"); idx != -1 {
		first = first[:idx]
	}
	return !strings.Contains(first, ".")
}
