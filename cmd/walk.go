package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/lumenscan/lumenscan/lang"
)

// defaultExcludeDirs mirrors the directories a scan never descends into.
// Callers can add names to this set but cannot remove these.
var defaultExcludeDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	".hg":          true,
	".svn":         true,
}

// walkFiles collects every regular file under directory, skipping excluded
// directory names at any depth, and returns their paths. Files lumenscan
// does not recognize by extension are still returned (resolveInfo gives them
// a fallback Info named "unknown"), since universal rules may still apply to
// their contents.
func walkFiles(directory string, excludeDirs []string) ([]string, error) {
	skip := make(map[string]bool, len(defaultExcludeDirs)+len(excludeDirs))
	for name := range defaultExcludeDirs {
		skip[name] = true
	}
	for _, name := range excludeDirs {
		skip[name] = true
	}

	var files []string
	err := filepath.Walk(directory, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != directory && skip[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// resolveInfo returns the lang.Info for path, falling back to a generic
// "unknown" language when the extension/filename isn't registered.
func resolveInfo(path string) lang.Info {
	if info, ok := lang.FromFileName(path); ok {
		return info
	}
	return lang.Info{Name: "unknown"}
}

// looksBinary reports whether the first chunk of content contains a NUL
// byte, the same heuristic git and most text tools use to skip binaries.
func looksBinary(content []byte) bool {
	limit := len(content)
	if limit > 8000 {
		limit = 8000
	}
	for _, b := range content[:limit] {
		if b == 0 {
			return true
		}
	}
	return false
}

func isTest(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	return strings.Contains(base, "_test.") || strings.HasPrefix(base, "test_")
}
