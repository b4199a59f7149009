package extractor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kmullins/repodoc/internal/segmenter"
)

// DefaultMaxFileSize skips files larger than 1 MiB; anything bigger is
// almost never hand-written source worth documenting.
const DefaultMaxFileSize = 1 << 20

// defaultExtensions lists the source file types extracted when the caller
// does not narrow the set.
var defaultExtensions = map[string]bool{
	".go": true, ".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".py": true, ".rb": true, ".rs": true, ".java": true, ".kt": true,
	".c": true, ".h": true, ".cpp": true, ".hpp": true, ".cs": true,
	".php": true, ".swift": true, ".scala": true, ".sh": true,
	".sql": true, ".proto": true, ".yaml": true, ".yml": true,
	".toml": true, ".json": true, ".md": true,
}

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	"dist":         true,
	"build":        true,
	"target":       true,
}

// Options controls corpus extraction.
type Options struct {
	// IncludeTests keeps *_test.go and *.test.* files (default: false).
	IncludeTests bool

	// MaxFileSize skips files larger than this many bytes.
	// Zero means DefaultMaxFileSize.
	MaxFileSize int64

	// Extensions narrows extraction to the given file extensions
	// (with leading dot). Empty means the default source set.
	Extensions []string
}

// Corpus is the extracted text of a directory tree: every matched file's
// content preceded by a sentinel marker line, concatenated in path order.
type Corpus struct {
	RootPath   string
	Text       string
	FileCount  int
	TotalBytes int
}

// Extract walks root and builds a marked corpus of its source files.
// Hidden directories, dependency and build output directories, binary
// files and oversized files are skipped. Files are emitted in sorted path
// order so extraction is deterministic.
func Extract(root string, opts Options) (*Corpus, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	allowed := defaultExtensions
	if len(opts.Extensions) > 0 {
		allowed = make(map[string]bool, len(opts.Extensions))
		for _, ext := range opts.Extensions {
			allowed[strings.ToLower(ext)] = true
		}
	}

	var files []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			name := info.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		if !allowed[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if !opts.IncludeTests && isTestFile(info.Name()) {
			return nil
		}
		if info.Size() > maxSize {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Strings(files)

	var sb strings.Builder
	corpus := &Corpus{RootPath: root}
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if isBinary(content) {
			continue
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			relPath = path
		}

		sb.WriteString(fmt.Sprintf(segmenter.FileMarkerFormat, filepath.ToSlash(relPath)))
		sb.WriteByte('\n')
		sb.Write(content)
		if len(content) > 0 && content[len(content)-1] != '\n' {
			sb.WriteByte('\n')
		}

		corpus.FileCount++
		corpus.TotalBytes += len(content)
	}

	corpus.Text = sb.String()
	return corpus, nil
}

// isTestFile recognizes the common test-file naming conventions.
func isTestFile(name string) bool {
	return strings.HasSuffix(name, "_test.go") ||
		strings.Contains(name, ".test.") ||
		strings.Contains(name, ".spec.")
}

// isBinary treats any content with a NUL byte in its first kilobyte as
// binary and excludes it from the corpus.
func isBinary(content []byte) bool {
	probe := content
	if len(probe) > 1024 {
		probe = probe[:1024]
	}
	return bytes.IndexByte(probe, 0) >= 0
}
