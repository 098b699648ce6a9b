package library

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type File struct {
	Path string
	Name string
}

type ScanOptions struct {
	// Extensions limits the scan to these suffixes (case-insensitive, with or
	// without the leading dot). Empty means every regular file.
	Extensions []string
}

// Scan walks root recursively and returns every regular file below it,
// ordered by path.
func Scan(ctx context.Context, root string, opts ScanOptions) ([]File, error) {
	root = filepath.Clean(strings.TrimSpace(root))
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("read library directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("library path %s is not a directory", root)
	}

	allowed := extensionSet(opts.Extensions)
	files := make([]File, 0, 256)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			// Links to directories are not followed or listed; dangling links
			// still count as files.
			if target, err := os.Stat(path); err == nil && target.IsDir() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}
		name := d.Name()
		if len(allowed) > 0 {
			if _, ok := allowed[strings.ToLower(filepath.Ext(name))]; !ok {
				return nil
			}
		}
		files = append(files, File{Path: path, Name: name})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk library directory %s: %w", root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func Names(files []File) []string {
	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, file.Name)
	}
	return names
}

func extensionSet(extensions []string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}
