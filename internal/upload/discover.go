package upload

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions are the image types the picker accepts
var DefaultExtensions = []string{".png", ".jpg", ".jpeg"}

// DiscoverOptions controls how directories are expanded
type DiscoverOptions struct {
	Extensions []string
	Recursive  bool
}

// DefaultDiscoverOptions returns options accepting PNG and JPEG without recursion
func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{Extensions: append([]string(nil), DefaultExtensions...)}
}

func (o DiscoverOptions) accepts(name string) bool {
	exts := o.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == normalizeExt(e) {
			_, known := mediaTypes[ext]
			return known
		}
	}
	return false
}

// Discover resolves paths into screenshot files. Explicit file arguments keep
// their order and must be accepted image types; directories contribute their
// accepted images newest first. Duplicates are dropped by absolute path.
// ErrNoImages is returned when paths were given but none resolved.
func Discover(paths []string, opts DiscoverOptions) ([]*File, error) {
	var (
		files []*File
		seen  = make(map[string]bool)
	)

	add := func(f *File) {
		if seen[f.Path] {
			return
		}
		seen[f.Path] = true
		files = append(files, f)
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", p, err)
		}

		if !info.IsDir() {
			if !opts.accepts(p) {
				return nil, fmt.Errorf("%w: %s (accepted: %s)", ErrUnsupportedType, p, strings.Join(opts.extensionList(), ", "))
			}
			f, err := FromPath(p)
			if err != nil {
				return nil, err
			}
			add(f)
			continue
		}

		found, err := scanDir(p, opts)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}

	if len(paths) > 0 && len(files) == 0 {
		return files, ErrNoImages
	}
	return files, nil
}

func scanDir(dir string, opts DiscoverOptions) ([]*File, error) {
	var found []*File

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && (!opts.Recursive || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || !opts.accepts(d.Name()) {
			return nil
		}
		f, err := FromPath(path)
		if err != nil {
			return err
		}
		found = append(found, f)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].ModTime.Equal(found[j].ModTime) {
			return found[i].Name < found[j].Name
		}
		return found[i].ModTime.After(found[j].ModTime)
	})
	return found, nil
}

func (o DiscoverOptions) extensionList() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions
	}
	out := make([]string, 0, len(o.Extensions))
	for _, e := range o.Extensions {
		out = append(out, normalizeExt(e))
	}
	return out
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
