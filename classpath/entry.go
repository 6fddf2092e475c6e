// Package classpath resolves class names to raw .class bytes across the
// bootstrap, extension, and application classpath partitions (spec.md §4.3).
// Grounded on original_source/src/classpath/mod.rs's Classpath/ClassEntry
// split and jacobin's classloader.go Archive/NewJarFile/GetMainClassFromJar
// for the jar-handling half.
package classpath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/edsrzf/mmap-go"
)

// Entry is one classpath element: either a directory of loose .class files
// or a jar/jmod archive. Mirrors original_source's ClassEntry::Dir/::Jar
// split, generalized to an interface so directory and archive lookup share
// the same FindClass contract.
type Entry interface {
	// FindClass looks up classFile (e.g. "java/lang/String.class") and
	// returns its raw bytes, or ok=false if not present in this entry.
	FindClass(classFile string) (data []byte, ok bool, err error)
	String() string
}

// DirEntry is a directory-backed classpath entry: loose .class files laid
// out under dir following their package path.
type DirEntry struct {
	Dir string
}

func (d DirEntry) String() string { return d.Dir }

func (d DirEntry) FindClass(classFile string) ([]byte, bool, error) {
	path := filepath.Join(d.Dir, filepath.FromSlash(classFile))
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if info.IsDir() {
		return nil, false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	if info.Size() == 0 {
		return []byte{}, true, nil
	}

	// Memory-map the class file rather than read it whole, matching the
	// mmap-backed reads saferwall-pe uses for its binary-format parsing.
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, false, fmt.Errorf("mmap %s: %w", path, err)
	}
	defer m.Unmap()

	data := make([]byte, len(m))
	copy(data, m)
	return data, true, nil
}

// isDir reports whether path names an existing directory.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// hasArchiveExt reports whether path looks like a jar or jmod archive by
// extension, matching append_classpath's extension check in
// original_source/src/classpath/mod.rs (there limited to ".jar"; jmod is a
// JVM-specific addition this core also supports, e.g. java.base.jmod).
func hasArchiveExt(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".jar" || ext == ".jmod"
}

// NewEntry classifies path as a directory or archive entry. Returns an error
// if path is neither (doesn't exist, or has an unsupported extension).
func NewEntry(path string) (Entry, error) {
	if isDir(path) {
		return DirEntry{Dir: path}, nil
	}
	if hasArchiveExt(path) {
		return NewArchiveEntry(path)
	}
	return nil, fmt.Errorf("classpath entry %q is neither a directory nor a .jar/.jmod archive", path)
}
