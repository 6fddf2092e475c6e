package classpath

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ArchiveEntry is a jar- or jmod-backed classpath entry. Grounded on
// jacobin's classloader.go Archive/NewJarFile/getMainClass/loadClass, here
// built directly on the standard library's archive/zip reader since no
// third-party zip library appears anywhere in the retrieval pack.
type ArchiveEntry struct {
	path       string
	reader     *zip.ReadCloser
	mainClass  string
	// index maps a class file's path within the archive ("java/lang/String.class")
	// to its *zip.File, built once at open time.
	index map[string]*zip.File
}

func (a *ArchiveEntry) String() string { return a.path }

// NewArchiveEntry opens path as a zip archive and indexes its entries. jmod
// files are ordinary zip archives with class files nested under "classes/",
// which this function strips while indexing so lookups use the same "pkg/Name.class" key
// regardless of archive kind.
func NewArchiveEntry(path string) (*ArchiveEntry, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}

	a := &ArchiveEntry{path: path, reader: rc, index: make(map[string]*zip.File)}
	isJmod := strings.HasSuffix(strings.ToLower(path), ".jmod")
	for _, f := range rc.File {
		name := f.Name
		if isJmod {
			name = strings.TrimPrefix(name, "classes/")
		}
		a.index[name] = f
	}

	if mc, ok := a.readManifestMainClass(); ok {
		a.mainClass = mc
	}
	return a, nil
}

// Close releases the underlying zip reader.
func (a *ArchiveEntry) Close() error { return a.reader.Close() }

// FindClass implements Entry.
func (a *ArchiveEntry) FindClass(classFile string) ([]byte, bool, error) {
	f, ok := a.index[classFile]
	if !ok {
		return nil, false, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, false, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// MainClass returns the jar's Main-Class manifest attribute, mirroring
// classloader.go's GetMainClassFromJar. Empty if the jar carries no
// manifest or no Main-Class entry.
func (a *ArchiveEntry) MainClass() string { return a.mainClass }

func (a *ArchiveEntry) readManifestMainClass() (string, bool) {
	f, ok := a.index["META-INF/MANIFEST.MF"]
	if !ok {
		return "", false
	}
	rc, err := f.Open()
	if err != nil {
		return "", false
	}
	defer rc.Close()

	scanner := bufio.NewScanner(rc)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "Main-Class:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "Main-Class:")), true
		}
	}
	return "", false
}

// SignatureFile returns the raw bytes of the named PKCS#7 signature block
// (e.g. "META-INF/CERT.RSA"), used by VerifyJarSignature.
func (a *ArchiveEntry) SignatureFile(name string) ([]byte, bool, error) {
	return a.FindClass(name)
}
