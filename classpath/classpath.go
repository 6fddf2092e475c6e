package classpath

import "strings"

// Classpath is the three-partition search path the classloader resolves
// names against, in bootstrap → extension → application priority order
// (spec.md §4.3). Grounded on original_source/src/classpath/mod.rs's
// Classpath{bootstrap,ext,app} and jacobin's BootstrapCL/ExtensionCL/AppCL
// classloader trio, collapsed here into one struct since this core doesn't
// need three independent Classloader identities to resolve a search path.
type Classpath struct {
	bootstrap []Entry
	ext       []Entry
	app       []Entry
}

// New returns an empty Classpath.
func New() *Classpath {
	return &Classpath{}
}

func (c *Classpath) AppendBootstrap(path string) error { return appendTo(&c.bootstrap, path) }
func (c *Classpath) AppendExt(path string) error       { return appendTo(&c.ext, path) }
func (c *Classpath) AppendApp(path string) error       { return appendTo(&c.app, path) }

func appendTo(entries *[]Entry, path string) error {
	e, err := NewEntry(path)
	if err != nil {
		return err
	}
	*entries = append(*entries, e)
	return nil
}

// classFileName returns the "pkg/Name.class" file name for a class given in
// either "pkg/Name" or "pkg.Name" form.
func classFileName(className string) string {
	return strings.ReplaceAll(className, ".", "/") + ".class"
}

// FindBootstrapClass, FindExtClass, and FindAppClass search only their
// named partition, matching original_source's find_bootstrap_class /
// find_ext_class / find_app_class.
func (c *Classpath) FindBootstrapClass(className string) ([]byte, bool, error) {
	return findIn(c.bootstrap, className)
}
func (c *Classpath) FindExtClass(className string) ([]byte, bool, error) {
	return findIn(c.ext, className)
}
func (c *Classpath) FindAppClass(className string) ([]byte, bool, error) {
	return findIn(c.app, className)
}

// FindClass searches all three partitions in priority order, implementing
// the full delegation search spec.md §4.3 mandates.
func (c *Classpath) FindClass(className string) ([]byte, bool, error) {
	if data, ok, err := c.FindBootstrapClass(className); ok || err != nil {
		return data, ok, err
	}
	if data, ok, err := c.FindExtClass(className); ok || err != nil {
		return data, ok, err
	}
	return c.FindAppClass(className)
}

func findIn(entries []Entry, className string) ([]byte, bool, error) {
	classFile := classFileName(className)
	for _, e := range entries {
		data, ok, err := e.FindClass(classFile)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return data, true, nil
		}
	}
	return nil, false, nil
}

// String renders the full effective classpath, colon-joined in
// bootstrap/ext/app order, matching original_source's get_classpath.
func (c *Classpath) String() string {
	var parts []string
	for _, group := range [][]Entry{c.bootstrap, c.ext, c.app} {
		for _, e := range group {
			parts = append(parts, e.String())
		}
	}
	return strings.Join(parts, ":")
}
