// Package globals holds the process-wide, acquire-once configuration that
// the CLI front end reads and records: JAVA_HOME,
// the application classpath, and the maximum supported class-file version.
// Grounded on the teacher's jacobin/globals package (globals.GetGlobalRef(),
// globals.InitGlobals, globals.TraceClass/TraceCloadi) referenced throughout
// classloader.go and jvm/errors_test.go.
package globals

import (
	"os"
	"strings"
	"sync"
)

// MaxSupportedMajorVersion is the highest class-file major version this core
// reports supporting (Java 17 corresponds to 61). classfile.Decode does not
// check the major version against it.
const MaxSupportedMajorVersion = 61

// Globals is the singleton process configuration.
type Globals struct {
	JacobinName  string
	JavaHome     string
	StartingJar  string
	AppClassPath []string

	TraceClass  bool
	TraceCloadi bool

	ExitNow bool
}

var (
	once sync.Once
	ref  *Globals
)

// InitGlobals creates the singleton, recording the program name. The
// configuration follows a single acquire-once lifecycle, so subsequent
// calls are no-ops that return the first instance.
func InitGlobals(name string) *Globals {
	once.Do(func() {
		ref = &Globals{
			JacobinName: name,
			JavaHome:    os.Getenv("JAVA_HOME"),
		}
	})
	return ref
}

// GetGlobalRef returns the singleton, initializing it with a default name if
// InitGlobals hasn't run yet.
func GetGlobalRef() *Globals {
	if ref == nil {
		return InitGlobals("jacovm")
	}
	return ref
}

// EnvArgs collects the JVM-recognized environment variables
// (JAVA_TOOL_OPTIONS, _JAVA_OPTIONS, JDK_JAVA_OPTIONS), in that priority
// order, joined by a single space, skipping any that are unset.
func EnvArgs() string {
	var parts []string
	for _, name := range []string{"JAVA_TOOL_OPTIONS", "_JAVA_OPTIONS", "JDK_JAVA_OPTIONS"} {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}
