// Command jacovm is the VM's CLI front end: it resolves a classpath, loads
// and links a named class through the metaspace, and interprets one of its
// static void no-arg methods. Restructured from jacobin's flag-based
// HandleCli (cli_test.go's -help/-showversion/-cp surface, getEnvArgs's
// JAVA_TOOL_OPTIONS collection) onto github.com/spf13/cobra, grounded on
// _examples/saferwall-pe/cmd/pedumper.go's root-command-plus-subcommand
// shape (a version subcommand, persistent flags bound with
// PersistentFlags().StringVarP).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jacovm/classfile"
	"jacovm/classpath"
	"jacovm/frame"
	"jacovm/globals"
	"jacovm/heap"
	"jacovm/heapdump"
	"jacovm/interpreter"
	"jacovm/metaspace"
	"jacovm/trace"
)

const jacovmVersion = "0.1.0"

var (
	classpathFlag string
	methodFlag    string
	verboseFlag   bool
	stackBytes    int
	heapDumpPath  string
	edenBytes     int
)

// defaultHeapConfig sizes a run's generational store. This core's mandated
// opcode subset has no allocating opcode (new/newarray), so nothing ever
// calls AllocEden yet — the heap still gets constructed and polled at the
// one safepoint runClass has (after the invoked method returns), the way
// original_source's interpreter loop touches a safepoint between
// instructions, so the generation-flip/root-publish path is exercised
// end-to-end rather than sitting dead.
func defaultHeapConfig(eden int) heap.Config {
	return heap.Config{OldGenSize: eden * 4, SurvivorSize: eden, EdenSize: eden}
}

// classpathSource adapts *classpath.Classpath's three-way-search FindClass
// (data, ok, err) into metaspace.ClassSource's (data, err) shape, turning a
// miss into a plain "class not found" error; the interpreter's loader and
// metaspace's superclass resolution report any source error as a
// ClassNotFoundException.
type classpathSource struct {
	cp *classpath.Classpath
}

func (s *classpathSource) LoadRawClass(name string) ([]byte, error) {
	data, ok, err := s.cp.FindClass(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("class not found on classpath: %s", name)
	}
	return data, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jacovm [flags] class-name",
		Short: "A small JVM core: class loading, linking, and bytecode interpretation",
		Long:  "jacovm decodes class files, links them into a metaspace, and interprets the mandated bytecode subset.",
		Args:  cobra.ExactArgs(1),
		RunE:  runClass,
	}
	root.PersistentFlags().StringVarP(&classpathFlag, "classpath", "c", ".", "application classpath (colon-separated)")
	root.PersistentFlags().StringVarP(&methodFlag, "method", "m", "main", "static void no-arg method to run")
	root.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "trace class loading and linking")
	root.PersistentFlags().IntVar(&stackBytes, "stack-bytes", 1<<20, "call stack byte budget before StackOverflowError")
	root.PersistentFlags().StringVar(&heapDumpPath, "heap-dump", "", "write an hprof file describing every loaded class after running")
	root.PersistentFlags().IntVar(&edenBytes, "eden-bytes", 1<<16, "eden generation byte budget")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print jacovm's version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("jacovm %s (max class-file major version %d)\n", jacovmVersion, globals.MaxSupportedMajorVersion)
		},
	})
	return root
}

func runClass(cmd *cobra.Command, args []string) error {
	g := globals.InitGlobals(os.Args[0])
	g.AppClassPath = append(g.AppClassPath, classpathFlag)
	if verboseFlag {
		trace.SetLevel(trace.FINE)
		g.TraceClass = true
	}

	if env := globals.EnvArgs(); env != "" {
		trace.Trace("environment options: "+env, trace.INFO)
	}

	cp := classpath.New()
	for _, dir := range splitClasspath(classpathFlag) {
		if err := cp.AppendApp(dir); err != nil {
			return fmt.Errorf("classpath entry %q: %w", dir, err)
		}
	}

	ms := metaspace.New()
	src := &classpathSource{cp: cp}
	loader := interpreter.NewLoader(ms, src)

	className := args[0]
	klass, err := loader.LoadClass(className)
	if err != nil {
		return err
	}

	method, ok := klass.FindStaticMethod(methodFlag, "()V")
	if !ok {
		return fmt.Errorf("%s: no static %s()V method", className, methodFlag)
	}
	trace.Trace(fmt.Sprintf("invoking %s.%s%s", className, methodFlag, describeCode(method)), trace.FINE)

	stack := frame.NewStack(stackBytes)
	in := interpreter.New(loader, stack)

	objHeap := heap.New(defaultHeapConfig(edenBytes))
	objHeap.PublishRoots([]heap.Root{stack})

	if _, err := in.Invoke(klass, method, nil); err != nil {
		return err
	}
	objHeap.OnSafepoint()

	if heapDumpPath != "" {
		if err := writeHeapDump(ms, heapDumpPath); err != nil {
			return fmt.Errorf("heap dump: %w", err)
		}
	}
	return nil
}

// writeHeapDump renders every class the metaspace loaded during the run
// into an hprof file, each class recorded as a GC root.
func writeHeapDump(ms *metaspace.Metaspace, path string) error {
	w := heapdump.New()
	for _, k := range ms.All() {
		classID := w.AddClass(k)
		w.AddRoot(classID)
	}
	return os.WriteFile(path, w.Bytes(), 0o644)
}

func describeCode(m *classfile.Method) string {
	if m.Code == nil {
		return " (abstract/native)"
	}
	return fmt.Sprintf(" (%d bytes of code)", len(m.Code.Bytecode))
}

// splitClasspath breaks a colon-separated classpath string into its
// individual directory/archive entries, matching original_source's
// get_classpath/set_classpath convention.
func splitClasspath(path string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == ':' {
			parts = append(parts, path[start:i])
			start = i + 1
		}
	}
	parts = append(parts, path[start:])
	return parts
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		trace.Error(err.Error())
		os.Exit(1)
	}
}
