package main

import (
	"os"
	"path/filepath"
	"testing"

	"jacovm/classpath"
	"jacovm/metaspace"
)

func TestSplitClasspath(t *testing.T) {
	got := splitClasspath("a:b:c")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("splitClasspath(%q) = %v, want %v", "a:b:c", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("splitClasspath(%q)[%d] = %q, want %q", "a:b:c", i, got[i], want[i])
		}
	}
}

func TestSplitClasspathSingleEntry(t *testing.T) {
	got := splitClasspath(".")
	if len(got) != 1 || got[0] != "." {
		t.Fatalf("splitClasspath(%q) = %v, want [.]", ".", got)
	}
}

func TestClasspathSourceWrapsMissingClassAsError(t *testing.T) {
	src := &classpathSource{cp: classpath.New()}
	_, err := src.LoadRawClass("Nonexistent")
	if err == nil {
		t.Fatal("expected an error for a class absent from every classpath entry")
	}
}

func TestWriteHeapDumpProducesHprofFile(t *testing.T) {
	ms := metaspace.New() // pre-populated with the phantom primitive Klasses
	path := filepath.Join(t.TempDir(), "out.hprof")

	if err := writeHeapDump(ms, path); err != nil {
		t.Fatalf("writeHeapDump: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading heap dump file: %v", err)
	}
	want := []byte("JAVA PROFILE 1.0.1\x00")
	if len(data) < len(want) || string(data[:len(want)]) != string(want) {
		t.Fatalf("heap dump file does not start with the hprof magic header: %q", data[:len(want)])
	}
	if len(data) <= len(want)+12 {
		t.Fatal("expected a non-trivial heap dump segment covering the phantom primitive classes")
	}
}
