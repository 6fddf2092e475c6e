package classfile

import (
	"errors"
	"path/filepath"
	"runtime"
	"strconv"

	"jacovm/trace"
)

// ClassFormatError is the fatal VM error thrown by the decoder for malformed
// input (spec.md §7: "binary decoding failures are always fatal"). It
// records the file/line of the caller that detected the problem, mirroring
// the teacher's cfe() helper in classloader.go.
func ClassFormatError(msg string) error {
	errMsg := "Class Format Error: " + msg
	if pc, _, _, ok := runtime.Caller(1); ok {
		fn := runtime.FuncForPC(pc)
		fileName, fileLine := fn.FileLine(pc)
		errMsg += "\n  detected by file: " + filepath.Base(fileName) + ", line: " + strconv.Itoa(fileLine)
	}
	trace.Error(errMsg)
	return errors.New(errMsg)
}
