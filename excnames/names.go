// Package excnames holds the names of the Java-level exceptions and errors
// the interpreter and class linker are contracted to raise (spec.md §7).
package excnames

const (
	ClassNotFoundException        = "java/lang/ClassNotFoundException"
	NoSuchFieldError               = "java/lang/NoSuchFieldError"
	NoSuchMethodError              = "java/lang/NoSuchMethodError"
	AbstractMethodError            = "java/lang/AbstractMethodError"
	ArithmeticException            = "java/lang/ArithmeticException"
	NullPointerException           = "java/lang/NullPointerException"
	ArrayIndexOutOfBoundsException = "java/lang/ArrayIndexOutOfBoundsException"
	ExceptionInInitializerError    = "java/lang/ExceptionInInitializerError"
	StackOverflowError             = "java/lang/StackOverflowError"
)

// JavaThrowable is a Java-level exception or error propagating through the
// interpreter's handler walk. It is distinct from a fatal VM error (see
// classfile.ClassFormatError): callers can catch it by class name.
type JavaThrowable struct {
	ClassName  string
	Message    string
	StackTrace []string
}

func (e *JavaThrowable) Error() string {
	if e.Message == "" {
		return e.ClassName
	}
	return e.ClassName + ": " + e.Message
}

// New constructs a JavaThrowable with an empty stack trace; frames append to
// StackTrace as the exception propagates up through the interpreter's run().
func New(className, message string) *JavaThrowable {
	return &JavaThrowable{ClassName: className, Message: message}
}
