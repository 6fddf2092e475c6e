package object

import (
	"strings"
	"unicode"
)

// This file adapts jacobin's object/javaByteArray.go helpers to this core's
// plain []byte representation of a Java byte array (dropping the
// jacobin/types.JavaByte wrapper type and jacobin/stringPool dependency,
// neither of which this core has; it has no string interning).

// GoStringFromJavaByteArray converts a Java byte array's raw bytes to a Go
// string.
func GoStringFromJavaByteArray(jbarr []byte) string {
	var sb strings.Builder
	sb.Write(jbarr)
	return sb.String()
}

// JavaByteArrayFromGoString converts a Go string to the byte slice backing
// a Java byte array (one byte per rune, matching the JVM's Latin-1 byte
// array string encoding for the ASCII range this core's test fixtures use).
func JavaByteArrayFromGoString(str string) []byte {
	jbarr := make([]byte, 0, len(str))
	for _, r := range str {
		jbarr = append(jbarr, byte(r))
	}
	return jbarr
}

// StringObjectFromJavaByteArray builds a java/lang/String-equivalent Object
// from a raw byte array, storing it under the "value" field key the same
// way NewArray lays out array storage.
func StringObjectFromJavaByteArray(bytes []byte) *Object {
	newStr := NewInstance("java/lang/String")
	newStr.FieldTable["value"] = &Field{Ftype: "[B", Fvalue: bytes}
	return newStr
}

// JavaByteArrayFromStringObject extracts the backing byte array from a
// java/lang/String-equivalent Object, or nil if obj isn't a String.
func JavaByteArrayFromStringObject(obj *Object) []byte {
	if obj == nil || obj.ClassName() != "java/lang/String" {
		return nil
	}
	f, ok := obj.FieldTable["value"]
	if !ok {
		return nil
	}
	b, _ := f.Fvalue.([]byte)
	return b
}

// JavaByteArrayEquals compares two Java byte arrays for exact equality.
func JavaByteArrayEquals(jbarr1, jbarr2 []byte) bool {
	if jbarr1 == nil || jbarr2 == nil {
		return jbarr1 == nil && jbarr2 == nil
	}
	if len(jbarr1) != len(jbarr2) {
		return false
	}
	for i, b := range jbarr1 {
		if b != jbarr2[i] {
			return false
		}
	}
	return true
}

// JavaByteArrayEqualsIgnoreCase compares two Java byte arrays for
// case-insensitive equality.
func JavaByteArrayEqualsIgnoreCase(jbarr1, jbarr2 []byte) bool {
	if jbarr1 == nil || jbarr2 == nil {
		return jbarr1 == nil && jbarr2 == nil
	}
	if len(jbarr1) != len(jbarr2) {
		return false
	}
	for i, b := range jbarr1 {
		if unicode.ToLower(rune(b)) != unicode.ToLower(rune(jbarr2[i])) {
			return false
		}
	}
	return true
}
