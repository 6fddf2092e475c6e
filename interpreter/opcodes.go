package interpreter

// Opcode values for the mandated subset (spec.md §4.8). Named exactly as
// the JVM specification names them; grounded on the match arms of
// original_source/src/interpreter/mod.rs's invoke()/call().
const (
	opNop        = 0x00
	opAconstNull = 0x01

	opIconstM1 = 0x02
	opIconst0  = 0x03
	opIconst1  = 0x04
	opIconst2  = 0x05
	opIconst3  = 0x06
	opIconst4  = 0x07
	opIconst5  = 0x08

	opLconst0 = 0x09
	opLconst1 = 0x0a

	opFconst0 = 0x0b
	opFconst1 = 0x0c
	opFconst2 = 0x0d

	opDconst0 = 0x0e
	opDconst1 = 0x0f

	opBipush = 0x10
	opSipush = 0x11

	opIload0 = 0x1a
	opIload1 = 0x1b
	opIload2 = 0x1c
	opIload3 = 0x1d

	opIstore0 = 0x3b
	opIstore1 = 0x3c
	opIstore2 = 0x3d
	opIstore3 = 0x3e

	opIadd = 0x60
	opIinc = 0x84

	opIfIcmpge = 0xa2
	opGoto     = 0xa7
	opReturn   = 0xb1

	opGetstatic    = 0xb2
	opPutstatic    = 0xb3
	opInvokestatic = 0xb8
)
