package interpreter

import "encoding/binary"

// byteWriter is a tiny big-endian byte accumulator shared by the constant
// pool builder and the class-file assembler below. These tests hand-encode
// class files (including Code attributes whose bytecode embeds constant
// pool indices the test needs to know ahead of time) so they exercise the
// real classfile.Decode + metaspace.DefineClass + interpreter.Invoke
// pipeline end to end rather than mocking any layer.
type byteWriter struct{ buf []byte }

func (w *byteWriter) u1(v uint8)  { w.buf = append(w.buf, v) }
func (w *byteWriter) u2(v uint16) { w.buf = binary.BigEndian.AppendUint16(w.buf, v) }
func (w *byteWriter) u4(v uint32) { w.buf = binary.BigEndian.AppendUint32(w.buf, v) }

// cpPool accumulates constant_pool entries and returns each one's assigned
// index immediately, so callers can embed it into bytecode they build
// afterward.
type cpPool struct {
	next    uint16
	entries byteWriter
}

func newCPPool() *cpPool { return &cpPool{next: 1} }

func (p *cpPool) utf8(s string) uint16 {
	idx := p.next
	p.next++
	p.entries.u1(1) // TagUTF8
	p.entries.u2(uint16(len(s)))
	p.entries.buf = append(p.entries.buf, s...)
	return idx
}

func (p *cpPool) class(nameIdx uint16) uint16 {
	idx := p.next
	p.next++
	p.entries.u1(7) // TagClass
	p.entries.u2(nameIdx)
	return idx
}

func (p *cpPool) nameAndType(nameIdx, descIdx uint16) uint16 {
	idx := p.next
	p.next++
	p.entries.u1(12) // TagNameAndType
	p.entries.u2(nameIdx)
	p.entries.u2(descIdx)
	return idx
}

func (p *cpPool) fieldref(classIdx, natIdx uint16) uint16 {
	idx := p.next
	p.next++
	p.entries.u1(9) // TagFieldRef
	p.entries.u2(classIdx)
	p.entries.u2(natIdx)
	return idx
}

func (p *cpPool) methodref(classIdx, natIdx uint16) uint16 {
	idx := p.next
	p.next++
	p.entries.u1(10) // TagMethodRef
	p.entries.u2(classIdx)
	p.entries.u2(natIdx)
	return idx
}

// fieldDef describes one field_info to emit, with indices already interned
// into the shared cpPool.
type fieldDef struct {
	accessFlags      uint16
	nameIdx, descIdx uint16
}

// methodDef describes one method_info (with its Code body, already
// assembled with the right constant-pool indices baked in) to emit.
type methodDef struct {
	accessFlags         uint16
	nameIdx, descIdx    uint16
	maxStack, maxLocals uint16
	code                []byte
}

// assembleClass emits a complete class file around a pre-built cpPool:
// thisClassIdx/superClassIdx (0 for no superclass) plus the field and
// method tables.
func assembleClass(cp *cpPool, codeAttrNameIdx, thisClassIdx, superClassIdx uint16, fields []fieldDef, methods []methodDef) []byte {
	w := &byteWriter{}
	w.u4(0xCAFEBABE)
	w.u2(0)
	w.u2(61)

	w.u2(cp.next)
	w.buf = append(w.buf, cp.entries.buf...)

	w.u2(0x0021) // access_flags: public super
	w.u2(thisClassIdx)
	w.u2(superClassIdx)
	w.u2(0) // interfaces_count

	w.u2(uint16(len(fields)))
	for _, fd := range fields {
		w.u2(fd.accessFlags)
		w.u2(fd.nameIdx)
		w.u2(fd.descIdx)
		w.u2(0) // attributes_count
	}

	w.u2(uint16(len(methods)))
	for _, md := range methods {
		w.u2(md.accessFlags)
		w.u2(md.nameIdx)
		w.u2(md.descIdx)
		w.u2(1) // attributes_count (Code)

		w.u2(codeAttrNameIdx)
		body := &byteWriter{}
		body.u2(md.maxStack)
		body.u2(md.maxLocals)
		body.u4(uint32(len(md.code)))
		body.buf = append(body.buf, md.code...)
		body.u2(0) // exception_table_length
		body.u2(0) // attributes_count
		w.u4(uint32(len(body.buf)))
		w.buf = append(w.buf, body.buf...)
	}

	w.u2(0) // class attributes_count
	return w.buf
}

// memSource serves raw class bytes from an in-memory map, implementing
// metaspace.ClassSource without touching a real classpath.
type memSource struct {
	classes map[string][]byte
}

func (m *memSource) LoadRawClass(name string) ([]byte, error) {
	data, ok := m.classes[name]
	if !ok {
		return nil, errNotFound(name)
	}
	return data, nil
}

type errNotFound string

func (e errNotFound) Error() string { return "class not found: " + string(e) }
