package metaspace

import (
	"fmt"

	"jacovm/classfile"
	"jacovm/descriptor"
)

// widthOf returns a field's byte width for layout purposes: 8 for the
// wide-slot types (long/double), 4 for everything else (references
// included — this core doesn't model compressed oops), matching
// original_source/src/bytecode/field.rs's memory_size() table.
func widthOf(desc string) (int, error) {
	ft, err := descriptor.ParseField(desc)
	if err != nil {
		return 0, err
	}
	if ft.Kind == descriptor.KindLong || ft.Kind == descriptor.KindDouble {
		return 8, nil
	}
	return 4, nil
}

// buildLayout computes k.Layout and k.InstanceSize by walking the
// superclass chain from java/lang/Object down to k, appending each level's
// own declared instance fields after its superclass's — so a subclass
// never reorders or overlaps its parent's fields, mirroring
// original_source's Klass::new layout construction.
func buildLayout(k *Klass) error {
	offset := 0
	if k.Superclass != nil {
		offset = k.Superclass.InstanceSize
	}
	k.Layout = make(map[string]FieldLayout)
	if k.Superclass != nil {
		for name, fl := range k.Superclass.Layout {
			k.Layout[name] = fl
		}
	}

	if k.Class == nil {
		k.InstanceSize = offset
		return nil
	}
	for _, f := range k.Class.Fields {
		if f.IsStatic() {
			continue
		}
		size, err := widthOf(f.Descriptor)
		if err != nil {
			return fmt.Errorf("field %s.%s: %w", k.Name, f.Name, err)
		}
		k.Layout[f.Name] = FieldLayout{Offset: offset, Size: size}
		offset += size
	}
	k.InstanceSize = offset
	return nil
}

// buildVtable computes k's virtual-method dispatch table: start from the
// superclass's table (inheriting every override), then let k's own
// public-or-protected, non-final, non-static, non-<init> methods override or
// extend it. Package-private and final methods are never virtually
// dispatched through a vtable slot a subclass could override, matching
// original_source/src/mem/klass.rs:199-202's
// `(is_public() || is_protected()) && !is_final() && !is_static() && name !=
// "<init>"` gate.
func buildVtable(k *Klass) {
	k.Vtable = make(map[string]MethodRef)
	if k.Superclass != nil {
		for key, ref := range k.Superclass.Vtable {
			k.Vtable[key] = ref
		}
	}
	if k.Class == nil {
		return
	}
	for _, m := range k.Class.Methods {
		if m.IsStatic() || m.Name == "<init>" {
			continue
		}
		if !(m.AccessFlags.IsPublic() || m.AccessFlags.Is(classfile.AccProtected)) || m.AccessFlags.IsFinal() {
			continue
		}
		key := m.Name + m.Descriptor
		k.Vtable[key] = MethodRef{Owner: k, Method: m}
	}
}

// buildItable computes k's interface-method dispatch table: the union of
// every superinterface's own method signatures (direct and transitive),
// each resolved to whichever concrete implementation k's vtable provides.
// An interface method with no vtable match is recorded with the interface
// itself as Owner and the interface's own declaration as Method (no Code
// when abstract).
func buildItable(k *Klass) {
	k.Itable = make(map[string]MethodRef)
	if k.Superclass != nil {
		for key, ref := range k.Superclass.Itable {
			k.Itable[key] = ref
		}
	}
	for _, iface := range k.Interfaces {
		collectInterfaceSignatures(iface, k)
	}
}

func collectInterfaceSignatures(iface *Klass, k *Klass) {
	if iface.Class != nil {
		for _, m := range iface.Class.Methods {
			if m.IsStatic() || m.Name == "<clinit>" {
				continue
			}
			key := m.Name + m.Descriptor
			if ref, ok := k.Vtable[key]; ok {
				k.Itable[key] = ref
			} else {
				k.Itable[key] = MethodRef{Owner: iface, Method: m}
			}
		}
	}
	for _, super := range iface.Interfaces {
		collectInterfaceSignatures(super, k)
	}
}

// link builds k's vtable, itable, and instance layout from its already-set
// Class/Superclass/Interfaces. Called once, by DefineClass, after the
// superclass chain is resolved.
func link(k *Klass) error {
	buildVtable(k)
	buildItable(k)
	if err := buildLayout(k); err != nil {
		return err
	}
	k.Status = StatusLoaded
	return nil
}
