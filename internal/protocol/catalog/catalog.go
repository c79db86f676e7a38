// Package catalog documents how the 32-bit ANP message type is laid out.
//
//	 31..28   27..26   25..16      15..8     7..0
//	+--------+------+-----------+---------+----------+
//	| family | role | namespace | subtype | reserved |
//	+--------+------+-----------+---------+----------+
//
// Nothing in protocol or transport depends on this package; it serves
// diagnostics and callers that route decoded messages.
package catalog

import "fmt"

const (
	familyShift    = 28
	roleShift      = 26
	namespaceShift = 16
	subtypeShift   = 8

	FamilyMask    uint32 = 0xf0000000
	RoleMask      uint32 = 0x0c000000
	NamespaceMask uint32 = 0x03ff0000
	SubtypeMask   uint32 = 0x0000ff00
	ReservedMask  uint32 = 0x000000ff
)

// Protocol versions.
const (
	KANPMajor           uint32 = 0
	KANPMinor           uint32 = 6
	KANPLastCompatMinor uint32 = 3

	OANPMajor uint32 = 1
	OANPMinor uint32 = 2
)

// Family selects the protocol family (bits 31..28).
type Family uint8

const (
	FamilyKANP Family = 1
	FamilyOANP Family = 2
)

func (f Family) String() string {
	switch f {
	case FamilyKANP:
		return "KANP"
	case FamilyOANP:
		return "OANP"
	default:
		return "UNKNOWN_PROTO"
	}
}

// Role is command, response or event (bits 27..26).
type Role uint8

const (
	RoleCommand  Role = 0
	RoleResponse Role = 1
	RoleEvent    Role = 2
	RoleReserved Role = 3
)

func (r Role) String() string {
	switch r {
	case RoleCommand:
		return "CMD"
	case RoleResponse:
		return "RES"
	case RoleEvent:
		return "EVT"
	default:
		return "UNKNOWN_ROLE"
	}
}

// Namespace is the 10-bit namespace id (bits 25..16). The names below are
// the KANP namespaces; OANP uses the field as a plain operation number.
type Namespace uint16

const (
	NamespaceGeneral    Namespace = 0
	NamespaceManage     Namespace = 1
	NamespaceWorkspace  Namespace = 2
	NamespaceReserved   Namespace = 3
	NamespaceChat       Namespace = 4
	NamespaceFiles      Namespace = 5
	NamespaceVNC        Namespace = 6
	NamespaceWhiteboard Namespace = 7
	NamespacePublicBox  Namespace = 8

	// NamespaceAppsMin is the first namespace owned by an application.
	NamespaceAppsMin Namespace = 4
	namespaceMax     Namespace = 0x3ff
)

func (n Namespace) String() string {
	switch n {
	case NamespaceGeneral:
		return "GEN"
	case NamespaceManage:
		return "MGT"
	case NamespaceWorkspace:
		return "KWS"
	case NamespaceReserved:
		return "RES"
	case NamespaceChat:
		return "CHAT"
	case NamespaceFiles:
		return "KFS"
	case NamespaceVNC:
		return "APP_SHARING"
	case NamespaceWhiteboard:
		return "WB"
	case NamespacePublicBox:
		return "PB"
	default:
		return "UNKNOWN_NS"
	}
}

// Fields is a type tag split into its parts.
type Fields struct {
	Family    Family
	Role      Role
	Namespace Namespace
	Subtype   uint8
	Reserved  uint8
}

// Build packs the parts of a type tag. Values wider than their field are
// truncated to it; the reserved byte is always zero.
func Build(family Family, role Role, ns Namespace, subtype uint8) uint32 {
	return uint32(family&0xf)<<familyShift |
		uint32(role&0x3)<<roleShift |
		uint32(ns&namespaceMax)<<namespaceShift |
		uint32(subtype)<<subtypeShift
}

// Split is the inverse of Build. Reserved bits are reported, not cleared.
func Split(t uint32) Fields {
	return Fields{
		Family:    Family((t & FamilyMask) >> familyShift),
		Role:      Role((t & RoleMask) >> roleShift),
		Namespace: Namespace((t & NamespaceMask) >> namespaceShift),
		Subtype:   uint8((t & SubtypeMask) >> subtypeShift),
		Reserved:  uint8(t & ReservedMask),
	}
}

// NamespaceOf returns the namespace bits of t, left in place.
func NamespaceOf(t uint32) uint32 {
	return t & NamespaceMask
}

// FamilyOf returns the protocol family of t.
func FamilyOf(t uint32) Family {
	return Split(t).Family
}

// RoleOf returns the role of t.
func RoleOf(t uint32) Role {
	return Split(t).Role
}

// WithRole returns t with its role bits replaced.
func WithRole(t uint32, role Role) uint32 {
	return t&^RoleMask | uint32(role&0x3)<<roleShift
}

// Describe renders t field by field, e.g. "KANP | CMD | MGT | 1 (0x10010100)".
// Unknown enumerants print a generic label and the remaining fields are
// still shown.
func Describe(t uint32) string {
	f := Split(t)
	ns := f.Namespace.String()
	if f.Family == FamilyOANP {
		ns = fmt.Sprintf("OP %d", f.Namespace)
	} else if ns == "UNKNOWN_NS" {
		ns = fmt.Sprintf("UNKNOWN_NS %d", f.Namespace)
	}
	out := fmt.Sprintf("%s | %s | %s | %d (0x%08x)", f.Family, f.Role, ns, f.Subtype, t)
	if f.Reserved != 0 {
		out += fmt.Sprintf(" reserved=0x%02x", f.Reserved)
	}
	return out
}
