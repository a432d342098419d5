// Package api holds the batch/vector and type-tree shapes shared between
// the record reader and the column readers, adapted from goorc's
// orc/api package but trimmed to the read path.
package api

import (
	"fmt"
	"strings"
)

// Kind identifies an ORC primitive or composite type. Values match the
// Apache ORC Type.Kind protobuf enum.
type Kind int32

const (
	KindBoolean Kind = iota
	KindByte
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindString
	KindBinary
	KindTimestamp
	KindList
	KindMap
	KindStruct
	KindUnion
	KindDecimal
	KindDate
	KindVarchar
	KindChar
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindByte:
		return "tinyint"
	case KindShort:
		return "smallint"
	case KindInt:
		return "int"
	case KindLong:
		return "bigint"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindBinary:
		return "binary"
	case KindTimestamp:
		return "timestamp"
	case KindList:
		return "array"
	case KindMap:
		return "map"
	case KindStruct:
		return "struct"
	case KindUnion:
		return "uniontype"
	case KindDecimal:
		return "decimal"
	case KindDate:
		return "date"
	case KindVarchar:
		return "varchar"
	case KindChar:
		return "char"
	default:
		return fmt.Sprintf("kind(%d)", int32(k))
	}
}

// IsPrimitive reports whether a kind has no children.
func (k Kind) IsPrimitive() bool {
	switch k {
	case KindList, KindMap, KindStruct, KindUnion:
		return false
	default:
		return true
	}
}

// TypeDescription is one node of the flat, index-addressed type tree read
// from the footer. Children are pointers to other nodes of that same flat
// slice; no node points back at its parent.
type TypeDescription struct {
	Id            int
	Kind          Kind
	ChildrenNames []string
	Children      []*TypeDescription

	// Precision/Scale apply to KindDecimal; MaxLength applies to
	// KindVarchar/KindChar.
	Precision int
	Scale     int
	MaxLength int
}

func (td *TypeDescription) String() string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("id %d, kind %s", td.Id, td.Kind))
	for i, name := range td.ChildrenNames {
		sb.WriteString(fmt.Sprintf(", %s: %s", name, td.Children[i]))
	}
	return sb.String()
}

// Flatten returns the pre-order walk of the schema tree rooted at td,
// i.e. the same ordering the footer's flat type list uses.
func (td *TypeDescription) Flatten() []*TypeDescription {
	var out []*TypeDescription
	var walk func(*TypeDescription)
	walk = func(n *TypeDescription) {
		out = append(out, n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(td)
	return out
}

// BuildTree turns the footer's flat (kind, subtype-ids, field-names) triples
// into a TypeDescription tree, following the parent->children index
// convention the ORC/DWRF footer's Types list uses.
func BuildTree(kinds []Kind, subtypes [][]int, fieldNames [][]string) []*TypeDescription {
	nodes := make([]*TypeDescription, len(kinds))
	for i, k := range kinds {
		nodes[i] = &TypeDescription{Id: i, Kind: k}
	}
	for i := range nodes {
		for j, childID := range subtypes[i] {
			nodes[i].Children = append(nodes[i].Children, nodes[childID])
			var name string
			if j < len(fieldNames[i]) {
				name = fieldNames[i][j]
			}
			nodes[i].ChildrenNames = append(nodes[i].ChildrenNames, name)
		}
	}
	return nodes
}
