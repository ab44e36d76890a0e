package parser

import (
	"strconv"
	"strings"
)

// FieldKind 字段类型
type FieldKind uint8

const (
	All    FieldKind = iota // *
	Number                  // n
	Range                   // a-b，两端包含
	List                    // 逗号分隔的 Number/Range
)

// Field 表达式中一个以空白分隔的单元
type Field struct {
	Kind       FieldKind
	Start, End uint32  // Number 时 Start == End
	Terms      []Field // 仅 List 使用
}

// AllField 返回通配字段
func AllField() Field { return Field{Kind: All} }

// NumberField 返回单值字段
func NumberField(n uint32) Field { return Field{Kind: Number, Start: n, End: n} }

// RangeField 返回闭区间字段
func RangeField(start, end uint32) Field { return Field{Kind: Range, Start: start, End: end} }

// ListField 返回列表字段
func ListField(terms ...Field) Field { return Field{Kind: List, Terms: terms} }

func (f Field) String() string {
	switch f.Kind {
	case All:
		return "*"
	case Number:
		return strconv.FormatUint(uint64(f.Start), 10)
	case Range:
		return strconv.FormatUint(uint64(f.Start), 10) + "-" + strconv.FormatUint(uint64(f.End), 10)
	case List:
		parts := make([]string, len(f.Terms))
		for i, t := range f.Terms {
			parts[i] = t.String()
		}
		return strings.Join(parts, ",")
	}
	return "?"
}
