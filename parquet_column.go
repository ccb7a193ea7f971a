package main

import (
	"fmt"
	"strings"
)

const (
	PARQUET_TIME_UNIT_MILLIS = "ms"
	PARQUET_TIME_UNIT_MICROS = "us"
	PARQUET_TIME_UNIT_NANOS  = "ns"
)

// ParquetColumn is one column of a Parquet file schema, as read from the footer.
type ParquetColumn struct {
	Name     string
	Type     ParquetLogicalType
	Nullable bool
}

func (parquetColumn ParquetColumn) String() string {
	return parquetColumn.Name + ": " + parquetTypeString(parquetColumn.Type)
}

// ParquetLogicalType is a closed set of logical types. Unknown annotations end up as OtherType.
type ParquetLogicalType interface {
	String() string
	isParquetLogicalType()
}

type IntegerType struct {
	BitWidth int
	Signed   bool
}

type FloatType struct {
	BitWidth int
}

type BooleanType struct{}

type StringType struct{}

type BinaryType struct {
	// 0 for variable length
	FixedLength int
}

type DateType struct{}

type TimeType struct {
	Unit string
}

type TimestampType struct {
	Unit            string
	IsAdjustedToUtc bool
}

type ListType struct {
	Element ParquetColumn
}

type StructType struct {
	Fields []ParquetColumn
}

type OtherType struct {
	Name string
}

func (IntegerType) isParquetLogicalType()   {}
func (FloatType) isParquetLogicalType()     {}
func (BooleanType) isParquetLogicalType()   {}
func (StringType) isParquetLogicalType()    {}
func (BinaryType) isParquetLogicalType()    {}
func (DateType) isParquetLogicalType()      {}
func (TimeType) isParquetLogicalType()      {}
func (TimestampType) isParquetLogicalType() {}
func (ListType) isParquetLogicalType()      {}
func (StructType) isParquetLogicalType()    {}
func (OtherType) isParquetLogicalType()     {}

func (integerType IntegerType) String() string {
	if integerType.Signed {
		return fmt.Sprintf("int%d", integerType.BitWidth)
	}
	return fmt.Sprintf("uint%d", integerType.BitWidth)
}

func (floatType FloatType) String() string {
	switch floatType.BitWidth {
	case 16:
		return "halffloat"
	case 32:
		return "float"
	default:
		return "double"
	}
}

func (BooleanType) String() string {
	return "bool"
}

func (StringType) String() string {
	return "string"
}

func (binaryType BinaryType) String() string {
	if binaryType.FixedLength > 0 {
		return fmt.Sprintf("fixed_size_binary[%d]", binaryType.FixedLength)
	}
	return "binary"
}

func (DateType) String() string {
	return "date32[day]"
}

func (timeType TimeType) String() string {
	if timeType.Unit == PARQUET_TIME_UNIT_MILLIS {
		return "time32[" + timeType.Unit + "]"
	}
	return "time64[" + timeType.Unit + "]"
}

func (timestampType TimestampType) String() string {
	if timestampType.IsAdjustedToUtc {
		return "timestamp[" + timestampType.Unit + ", tz=UTC]"
	}
	return "timestamp[" + timestampType.Unit + "]"
}

func (listType ListType) String() string {
	return "list<" + listType.Element.String() + ">"
}

func (structType StructType) String() string {
	fields := make([]string, len(structType.Fields))
	for i, field := range structType.Fields {
		fields[i] = field.String()
	}
	return "struct<" + strings.Join(fields, ", ") + ">"
}

func (otherType OtherType) String() string {
	if otherType.Name == "" {
		return "unknown"
	}
	return otherType.Name
}
