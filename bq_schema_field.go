package main

const (
	BQ_TYPE_INTEGER   = "INTEGER"
	BQ_TYPE_FLOAT     = "FLOAT"
	BQ_TYPE_BOOLEAN   = "BOOLEAN"
	BQ_TYPE_STRING    = "STRING"
	BQ_TYPE_BYTES     = "BYTES"
	BQ_TYPE_DATE      = "DATE"
	BQ_TYPE_TIME      = "TIME"
	BQ_TYPE_TIMESTAMP = "TIMESTAMP"
	BQ_TYPE_ARRAY     = "ARRAY"
	BQ_TYPE_RECORD    = "RECORD"

	BQ_MODE_NULLABLE = "NULLABLE"
	BQ_MODE_REQUIRED = "REQUIRED"
	BQ_MODE_REPEATED = "REPEATED"
)

// BqType is a BigQuery column type. Element is only set for ARRAY.
type BqType struct {
	Name    string
	Element *BqType
}

func (bqType BqType) String() string {
	if bqType.Name == BQ_TYPE_ARRAY && bqType.Element != nil {
		return BQ_TYPE_ARRAY + "<" + bqType.Element.String() + ">"
	}
	return bqType.Name
}

func (bqType BqType) IsArray() bool {
	return bqType.Name == BQ_TYPE_ARRAY
}

func NewBqArrayType(element BqType) BqType {
	return BqType{Name: BQ_TYPE_ARRAY, Element: &element}
}

type BqSchemaField struct {
	Name string
	Type BqType
	Mode string
}

func (bqSchemaField BqSchemaField) IsRequired() bool {
	return bqSchemaField.Mode == BQ_MODE_REQUIRED
}

func NewBqSchemaField(parquetColumn ParquetColumn) BqSchemaField {
	mode := BQ_MODE_REQUIRED
	if parquetColumn.Nullable {
		mode = BQ_MODE_NULLABLE
	}

	return BqSchemaField{
		Name: parquetColumn.Name,
		Type: MapLogicalType(parquetColumn.Type),
		Mode: mode,
	}
}

// MapLogicalType never fails: anything it does not recognize becomes STRING.
// Struct fields are not expanded, a struct maps to an opaque RECORD.
func MapLogicalType(parquetType ParquetLogicalType) BqType {
	switch parquetType := parquetType.(type) {
	case TimestampType:
		return BqType{Name: BQ_TYPE_TIMESTAMP}
	case TimeType:
		return BqType{Name: BQ_TYPE_TIME}
	case DateType:
		return BqType{Name: BQ_TYPE_DATE}
	case IntegerType:
		return BqType{Name: BQ_TYPE_INTEGER}
	case FloatType:
		return BqType{Name: BQ_TYPE_FLOAT}
	case BooleanType:
		return BqType{Name: BQ_TYPE_BOOLEAN}
	case StringType:
		return BqType{Name: BQ_TYPE_STRING}
	case BinaryType:
		return BqType{Name: BQ_TYPE_BYTES}
	case ListType:
		return NewBqArrayType(MapLogicalType(parquetType.Element.Type))
	case StructType:
		return BqType{Name: BQ_TYPE_RECORD}
	default:
		return BqType{Name: BQ_TYPE_STRING}
	}
}
