package main

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/schema"
)

const PARQUET_LIST_REPEATED_ARRAY_NAME = "array"

// ReadParquetSchema reads the footer of a Parquet file and returns its top-level columns in file order.
func ReadParquetSchema(storage Storage, path string) (parquetColumns []ParquetColumn, err error) {
	fileReader, err := storage.OpenParquetFile(path)
	if err != nil {
		return nil, NewSourceReadError(path, err)
	}
	defer fileReader.Close()

	parquetReader, err := reader.NewParquetReader(fileReader, nil, 1)
	if err != nil {
		return nil, NewSourceReadError(path, errors.Wrap(err, "failed to create Parquet reader"))
	}
	defer parquetReader.ReadStop()

	rootNode, err := newParquetSchemaTree(parquetReader.SchemaHandler)
	if err != nil {
		return nil, NewSourceReadError(path, err)
	}

	parquetColumns = make([]ParquetColumn, len(rootNode.children))
	for i, childNode := range rootNode.children {
		parquetColumns[i] = childNode.parquetColumn()
	}

	return parquetColumns, nil
}

// Schema tree -------------------------------------------------------------------------------------------------------

type parquetSchemaNode struct {
	name     string
	element  *parquet.SchemaElement
	children []*parquetSchemaNode
}

// The footer stores the schema as a depth-first list where groups declare their number of children.
func newParquetSchemaTree(schemaHandler *schema.SchemaHandler) (*parquetSchemaNode, error) {
	if schemaHandler == nil || len(schemaHandler.SchemaElements) == 0 {
		return nil, errors.New("Parquet footer has an empty schema")
	}

	names := make([]string, len(schemaHandler.SchemaElements))
	for i, element := range schemaHandler.SchemaElements {
		names[i] = element.GetName()
		if i < len(schemaHandler.Infos) && schemaHandler.Infos[i] != nil && schemaHandler.Infos[i].ExName != "" {
			names[i] = schemaHandler.Infos[i].ExName
		}
	}

	position := 0
	rootNode, err := readParquetSchemaNode(schemaHandler.SchemaElements, names, &position)
	if err != nil {
		return nil, err
	}
	if position != len(schemaHandler.SchemaElements) {
		return nil, errors.Newf(
			"Parquet footer schema has %d trailing element(s) outside of the root",
			len(schemaHandler.SchemaElements)-position,
		)
	}

	return rootNode, nil
}

func readParquetSchemaNode(elements []*parquet.SchemaElement, names []string, position *int) (*parquetSchemaNode, error) {
	if *position >= len(elements) {
		return nil, errors.Newf("Parquet footer schema is truncated at element %d", *position)
	}

	element := elements[*position]
	if element == nil {
		return nil, errors.Newf("Parquet footer schema has an empty element at %d", *position)
	}

	node := &parquetSchemaNode{name: names[*position], element: element}
	*position++

	numChildren := int(element.GetNumChildren())
	if numChildren < 0 {
		return nil, errors.Newf("Parquet schema element %q has a negative number of children", node.name)
	}

	for i := 0; i < numChildren; i++ {
		childNode, err := readParquetSchemaNode(elements, names, position)
		if err != nil {
			return nil, errors.Wrapf(err, "in group %q", node.name)
		}
		node.children = append(node.children, childNode)
	}

	return node, nil
}

func (node *parquetSchemaNode) isGroup() bool {
	return !node.element.IsSetType()
}

func (node *parquetSchemaNode) repetitionType() parquet.FieldRepetitionType {
	if !node.element.IsSetRepetitionType() {
		return parquet.FieldRepetitionType_REQUIRED
	}
	return node.element.GetRepetitionType()
}

func (node *parquetSchemaNode) parquetColumn() ParquetColumn {
	switch node.repetitionType() {
	case parquet.FieldRepetitionType_REPEATED:
		// A repeated field outside of a LIST group is a non-null list of non-null values
		return ParquetColumn{
			Name: node.name,
			Type: ListType{
				Element: ParquetColumn{Name: node.name, Type: node.logicalType(), Nullable: false},
			},
			Nullable: false,
		}
	case parquet.FieldRepetitionType_OPTIONAL:
		return ParquetColumn{Name: node.name, Type: node.logicalType(), Nullable: true}
	default:
		return ParquetColumn{Name: node.name, Type: node.logicalType(), Nullable: false}
	}
}

func (node *parquetSchemaNode) logicalType() ParquetLogicalType {
	if !node.isGroup() {
		return primitiveLogicalType(node.element)
	}

	logicalType := node.element.GetLogicalType()
	convertedType := node.element.GetConvertedType()

	switch {
	case node.element.IsSetLogicalType() && logicalType.IsSetLIST(),
		node.element.IsSetConvertedType() && convertedType == parquet.ConvertedType_LIST:
		return node.listType()
	case node.element.IsSetLogicalType() && logicalType.IsSetMAP(),
		node.element.IsSetConvertedType() && (convertedType == parquet.ConvertedType_MAP || convertedType == parquet.ConvertedType_MAP_KEY_VALUE):
		return node.mapType()
	}

	fields := make([]ParquetColumn, len(node.children))
	for i, childNode := range node.children {
		fields[i] = childNode.parquetColumn()
	}
	return StructType{Fields: fields}
}

// Supports the standard 3-level layout and the legacy 2-level ones:
//
//	<list-repetition> group <name> (LIST) { repeated group list { <element-repetition> <element-type> element; } }
//	<list-repetition> group <name> (LIST) { repeated <element-type> element; }
//	<list-repetition> group <name> (LIST) { repeated group array { ...fields } }
func (node *parquetSchemaNode) listType() ParquetLogicalType {
	if len(node.children) != 1 || node.children[0].repetitionType() != parquet.FieldRepetitionType_REPEATED {
		return OtherType{Name: "list<invalid>"}
	}

	repeatedNode := node.children[0]

	if !repeatedNode.isGroup() {
		return ListType{
			Element: ParquetColumn{Name: repeatedNode.name, Type: primitiveLogicalType(repeatedNode.element), Nullable: false},
		}
	}

	if len(repeatedNode.children) != 1 ||
		repeatedNode.name == PARQUET_LIST_REPEATED_ARRAY_NAME ||
		repeatedNode.name == node.name+"_tuple" {
		fields := make([]ParquetColumn, len(repeatedNode.children))
		for i, childNode := range repeatedNode.children {
			fields[i] = childNode.parquetColumn()
		}
		return ListType{
			Element: ParquetColumn{Name: repeatedNode.name, Type: StructType{Fields: fields}, Nullable: false},
		}
	}

	return ListType{Element: repeatedNode.children[0].parquetColumn()}
}

func (node *parquetSchemaNode) mapType() ParquetLogicalType {
	if len(node.children) != 1 || len(node.children[0].children) != 2 {
		return OtherType{Name: "map<invalid>"}
	}

	keyValueNode := node.children[0]
	keyColumn := keyValueNode.children[0].parquetColumn()
	valueColumn := keyValueNode.children[1].parquetColumn()
	return OtherType{Name: "map<" + parquetTypeString(keyColumn.Type) + ", " + parquetTypeString(valueColumn.Type) + ">"}
}

// Primitive types ---------------------------------------------------------------------------------------------------

func primitiveLogicalType(element *parquet.SchemaElement) ParquetLogicalType {
	if element.IsSetLogicalType() {
		if logicalType, ok := logicalTypeAnnotation(element); ok {
			return logicalType
		}
	}

	if element.IsSetConvertedType() {
		if logicalType, ok := convertedTypeAnnotation(element); ok {
			return logicalType
		}
	}

	switch element.GetType() {
	case parquet.Type_BOOLEAN:
		return BooleanType{}
	case parquet.Type_INT32:
		return IntegerType{BitWidth: 32, Signed: true}
	case parquet.Type_INT64:
		return IntegerType{BitWidth: 64, Signed: true}
	case parquet.Type_INT96:
		return TimestampType{Unit: PARQUET_TIME_UNIT_NANOS}
	case parquet.Type_FLOAT:
		return FloatType{BitWidth: 32}
	case parquet.Type_DOUBLE:
		return FloatType{BitWidth: 64}
	case parquet.Type_BYTE_ARRAY:
		return BinaryType{}
	case parquet.Type_FIXED_LEN_BYTE_ARRAY:
		return BinaryType{FixedLength: int(element.GetTypeLength())}
	}

	return OtherType{Name: strings.ToLower(element.GetType().String())}
}

func logicalTypeAnnotation(element *parquet.SchemaElement) (ParquetLogicalType, bool) {
	logicalType := element.GetLogicalType()

	switch {
	case logicalType.IsSetSTRING(), logicalType.IsSetENUM(), logicalType.IsSetJSON():
		return StringType{}, true
	case logicalType.IsSetBSON():
		return BinaryType{}, true
	case logicalType.IsSetDATE():
		return DateType{}, true
	case logicalType.IsSetTIME():
		return TimeType{Unit: timeUnit(logicalType.GetTIME().GetUnit())}, true
	case logicalType.IsSetTIMESTAMP():
		timestampType := logicalType.GetTIMESTAMP()
		return TimestampType{Unit: timeUnit(timestampType.GetUnit()), IsAdjustedToUtc: timestampType.GetIsAdjustedToUTC()}, true
	case logicalType.IsSetINTEGER():
		integerType := logicalType.GetINTEGER()
		return IntegerType{BitWidth: int(integerType.GetBitWidth()), Signed: integerType.GetIsSigned()}, true
	case logicalType.IsSetDECIMAL():
		decimalType := logicalType.GetDECIMAL()
		return OtherType{Name: fmt.Sprintf("decimal(%d, %d)", decimalType.GetPrecision(), decimalType.GetScale())}, true
	case logicalType.IsSetUUID():
		return OtherType{Name: "uuid"}, true
	case logicalType.IsSetUNKNOWN():
		return OtherType{Name: "null"}, true
	}

	return nil, false
}

func convertedTypeAnnotation(element *parquet.SchemaElement) (ParquetLogicalType, bool) {
	switch element.GetConvertedType() {
	case parquet.ConvertedType_UTF8, parquet.ConvertedType_ENUM, parquet.ConvertedType_JSON:
		return StringType{}, true
	case parquet.ConvertedType_BSON:
		return BinaryType{}, true
	case parquet.ConvertedType_DATE:
		return DateType{}, true
	case parquet.ConvertedType_TIME_MILLIS:
		return TimeType{Unit: PARQUET_TIME_UNIT_MILLIS}, true
	case parquet.ConvertedType_TIME_MICROS:
		return TimeType{Unit: PARQUET_TIME_UNIT_MICROS}, true
	case parquet.ConvertedType_TIMESTAMP_MILLIS:
		return TimestampType{Unit: PARQUET_TIME_UNIT_MILLIS, IsAdjustedToUtc: true}, true
	case parquet.ConvertedType_TIMESTAMP_MICROS:
		return TimestampType{Unit: PARQUET_TIME_UNIT_MICROS, IsAdjustedToUtc: true}, true
	case parquet.ConvertedType_INT_8:
		return IntegerType{BitWidth: 8, Signed: true}, true
	case parquet.ConvertedType_INT_16:
		return IntegerType{BitWidth: 16, Signed: true}, true
	case parquet.ConvertedType_INT_32:
		return IntegerType{BitWidth: 32, Signed: true}, true
	case parquet.ConvertedType_INT_64:
		return IntegerType{BitWidth: 64, Signed: true}, true
	case parquet.ConvertedType_UINT_8:
		return IntegerType{BitWidth: 8, Signed: false}, true
	case parquet.ConvertedType_UINT_16:
		return IntegerType{BitWidth: 16, Signed: false}, true
	case parquet.ConvertedType_UINT_32:
		return IntegerType{BitWidth: 32, Signed: false}, true
	case parquet.ConvertedType_UINT_64:
		return IntegerType{BitWidth: 64, Signed: false}, true
	case parquet.ConvertedType_DECIMAL:
		return OtherType{Name: fmt.Sprintf("decimal(%d, %d)", element.GetPrecision(), element.GetScale())}, true
	case parquet.ConvertedType_INTERVAL:
		return OtherType{Name: "interval"}, true
	}

	return nil, false
}

func timeUnit(unit *parquet.TimeUnit) string {
	switch {
	case unit == nil:
		return PARQUET_TIME_UNIT_MILLIS
	case unit.IsSetMICROS():
		return PARQUET_TIME_UNIT_MICROS
	case unit.IsSetNANOS():
		return PARQUET_TIME_UNIT_NANOS
	default:
		return PARQUET_TIME_UNIT_MILLIS
	}
}
