package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go/parquet"
)

func TestReadParquetSchema(t *testing.T) {
	t.Run("Reads top-level columns in file order", func(t *testing.T) {
		config := loadTestConfig()
		path := writeDefaultTestParquetFile(t)

		parquetColumns, err := ReadParquetSchema(NewStorage(config), path)

		require.NoError(t, err)
		names := []string{}
		for _, parquetColumn := range parquetColumns {
			names = append(names, parquetColumn.Name)
		}
		assert.Equal(t, []string{"id", "name", "score", "is_active", "created_at", "tags", "_partition_date", "1st_place"}, names)
	})

	t.Run("Reads logical types and nullability", func(t *testing.T) {
		config := loadTestConfig()
		path := writeDefaultTestParquetFile(t)

		parquetColumns, err := ReadParquetSchema(NewStorage(config), path)

		require.NoError(t, err)
		assert.Equal(t, ParquetColumn{Name: "id", Type: IntegerType{BitWidth: 64, Signed: true}, Nullable: false}, parquetColumns[0])
		assert.Equal(t, ParquetColumn{Name: "name", Type: StringType{}, Nullable: true}, parquetColumns[1])
		assert.Equal(t, ParquetColumn{Name: "score", Type: FloatType{BitWidth: 64}, Nullable: true}, parquetColumns[2])
		assert.Equal(t, ParquetColumn{Name: "is_active", Type: BooleanType{}, Nullable: false}, parquetColumns[3])
		require.IsType(t, TimestampType{}, parquetColumns[4].Type)
		assert.Equal(t, PARQUET_TIME_UNIT_MILLIS, parquetColumns[4].Type.(TimestampType).Unit)
		assert.Equal(t, DateType{}, parquetColumns[6].Type)
		assert.Equal(t, IntegerType{BitWidth: 32, Signed: true}, parquetColumns[7].Type)
	})

	t.Run("Reads lists with their element type", func(t *testing.T) {
		config := loadTestConfig()
		path := writeDefaultTestParquetFile(t)

		parquetColumns, err := ReadParquetSchema(NewStorage(config), path)

		require.NoError(t, err)
		listType, ok := parquetColumns[5].Type.(ListType)
		require.True(t, ok, parquetColumns[5].String())
		assert.Equal(t, StringType{}, listType.Element.Type)
		assert.True(t, parquetColumns[5].Nullable)
		assert.Equal(t, "ARRAY<STRING>", MapLogicalType(parquetColumns[5].Type).String())
	})

	t.Run("Returns SourceReadError for a missing file", func(t *testing.T) {
		config := loadTestConfig()
		path := filepath.Join(t.TempDir(), "missing.parquet")

		_, err := ReadParquetSchema(NewStorage(config), path)

		var sourceReadError *SourceReadError
		require.True(t, errors.As(err, &sourceReadError))
		assert.Equal(t, path, sourceReadError.Path)
		assert.Contains(t, err.Error(), "Error reading parquet file "+path)
	})

	t.Run("Returns SourceReadError for a file that is not Parquet", func(t *testing.T) {
		config := loadTestConfig()
		path := filepath.Join(t.TempDir(), "not_parquet.parquet")
		require.NoError(t, os.WriteFile(path, []byte("id,name\n1,Alice\n"), 0644))

		_, err := ReadParquetSchema(NewStorage(config), path)

		var sourceReadError *SourceReadError
		assert.True(t, errors.As(err, &sourceReadError))
	})
}

func TestParquetSchemaTree(t *testing.T) {
	t.Run("Reads legacy 2-level lists of primitives", func(t *testing.T) {
		node := testSchemaNode("numbers", parquet.FieldRepetitionType_OPTIONAL, nil, parquet.ConvertedTypePtr(parquet.ConvertedType_LIST),
			testPrimitiveSchemaNode("array", parquet.FieldRepetitionType_REPEATED, parquet.Type_INT32),
		)

		parquetColumn := node.parquetColumn()

		assert.Equal(t, ParquetColumn{
			Name:     "numbers",
			Type:     ListType{Element: ParquetColumn{Name: "array", Type: IntegerType{BitWidth: 32, Signed: true}}},
			Nullable: true,
		}, parquetColumn)
	})

	t.Run("Reads legacy lists of groups as lists of structs", func(t *testing.T) {
		node := testSchemaNode("points", parquet.FieldRepetitionType_REQUIRED, nil, parquet.ConvertedTypePtr(parquet.ConvertedType_LIST),
			testSchemaNode("points_tuple", parquet.FieldRepetitionType_REPEATED, nil, nil,
				testPrimitiveSchemaNode("x", parquet.FieldRepetitionType_REQUIRED, parquet.Type_DOUBLE),
			),
		)

		parquetColumn := node.parquetColumn()

		assert.Equal(t, "points: list<points_tuple: struct<x: double>>", parquetColumn.String())
		assert.Equal(t, "ARRAY<RECORD>", MapLogicalType(parquetColumn.Type).String())
	})

	t.Run("Reads repeated fields outside of lists as non-null lists", func(t *testing.T) {
		node := testPrimitiveSchemaNode("ids", parquet.FieldRepetitionType_REPEATED, parquet.Type_INT64)

		parquetColumn := node.parquetColumn()

		assert.False(t, parquetColumn.Nullable)
		assert.Equal(t, "ARRAY<INTEGER>", MapLogicalType(parquetColumn.Type).String())
	})

	t.Run("Reads maps as opaque types", func(t *testing.T) {
		node := testSchemaNode("attributes", parquet.FieldRepetitionType_OPTIONAL, nil, parquet.ConvertedTypePtr(parquet.ConvertedType_MAP),
			testSchemaNode("key_value", parquet.FieldRepetitionType_REPEATED, nil, nil,
				testPrimitiveSchemaNode("key", parquet.FieldRepetitionType_REQUIRED, parquet.Type_BYTE_ARRAY),
				testPrimitiveSchemaNode("value", parquet.FieldRepetitionType_OPTIONAL, parquet.Type_INT32),
			),
		)

		parquetColumn := node.parquetColumn()

		assert.Equal(t, OtherType{Name: "map<binary, int32>"}, parquetColumn.Type)
		assert.Equal(t, "STRING", MapLogicalType(parquetColumn.Type).String())
	})

	t.Run("Reads groups without annotations as structs", func(t *testing.T) {
		node := testSchemaNode("address", parquet.FieldRepetitionType_OPTIONAL, nil, nil,
			testPrimitiveSchemaNode("city", parquet.FieldRepetitionType_OPTIONAL, parquet.Type_BYTE_ARRAY),
		)

		parquetColumn := node.parquetColumn()

		assert.Equal(t, "address: struct<city: binary>", parquetColumn.String())
		assert.Equal(t, "RECORD", MapLogicalType(parquetColumn.Type).String())
	})
}

func testSchemaNode(name string, repetitionType parquet.FieldRepetitionType, logicalType *parquet.LogicalType, convertedType *parquet.ConvertedType, children ...*parquetSchemaNode) *parquetSchemaNode {
	element := parquet.NewSchemaElement()
	element.Name = name
	element.RepetitionType = &repetitionType
	element.LogicalType = logicalType
	element.ConvertedType = convertedType
	numChildren := int32(len(children))
	element.NumChildren = &numChildren

	return &parquetSchemaNode{name: name, element: element, children: children}
}

func testPrimitiveSchemaNode(name string, repetitionType parquet.FieldRepetitionType, primitiveType parquet.Type) *parquetSchemaNode {
	element := parquet.NewSchemaElement()
	element.Name = name
	element.RepetitionType = &repetitionType
	element.Type = &primitiveType

	return &parquetSchemaNode{name: name, element: element}
}
