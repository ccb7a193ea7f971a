package main

import (
	"fmt"
	"io"
	"strings"
)

const DEFAULT_DDL_TABLE_NAME = "your_table"

type SkippedColumn struct {
	Name   string
	Reason string
	Type   string
}

func (skippedColumn SkippedColumn) String() string {
	return skippedColumn.Name + ": " + skippedColumn.Reason + " (type: " + skippedColumn.Type + ")"
}

type ColumnTuple struct {
	Name string
	Type string
}

func (columnTuple ColumnTuple) String() string {
	return "('" + columnTuple.Name + "', '" + columnTuple.Type + "')"
}

// BqSchema holds the accepted fields and the skipped columns of one translation,
// both in source column order. Every source column ends up in exactly one of them.
type BqSchema struct {
	Fields         []BqSchemaField
	SkippedColumns []SkippedColumn
}

// TranslateSchema validates every column name and maps the accepted columns to BigQuery fields.
// Columns are independent of each other; rejections are recorded, not returned as errors.
func TranslateSchema(parquetColumns []ParquetColumn) (BqSchema, error) {
	bqSchema := BqSchema{
		Fields:         []BqSchemaField{},
		SkippedColumns: []SkippedColumn{},
	}

	for _, parquetColumn := range parquetColumns {
		valid, reason := ValidateColumnName(parquetColumn.Name)
		if !valid {
			bqSchema.SkippedColumns = append(bqSchema.SkippedColumns, SkippedColumn{
				Name:   parquetColumn.Name,
				Reason: reason,
				Type:   parquetTypeString(parquetColumn.Type),
			})
			continue
		}

		bqSchema.Fields = append(bqSchema.Fields, NewBqSchemaField(parquetColumn))
	}

	if len(bqSchema.Fields) == 0 {
		return BqSchema{}, &NoValidColumnsError{SkippedColumns: bqSchema.SkippedColumns}
	}

	return bqSchema, nil
}

func (bqSchema BqSchema) ColumnTuples() []ColumnTuple {
	columnTuples := make([]ColumnTuple, len(bqSchema.Fields))
	for i, field := range bqSchema.Fields {
		columnTuples[i] = ColumnTuple{Name: field.Name, Type: field.Type.String()}
	}
	return columnTuples
}

func (bqSchema BqSchema) ColumnNames() []string {
	names := make([]string, len(bqSchema.Fields))
	for i, field := range bqSchema.Fields {
		names[i] = field.Name
	}
	return names
}

// Example:
//
//	CREATE TABLE `events` (
//	  `id` INTEGER NOT NULL,
//	  `tags` ARRAY<STRING>
//	);
func (bqSchema BqSchema) Ddl(tableName string) string {
	if tableName == "" {
		tableName = DEFAULT_DDL_TABLE_NAME
	}

	fieldDefinitions := make([]string, len(bqSchema.Fields))
	for i, field := range bqSchema.Fields {
		fieldDefinition := "  `" + field.Name + "` " + field.Type.String()
		if field.IsRequired() {
			fieldDefinition += " NOT NULL"
		}
		fieldDefinitions[i] = fieldDefinition
	}

	ddlLines := []string{
		"CREATE TABLE `" + tableName + "` (",
		strings.Join(fieldDefinitions, ",\n"),
		");",
	}
	return strings.Join(ddlLines, "\n")
}

func (bqSchema BqSchema) WriteSummary(writer io.Writer) {
	separator := strings.Repeat("=", 60)

	fmt.Fprintln(writer)
	fmt.Fprintln(writer, separator)
	fmt.Fprintln(writer, "SCHEMA GENERATION SUMMARY")
	fmt.Fprintln(writer, separator)
	fmt.Fprintf(writer, "Valid columns: %d\n", len(bqSchema.Fields))
	fmt.Fprintf(writer, "Skipped columns: %d\n", len(bqSchema.SkippedColumns))
	fmt.Fprintln(writer)

	if len(bqSchema.SkippedColumns) > 0 {
		fmt.Fprintln(writer, "Skipped columns details:")
		for _, skippedColumn := range bqSchema.SkippedColumns {
			fmt.Fprintln(writer, "   • "+skippedColumn.String())
		}
		fmt.Fprintln(writer)
	}
}

func (bqSchema BqSchema) WriteDdl(writer io.Writer, tableName string) {
	fmt.Fprintln(writer, "CREATE TABLE DDL:")
	fmt.Fprintln(writer, strings.Repeat("-", 60))
	fmt.Fprintln(writer, bqSchema.Ddl(tableName))
}

func (bqSchema BqSchema) WriteColumnTuples(writer io.Writer) {
	fmt.Fprintln(writer, "COLUMN TUPLES (name, datatype):")
	fmt.Fprintln(writer, strings.Repeat("-", 60))
	for i, columnTuple := range bqSchema.ColumnTuples() {
		fmt.Fprintf(writer, "%2d. %s\n", i+1, columnTuple.String())
	}
}

func parquetTypeString(parquetType ParquetLogicalType) string {
	if parquetType == nil {
		return OtherType{}.String()
	}
	return parquetType.String()
}
