package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

type SchemaGenerator struct {
	config  *Config
	storage Storage
}

func NewSchemaGenerator(config *Config, storage Storage) *SchemaGenerator {
	return &SchemaGenerator{config: config, storage: storage}
}

// Generate reads the Parquet schema and translates it. It keeps no state between calls.
func (generator *SchemaGenerator) Generate(path string) (BqSchema, error) {
	LogInfo(generator.config, "Reading parquet file:", path)

	parquetColumns, err := ReadParquetSchema(generator.storage, path)
	if err != nil {
		return BqSchema{}, err
	}
	LogInfo(generator.config, "Processing", len(parquetColumns), "columns...")

	bqSchema, err := TranslateSchema(parquetColumns)
	if err != nil {
		var noValidColumnsError *NoValidColumnsError
		if errors.As(err, &noValidColumnsError) {
			generator.logSkippedColumns(noValidColumnsError.SkippedColumns)
		}
		return BqSchema{}, errors.Wrapf(err, "Error generating schema for %s", path)
	}

	generator.logColumns(parquetColumns, bqSchema)
	return bqSchema, nil
}

// GenerateBqSchemaFromParquet returns the CREATE TABLE statement and the (name, type) tuples for a Parquet file.
func (generator *SchemaGenerator) GenerateBqSchemaFromParquet(path string, tableName string) (ddl string, columnTuples []ColumnTuple, err error) {
	bqSchema, err := generator.Generate(path)
	if err != nil {
		return "", nil, err
	}

	return bqSchema.Ddl(tableName), bqSchema.ColumnTuples(), nil
}

// Both sequences of the schema keep the source order, so they can be merged back by name
func (generator *SchemaGenerator) logColumns(parquetColumns []ParquetColumn, bqSchema BqSchema) {
	fieldIndex, skippedIndex := 0, 0

	for _, parquetColumn := range parquetColumns {
		if skippedIndex < len(bqSchema.SkippedColumns) && bqSchema.SkippedColumns[skippedIndex].Name == parquetColumn.Name {
			generator.logSkippedColumns(bqSchema.SkippedColumns[skippedIndex : skippedIndex+1])
			skippedIndex++
		} else if fieldIndex < len(bqSchema.Fields) {
			field := bqSchema.Fields[fieldIndex]
			LogInfo(generator.config, fmt.Sprintf("OK %-30s -> %-15s (%s)", field.Name, field.Type.String(), field.Mode))
			fieldIndex++
		}
	}
}

func (generator *SchemaGenerator) logSkippedColumns(skippedColumns []SkippedColumn) {
	for _, skippedColumn := range skippedColumns {
		LogWarn(generator.config, "SKIPPING column '"+skippedColumn.Name+"':", skippedColumn.Reason)
	}
}
