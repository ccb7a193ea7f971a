package main

import (
	"context"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

const (
	TABLE_KIND_EXTERNAL = "EXTERNAL"
	TABLE_KIND_TABLE    = "TABLE"
	TABLE_KIND_VIEW     = "VIEW"

	NULL_VALUE_STRING = "NULL"
)

type QueryResult struct {
	Columns []string
	Rows    [][]string
}

type TableInfo struct {
	Name    string
	Kind    string
	NumRows int64
	Columns []ColumnTuple
}

// Warehouse is where a translated schema is materialized and queried back.
// Table names are relative to the configured dataset.
type Warehouse interface {
	WaitUntilReady(ctx context.Context) error
	EnsureDataset(ctx context.Context) error
	CreateExternalTable(ctx context.Context, table string, bqSchema BqSchema, parquetFile ParquetFile) error
	CreateTable(ctx context.Context, table string, bqSchema BqSchema) error
	InsertRows(ctx context.Context, table string, bqSchema BqSchema, rows [][]interface{}) (insertedCount int, err error)
	Query(ctx context.Context, table string, limit int) (QueryResult, error)
	TableInfo(ctx context.Context, table string) (TableInfo, error)
	DeleteTable(ctx context.Context, table string) error
	Close()
}

func NewWarehouse(config *Config) (Warehouse, error) {
	switch config.WarehouseType {
	case WAREHOUSE_TYPE_BIGQUERY:
		return NewBigqueryWarehouse(config)
	case WAREHOUSE_TYPE_DUCKDB:
		return NewDuckdbWarehouse(config, NewDuckdb(config)), nil
	case WAREHOUSE_TYPE_POSTGRES:
		return NewPostgresWarehouse(config)
	}

	return nil, fmt.Errorf("unsupported warehouse %s", config.WarehouseType)
}

// IsOpaqueJsonType reports whether values of this type are carried as JSON text.
// Warehouses can't hold RECORD without subfields nor arrays of arrays.
func IsOpaqueJsonType(bqType BqType) bool {
	if bqType.Name == BQ_TYPE_RECORD {
		return true
	}
	if bqType.IsArray() && bqType.Element != nil {
		return bqType.Element.IsArray() || bqType.Element.Name == BQ_TYPE_RECORD
	}
	return false
}

func WriteQueryResult(writer io.Writer, queryResult QueryResult) {
	table := tablewriter.NewWriter(writer)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader(queryResult.Columns)
	table.AppendBulk(queryResult.Rows)
	table.Render()

	fmt.Fprintf(writer, "(%d row(s))\n", len(queryResult.Rows))
}

func WriteTableInfo(writer io.Writer, tableInfo TableInfo) {
	fmt.Fprintf(writer, "Table: %s (%s)\n", tableInfo.Name, tableInfo.Kind)
	fmt.Fprintf(writer, "Rows: %d\n", tableInfo.NumRows)
	fmt.Fprintf(writer, "Columns: %d\n", len(tableInfo.Columns))
	for _, column := range tableInfo.Columns {
		fmt.Fprintf(writer, "  %s: %s\n", column.Name, column.Type)
	}
}
