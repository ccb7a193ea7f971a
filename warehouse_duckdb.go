package main

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"
)

var DUCKDB_TYPE_BY_BQ_TYPE = map[string]string{
	BQ_TYPE_INTEGER:   "BIGINT",
	BQ_TYPE_FLOAT:     "DOUBLE",
	BQ_TYPE_BOOLEAN:   "BOOLEAN",
	BQ_TYPE_STRING:    "VARCHAR",
	BQ_TYPE_BYTES:     "BLOB",
	BQ_TYPE_DATE:      "DATE",
	BQ_TYPE_TIME:      "TIME",
	BQ_TYPE_TIMESTAMP: "TIMESTAMPTZ",
}

// A dataset is a DuckDB schema. External tables are views over read_parquet().
type WarehouseDuckdb struct {
	config *Config
	duckdb *Duckdb
}

func NewDuckdbWarehouse(config *Config, duckdb *Duckdb) *WarehouseDuckdb {
	return &WarehouseDuckdb{config: config, duckdb: duckdb}
}

func (warehouse *WarehouseDuckdb) WaitUntilReady(ctx context.Context) error {
	return warehouse.duckdb.db.PingContext(ctx)
}

func (warehouse *WarehouseDuckdb) EnsureDataset(ctx context.Context) error {
	_, err := warehouse.duckdb.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+QuoteDoubleQuoteIdentifier(warehouse.config.Bigquery.DatasetId), nil)
	if err != nil {
		return errors.Wrapf(err, "failed to create schema %s", warehouse.config.Bigquery.DatasetId)
	}
	return nil
}

func (warehouse *WarehouseDuckdb) CreateExternalTable(ctx context.Context, table string, bqSchema BqSchema, parquetFile ParquetFile) error {
	columns := bqSchema.ColumnNames()
	for i, column := range columns {
		columns[i] = QuoteDoubleQuoteIdentifier(column)
	}

	query := "CREATE VIEW " + warehouse.datasetTable(table).QuotedString() + " AS SELECT " + strings.Join(columns, ", ") +
		" FROM read_parquet(" + QuoteStringLiteral(parquetFile.Uri) + ")"
	_, err := warehouse.duckdb.db.ExecContext(ctx, query)
	if err != nil {
		return errors.Wrapf(err, "failed to create view %s", table)
	}

	LogInfo(warehouse.config, "DuckDB: Created view", warehouse.datasetTable(table).QuotedString(), "over", parquetFile.Uri)
	return nil
}

func (warehouse *WarehouseDuckdb) CreateTable(ctx context.Context, table string, bqSchema BqSchema) error {
	columnDefinitions := make([]string, len(bqSchema.Fields))
	for i, field := range bqSchema.Fields {
		columnDefinitions[i] = QuoteDoubleQuoteIdentifier(field.Name) + " " + duckdbColumnType(field.Type)
		if field.IsRequired() {
			columnDefinitions[i] += " NOT NULL"
		}
	}

	query := "CREATE TABLE " + warehouse.datasetTable(table).QuotedString() + " (" + strings.Join(columnDefinitions, ", ") + ")"
	_, err := warehouse.duckdb.db.ExecContext(ctx, query)
	if err != nil {
		return errors.Wrapf(err, "failed to create table %s", table)
	}

	LogInfo(warehouse.config, "DuckDB: Created table", warehouse.datasetTable(table).QuotedString())
	return nil
}

func (warehouse *WarehouseDuckdb) InsertRows(ctx context.Context, table string, bqSchema BqSchema, rows [][]interface{}) (int, error) {
	placeholders := make([]string, len(bqSchema.Fields))
	for i, field := range bqSchema.Fields {
		placeholders[i] = "CAST(? AS " + duckdbColumnType(field.Type) + ")"
	}

	statement, err := warehouse.duckdb.PrepareContext(ctx, "INSERT INTO "+warehouse.datasetTable(table).QuotedString()+" VALUES ("+strings.Join(placeholders, ", ")+")")
	if err != nil {
		return 0, errors.Wrapf(err, "failed to prepare insert into %s", table)
	}
	defer statement.Close()

	for rowIndex, row := range rows {
		values := make([]interface{}, len(row))
		for i, value := range row {
			if listValue, ok := value.([]interface{}); ok {
				values[i] = duckdbListLiteral(listValue)
			} else {
				values[i] = value
			}
		}

		_, err = statement.ExecContext(ctx, values...)
		if err != nil {
			return rowIndex, errors.Wrapf(err, "failed to insert row %d into %s", rowIndex, table)
		}
	}

	return len(rows), nil
}

func (warehouse *WarehouseDuckdb) Query(ctx context.Context, table string, limit int) (QueryResult, error) {
	rows, err := warehouse.duckdb.QueryContext(ctx, "SELECT * FROM "+warehouse.datasetTable(table).QuotedString()+" LIMIT "+IntToString(limit))
	if err != nil {
		return QueryResult{}, errors.Wrapf(err, "failed to query %s", table)
	}
	defer rows.Close()

	return scanQueryResult(rows)
}

func (warehouse *WarehouseDuckdb) TableInfo(ctx context.Context, table string) (TableInfo, error) {
	tableInfo := TableInfo{Name: warehouse.datasetTable(table).String()}

	kind, err := warehouse.tableKind(ctx, table)
	if err != nil {
		return TableInfo{}, err
	}
	tableInfo.Kind = kind

	err = warehouse.duckdb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+warehouse.datasetTable(table).QuotedString()).Scan(&tableInfo.NumRows)
	if err != nil {
		return TableInfo{}, errors.Wrapf(err, "failed to count rows of %s", table)
	}

	rows, err := warehouse.duckdb.QueryContext(
		ctx,
		"SELECT column_name, data_type FROM information_schema.columns WHERE table_schema = ? AND table_name = ? ORDER BY ordinal_position",
		warehouse.config.Bigquery.DatasetId,
		table,
	)
	if err != nil {
		return TableInfo{}, errors.Wrapf(err, "failed to list columns of %s", table)
	}
	defer rows.Close()

	for rows.Next() {
		var columnTuple ColumnTuple
		err = rows.Scan(&columnTuple.Name, &columnTuple.Type)
		if err != nil {
			return TableInfo{}, errors.Wrapf(err, "failed to scan column of %s", table)
		}
		tableInfo.Columns = append(tableInfo.Columns, columnTuple)
	}

	return tableInfo, rows.Err()
}

func (warehouse *WarehouseDuckdb) DeleteTable(ctx context.Context, table string) error {
	kind, err := warehouse.tableKind(ctx, table)
	if err != nil {
		return err
	}

	query := "DROP TABLE " + warehouse.datasetTable(table).QuotedString()
	if kind == TABLE_KIND_VIEW {
		query = "DROP VIEW " + warehouse.datasetTable(table).QuotedString()
	}

	_, err = warehouse.duckdb.db.ExecContext(ctx, query)
	if err != nil {
		return errors.Wrapf(err, "failed to delete %s", table)
	}
	return nil
}

func (warehouse *WarehouseDuckdb) Close() {
	warehouse.duckdb.Close()
}

func (warehouse *WarehouseDuckdb) tableKind(ctx context.Context, table string) (string, error) {
	var tableType string
	err := warehouse.duckdb.db.QueryRowContext(
		ctx,
		"SELECT table_type FROM information_schema.tables WHERE table_schema = ? AND table_name = ?",
		warehouse.config.Bigquery.DatasetId,
		table,
	).Scan(&tableType)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.Newf("table %s not found", warehouse.datasetTable(table))
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to look up %s", table)
	}

	if tableType == "VIEW" {
		return TABLE_KIND_VIEW, nil
	}
	return TABLE_KIND_TABLE, nil
}

func (warehouse *WarehouseDuckdb) datasetTable(table string) DatasetTable {
	return DatasetTable{Dataset: warehouse.config.Bigquery.DatasetId, Table: table}
}

func duckdbColumnType(bqType BqType) string {
	if IsOpaqueJsonType(bqType) {
		return "VARCHAR"
	}
	if bqType.IsArray() {
		return duckdbColumnType(*bqType.Element) + "[]"
	}
	if duckdbType, ok := DUCKDB_TYPE_BY_BQ_TYPE[bqType.Name]; ok {
		return duckdbType
	}
	return "VARCHAR"
}

// Example: [a, NULL, it's] -> ['a', NULL, 'it''s']
func duckdbListLiteral(values []interface{}) string {
	elements := make([]string, len(values))
	for i, value := range values {
		if stringValue, ok := ValueToString(value).(string); ok {
			elements[i] = QuoteStringLiteral(stringValue)
		} else {
			elements[i] = "NULL"
		}
	}
	return "[" + strings.Join(elements, ", ") + "]"
}

func scanQueryResult(rows *sql.Rows) (QueryResult, error) {
	columns, err := rows.Columns()
	if err != nil {
		return QueryResult{}, errors.Wrap(err, "failed to read result columns")
	}

	queryResult := QueryResult{Columns: columns}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePointers := make([]interface{}, len(values))
		for i := range values {
			valuePointers[i] = &values[i]
		}

		err = rows.Scan(valuePointers...)
		if err != nil {
			return QueryResult{}, errors.Wrap(err, "failed to scan result row")
		}

		row := make([]string, len(values))
		for i, value := range values {
			row[i] = QueryValueString(value)
		}
		queryResult.Rows = append(queryResult.Rows, row)
	}

	return queryResult, rows.Err()
}
