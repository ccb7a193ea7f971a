package main

import (
	"context"
	"database/sql"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	_ "github.com/marcboeker/go-duckdb"
)

var S3_BOOT_QUERIES = []string{
	"INSTALL httpfs",
	"LOAD httpfs",
}

type Duckdb struct {
	db     *sql.DB
	config *Config
}

func NewDuckdb(config *Config) *Duckdb {
	ctx := context.Background()
	db, err := sql.Open("duckdb", config.Duckdb.DatabasePath)
	PanicIfError(err)

	duckdb := &Duckdb{
		db:     db,
		config: config,
	}

	switch config.StorageType {
	case STORAGE_TYPE_S3:
		for _, query := range S3_BOOT_QUERIES {
			_, err := duckdb.ExecContext(ctx, query, nil)
			PanicIfError(err)
		}

		query := "CREATE SECRET aws_s3_secret (TYPE S3, KEY_ID '$accessKeyId', SECRET '$secretAccessKey', REGION '$region', SCOPE '$s3Bucket'"
		if config.Aws.S3Endpoint != "" {
			query += ", ENDPOINT '$endpoint', URL_STYLE 'path'"
		}
		_, err = duckdb.ExecContext(ctx, query+")", map[string]string{
			"accessKeyId":     config.Aws.AccessKeyId,
			"secretAccessKey": config.Aws.SecretAccessKey,
			"region":          config.Aws.Region,
			"endpoint":        s3EndpointHost(config.Aws.S3Endpoint),
			"s3Bucket":        "s3://" + config.Aws.S3Bucket,
		})
		PanicIfError(err)

		if config.LogLevel == LOG_LEVEL_DEBUG {
			_, err = duckdb.ExecContext(ctx, "SET enable_http_logging=true", nil)
			PanicIfError(err)
		}
	}

	return duckdb
}

func (duckdb *Duckdb) ExecContext(ctx context.Context, query string, args map[string]string) (sql.Result, error) {
	LogDebug(duckdb.config, "Querying DuckDB:", query, args)
	return duckdb.db.ExecContext(ctx, replaceNamedStringArgs(query, args))
}

func (duckdb *Duckdb) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	LogDebug(duckdb.config, "Querying DuckDB:", query)
	return duckdb.db.QueryContext(ctx, query, args...)
}

func (duckdb *Duckdb) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	LogDebug(duckdb.config, "Preparing DuckDB statement:", query)
	return duckdb.db.PrepareContext(ctx, query)
}

func (duckdb *Duckdb) Close() {
	duckdb.db.Close()
}

// ReadParquetRows reads the accepted columns of a Parquet file in schema order.
// Values come back as strings, []byte for BYTES, []interface{} for arrays and JSON text for opaque values.
func (duckdb *Duckdb) ReadParquetRows(ctx context.Context, uri string, bqSchema BqSchema) ([][]interface{}, error) {
	selectExpressions := make([]string, len(bqSchema.Fields))
	for i, field := range bqSchema.Fields {
		selectExpressions[i] = duckdbRowExpression(field)
	}

	query := "SELECT " + strings.Join(selectExpressions, ", ") + " FROM read_parquet(" + QuoteStringLiteral(uri) + ")"
	rows, err := duckdb.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read rows from %s", uri)
	}
	defer rows.Close()

	var parquetRows [][]interface{}
	for rows.Next() {
		values := make([]interface{}, len(bqSchema.Fields))
		valuePointers := make([]interface{}, len(values))
		for i := range values {
			valuePointers[i] = &values[i]
		}

		err = rows.Scan(valuePointers...)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to scan row %d from %s", len(parquetRows), uri)
		}
		parquetRows = append(parquetRows, values)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read rows from %s", uri)
	}

	LogDebug(duckdb.config, "Read", len(parquetRows), "row(s) from", uri)
	return parquetRows, nil
}

func duckdbRowExpression(field BqSchemaField) string {
	column := QuoteDoubleQuoteIdentifier(field.Name)

	switch {
	case IsOpaqueJsonType(field.Type):
		return "CAST(to_json(" + column + ") AS VARCHAR)"
	case field.Type.IsArray():
		return "CAST(" + column + " AS VARCHAR[])"
	case field.Type.Name == BQ_TYPE_BYTES:
		return column
	default:
		return "CAST(" + column + " AS VARCHAR)"
	}
}

// Example: http://localhost:9000 -> localhost:9000
func s3EndpointHost(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "https://")
	return strings.TrimPrefix(endpoint, "http://")
}

func replaceNamedStringArgs(query string, args map[string]string) string {
	re := regexp.MustCompile(`['";]`) // Escape single quotes, double quotes, and semicolons from args

	for key, value := range args {
		query = strings.ReplaceAll(query, "$"+key, re.ReplaceAllString(value, ""))
	}
	return query
}
