package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"
)

const TEST_PARQUET_SCHEMA = `{
	"Tag": "name=parquet_go_root, repetitiontype=REQUIRED",
	"Fields": [
		{"Tag": "name=id, type=INT64, repetitiontype=REQUIRED"},
		{"Tag": "name=name, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"},
		{"Tag": "name=score, type=DOUBLE, repetitiontype=OPTIONAL"},
		{"Tag": "name=is_active, type=BOOLEAN, repetitiontype=REQUIRED"},
		{"Tag": "name=created_at, type=INT64, convertedtype=TIMESTAMP_MILLIS, repetitiontype=OPTIONAL"},
		{"Tag": "name=tags, type=LIST, repetitiontype=OPTIONAL", "Fields": [
			{"Tag": "name=element, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"}
		]},
		{"Tag": "name=_partition_date, type=INT32, convertedtype=DATE, repetitiontype=OPTIONAL"},
		{"Tag": "name=1st_place, type=INT32, repetitiontype=OPTIONAL"}
	]
}`

var TEST_PARQUET_ROWS = []string{
	`{"id": 1, "name": "Alice", "score": 9.5, "is_active": true, "created_at": 1700000000000, "tags": ["a", "b"], "_partition_date": 19700, "1st_place": 3}`,
	`{"id": 2, "is_active": false}`,
}

var TEST_BQ_SCHEMA_FIELDS = []BqSchemaField{
	{Name: "id", Type: BqType{Name: BQ_TYPE_INTEGER}, Mode: BQ_MODE_REQUIRED},
	{Name: "name", Type: BqType{Name: BQ_TYPE_STRING}, Mode: BQ_MODE_NULLABLE},
	{Name: "score", Type: BqType{Name: BQ_TYPE_FLOAT}, Mode: BQ_MODE_NULLABLE},
	{Name: "is_active", Type: BqType{Name: BQ_TYPE_BOOLEAN}, Mode: BQ_MODE_REQUIRED},
	{Name: "created_at", Type: BqType{Name: BQ_TYPE_TIMESTAMP}, Mode: BQ_MODE_NULLABLE},
	{Name: "tags", Type: NewBqArrayType(BqType{Name: BQ_TYPE_STRING}), Mode: BQ_MODE_NULLABLE},
}

func loadTestConfig() *Config {
	setTestArgs([]string{})

	config := LoadConfig(true)
	config.StorageType = STORAGE_TYPE_LOCAL
	config.LogLevel = LOG_LEVEL_ERROR
	config.Bigquery.DatasetId = "test_dataset"

	return config
}

func setTestArgs(args []string) {
	os.Args = append([]string{"cmd"}, args...)
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	registerFlags()
	flag.Parse()
}

func writeTestParquetFile(t *testing.T, fileName string, jsonSchema string, jsonRows []string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), fileName)
	fileWriter, err := local.NewLocalFileWriter(path)
	require.NoError(t, err)

	parquetWriter, err := writer.NewJSONWriter(jsonSchema, fileWriter, 1)
	require.NoError(t, err)

	for _, jsonRow := range jsonRows {
		require.NoError(t, parquetWriter.Write(jsonRow))
	}
	require.NoError(t, parquetWriter.WriteStop())
	require.NoError(t, fileWriter.Close())

	return path
}

func writeDefaultTestParquetFile(t *testing.T) string {
	return writeTestParquetFile(t, "test_data.parquet", TEST_PARQUET_SCHEMA, TEST_PARQUET_ROWS)
}
