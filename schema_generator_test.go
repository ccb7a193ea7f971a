package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBqSchemaFromParquet(t *testing.T) {
	t.Run("Returns the DDL and column tuples of the valid columns", func(t *testing.T) {
		config := loadTestConfig()
		path := writeDefaultTestParquetFile(t)
		schemaGenerator := NewSchemaGenerator(config, NewStorage(config))

		ddl, columnTuples, err := schemaGenerator.GenerateBqSchemaFromParquet(path, "events")

		require.NoError(t, err)
		assert.Equal(t, strings.Join([]string{
			"CREATE TABLE `events` (",
			"  `id` INTEGER NOT NULL,",
			"  `name` STRING,",
			"  `score` FLOAT,",
			"  `is_active` BOOLEAN NOT NULL,",
			"  `created_at` TIMESTAMP,",
			"  `tags` ARRAY<STRING>",
			");",
		}, "\n"), ddl)
		assert.Equal(t, []ColumnTuple{
			{Name: "id", Type: "INTEGER"},
			{Name: "name", Type: "STRING"},
			{Name: "score", Type: "FLOAT"},
			{Name: "is_active", Type: "BOOLEAN"},
			{Name: "created_at", Type: "TIMESTAMP"},
			{Name: "tags", Type: "ARRAY<STRING>"},
		}, columnTuples)
	})

	t.Run("Skips columns with invalid names", func(t *testing.T) {
		config := loadTestConfig()
		path := writeDefaultTestParquetFile(t)
		schemaGenerator := NewSchemaGenerator(config, NewStorage(config))

		bqSchema, err := schemaGenerator.Generate(path)

		require.NoError(t, err)
		assert.Equal(t, TEST_BQ_SCHEMA_FIELDS, bqSchema.Fields)
		require.Len(t, bqSchema.SkippedColumns, 2)
		assert.Equal(t, "_partition_date", bqSchema.SkippedColumns[0].Name)
		assert.Equal(t, "Column name starts with restricted prefix '_PARTITION'", bqSchema.SkippedColumns[0].Reason)
		assert.Equal(t, "date32[day]", bqSchema.SkippedColumns[0].Type)
		assert.Equal(t, "1st_place", bqSchema.SkippedColumns[1].Name)
		assert.Equal(t, "Column name must start with letter or underscore", bqSchema.SkippedColumns[1].Reason)
	})

	t.Run("Uses the default table name", func(t *testing.T) {
		config := loadTestConfig()
		path := writeDefaultTestParquetFile(t)
		schemaGenerator := NewSchemaGenerator(config, NewStorage(config))

		ddl, _, err := schemaGenerator.GenerateBqSchemaFromParquet(path, "")

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(ddl, "CREATE TABLE `your_table` ("))
	})

	t.Run("Returns NoValidColumnsError when every column is skipped", func(t *testing.T) {
		config := loadTestConfig()
		path := writeTestParquetFile(t, "invalid_names.parquet", `{
			"Tag": "name=parquet_go_root, repetitiontype=REQUIRED",
			"Fields": [
				{"Tag": "name=_TABLE_SUFFIX, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"},
				{"Tag": "name=2nd, type=INT64, repetitiontype=OPTIONAL"}
			]
		}`, []string{`{"_TABLE_SUFFIX": "x", "2nd": 2}`})
		schemaGenerator := NewSchemaGenerator(config, NewStorage(config))

		ddl, columnTuples, err := schemaGenerator.GenerateBqSchemaFromParquet(path, "events")

		var noValidColumnsError *NoValidColumnsError
		require.True(t, errors.As(err, &noValidColumnsError))
		assert.Len(t, noValidColumnsError.SkippedColumns, 2)
		assert.Empty(t, ddl)
		assert.Nil(t, columnTuples)
	})

	t.Run("Returns SourceReadError for a missing file", func(t *testing.T) {
		config := loadTestConfig()
		schemaGenerator := NewSchemaGenerator(config, NewStorage(config))

		_, _, err := schemaGenerator.GenerateBqSchemaFromParquet(filepath.Join(t.TempDir(), "missing.parquet"), "events")

		var sourceReadError *SourceReadError
		assert.True(t, errors.As(err, &sourceReadError))
	})
}
