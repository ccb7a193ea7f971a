package main

import (
	"context"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
)

type ParquetRowReader interface {
	ReadParquetRows(ctx context.Context, uri string, bqSchema BqSchema) ([][]interface{}, error)
}

// RoundTrip materializes a Parquet file's translated schema in a warehouse and queries it back.
type RoundTrip struct {
	config          *Config
	storage         Storage
	warehouse       Warehouse
	rowReader       ParquetRowReader
	schemaGenerator *SchemaGenerator
	output          io.Writer
}

func NewRoundTrip(config *Config, storage Storage, warehouse Warehouse, rowReader ParquetRowReader, output io.Writer) *RoundTrip {
	return &RoundTrip{
		config:          config,
		storage:         storage,
		warehouse:       warehouse,
		rowReader:       rowReader,
		schemaGenerator: NewSchemaGenerator(config, storage),
		output:          output,
	}
}

func (roundTrip *RoundTrip) Run(ctx context.Context, path string) (err error) {
	parquetFile, err := roundTrip.storage.StatParquetFile(path)
	if err != nil {
		return NewSourceReadError(path, err)
	}

	bqSchema, err := roundTrip.schemaGenerator.Generate(path)
	if err != nil {
		return err
	}

	bqSchema.WriteSummary(roundTrip.output)
	bqSchema.WriteDdl(roundTrip.output, roundTrip.config.Table)
	fmt.Fprintln(roundTrip.output)

	err = roundTrip.warehouse.WaitUntilReady(ctx)
	if err != nil {
		return err
	}

	err = roundTrip.warehouse.EnsureDataset(ctx)
	if err != nil {
		return err
	}

	table := roundTrip.config.Table
	if roundTrip.config.UseRegularTable {
		err = roundTrip.warehouse.CreateTable(ctx, table, bqSchema)
	} else {
		err = roundTrip.warehouse.CreateExternalTable(ctx, table, bqSchema, parquetFile)
	}
	if err != nil {
		return err
	}

	tableExists := true
	if !roundTrip.config.KeepTable {
		defer func() {
			if !tableExists {
				return
			}
			deleteErr := roundTrip.warehouse.DeleteTable(ctx, table)
			if deleteErr != nil {
				LogError(roundTrip.config, "Failed to delete table", table+":", deleteErr)
				if err == nil {
					err = deleteErr
				}
				return
			}
			LogInfo(roundTrip.config, "Deleted table", table)
		}()
	}

	if roundTrip.config.UseRegularTable {
		err = roundTrip.loadTable(ctx, table, bqSchema, parquetFile)
		if err != nil {
			return err
		}
	} else {
		err = roundTrip.replaceEmptyExternalTable(ctx, table, bqSchema, parquetFile, &tableExists)
		if err != nil {
			return err
		}
	}

	queryResult, err := roundTrip.warehouse.Query(ctx, table, roundTrip.config.QueryLimit)
	if err != nil {
		return err
	}
	WriteQueryResult(roundTrip.output, queryResult)
	fmt.Fprintln(roundTrip.output)

	tableInfo, err := roundTrip.warehouse.TableInfo(ctx, table)
	if err != nil {
		return err
	}
	WriteTableInfo(roundTrip.output, tableInfo)

	return nil
}

func (roundTrip *RoundTrip) loadTable(ctx context.Context, table string, bqSchema BqSchema, parquetFile ParquetFile) error {
	rows, err := roundTrip.rowReader.ReadParquetRows(ctx, parquetFile.Uri, bqSchema)
	if err != nil {
		return NewSourceReadError(parquetFile.Path, err)
	}

	insertedCount, err := roundTrip.warehouse.InsertRows(ctx, table, bqSchema, rows)
	if err != nil {
		return errors.Wrapf(err, "loaded %d of %d row(s)", insertedCount, len(rows))
	}

	LogInfo(roundTrip.config, "Loaded", insertedCount, "row(s) into", table)
	return nil
}

// An external table the warehouse can't read rows from is swapped for a regular table loaded with the rows
func (roundTrip *RoundTrip) replaceEmptyExternalTable(ctx context.Context, table string, bqSchema BqSchema, parquetFile ParquetFile, tableExists *bool) error {
	queryResult, err := roundTrip.warehouse.Query(ctx, table, 1)
	if err != nil {
		return err
	}
	if len(queryResult.Rows) > 0 {
		return nil
	}

	LogWarn(roundTrip.config, "External table", table, "returned no data. Trying a regular table instead...")
	err = roundTrip.warehouse.DeleteTable(ctx, table)
	if err != nil {
		return err
	}
	*tableExists = false

	err = roundTrip.warehouse.CreateTable(ctx, table, bqSchema)
	if err != nil {
		return err
	}
	*tableExists = true

	return roundTrip.loadTable(ctx, table, bqSchema, parquetFile)
}
