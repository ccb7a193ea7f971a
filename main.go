package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
)

const VERSION = "0.1.0"

const USAGE = `Usage: parquetbq [flags] <command> <parquet-file>

Commands:
  schema <parquet-file>     Print the BigQuery CREATE TABLE statement and column tuples
  roundtrip <parquet-file>  Create a table from the Parquet file in a warehouse and query it back
  version                   Print the version

Flags:`

func main() {
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), USAGE)
		flag.PrintDefaults()
	}
	flag.Parse()
	config := LoadConfig()

	if len(flag.Args()) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	command := flag.Arg(0)

	var err error
	switch command {
	case "schema":
		err = generateSchema(config, parquetFileArg(), os.Stdout)
	case "roundtrip":
		err = roundTrip(config, parquetFileArg())
	case "version":
		fmt.Println("parquetbq version:", VERSION)
	default:
		panic("Unknown command: " + command + "\n\n" + USAGE)
	}

	if err != nil {
		LogError(config, err)
		os.Exit(1)
	}
}

func parquetFileArg() string {
	if flag.NArg() < 2 {
		panic("Missing Parquet file argument\n\n" + USAGE)
	}
	return flag.Arg(1)
}

func generateSchema(config *Config, path string, output io.Writer) error {
	storage := NewStorage(config)
	schemaGenerator := NewSchemaGenerator(config, storage)

	bqSchema, err := schemaGenerator.Generate(path)
	if err != nil {
		return err
	}

	bqSchema.WriteSummary(output)
	fmt.Fprintln(output)
	bqSchema.WriteDdl(output, config.Table)
	fmt.Fprintln(output)
	bqSchema.WriteColumnTuples(output)
	return nil
}

func roundTrip(config *Config, path string) error {
	storage := NewStorage(config)

	warehouse, err := NewWarehouse(config)
	if err != nil {
		return err
	}
	defer warehouse.Close()

	var rowReader ParquetRowReader
	if duckdbWarehouse, ok := warehouse.(*WarehouseDuckdb); ok {
		rowReader = duckdbWarehouse.duckdb
	} else {
		duckdb := NewDuckdb(config)
		LogInfo(config, "DuckDB: Connected")
		defer duckdb.Close()
		rowReader = duckdb
	}

	err = NewRoundTrip(config, storage, warehouse, rowReader, os.Stdout).Run(context.Background(), path)
	if err != nil {
		return err
	}

	LogInfo(config, "Round trip completed successfully.")
	return nil
}
