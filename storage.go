package main

import (
	"github.com/xitongsys/parquet-go/source"
)

var STORAGE_TYPES = []string{STORAGE_TYPE_LOCAL, STORAGE_TYPE_S3}

type ParquetFile struct {
	Path string
	Name string
	// Location DuckDB can read_parquet() from
	Uri  string
	Size int64
}

type Storage interface {
	OpenParquetFile(path string) (fileReader source.ParquetFile, err error)
	StatParquetFile(path string) (parquetFile ParquetFile, err error)
}

func NewStorage(config *Config) Storage {
	switch config.StorageType {
	case STORAGE_TYPE_LOCAL:
		return NewLocalStorage(config)
	case STORAGE_TYPE_S3:
		return NewS3Storage(config)
	}

	return nil
}
