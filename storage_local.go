package main

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
)

type StorageLocal struct {
	config *Config
}

func NewLocalStorage(config *Config) *StorageLocal {
	return &StorageLocal{config: config}
}

func (storage *StorageLocal) OpenParquetFile(path string) (source.ParquetFile, error) {
	fileReader, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Parquet file for reading")
	}

	LogDebug(storage.config, "Opened local Parquet file:", path)
	return fileReader, nil
}

func (storage *StorageLocal) StatParquetFile(path string) (ParquetFile, error) {
	absolutePath, err := filepath.Abs(path)
	if err != nil {
		return ParquetFile{}, errors.Wrapf(err, "failed to resolve path %s", path)
	}

	fileInfo, err := os.Stat(absolutePath)
	if err != nil {
		return ParquetFile{}, errors.Wrap(err, "failed to get Parquet file info")
	}
	if fileInfo.IsDir() {
		return ParquetFile{}, errors.Newf("%s is a directory", absolutePath)
	}

	return ParquetFile{
		Path: path,
		Name: filepath.Base(absolutePath),
		Uri:  absolutePath,
		Size: fileInfo.Size(),
	}, nil
}
