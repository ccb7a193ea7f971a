package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestS3Config(endpoint string) *Config {
	config := loadTestConfig()
	config.StorageType = STORAGE_TYPE_S3
	config.Aws = AwsConfig{
		Region:          "us-east-1",
		S3Endpoint:      endpoint,
		S3Bucket:        "test-bucket",
		AccessKeyId:     "test-access-key-id",
		SecretAccessKey: "test-secret-access-key",
	}
	return config
}

func TestStorageS3(t *testing.T) {
	t.Run("Returns file info of an S3 object", func(t *testing.T) {
		var requestedPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestedPath = r.URL.Path
			w.Header().Set("Content-Length", "1024")
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()
		storage := NewS3Storage(loadTestS3Config(server.URL))

		parquetFile, err := storage.StatParquetFile("s3://test-bucket/data/events.parquet")

		require.NoError(t, err)
		assert.Equal(t, "/test-bucket/data/events.parquet", requestedPath)
		assert.Equal(t, ParquetFile{
			Path: "s3://test-bucket/data/events.parquet",
			Name: "events.parquet",
			Uri:  "s3://test-bucket/data/events.parquet",
			Size: 1024,
		}, parquetFile)
	})

	t.Run("Returns an error for a missing S3 object", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()
		storage := NewS3Storage(loadTestS3Config(server.URL))

		_, err := storage.StatParquetFile("data/missing.parquet")

		assert.ErrorContains(t, err, "failed to get Parquet file info")
	})

	t.Run("Accepts both URIs and bare object keys", func(t *testing.T) {
		storage := NewS3Storage(loadTestS3Config(""))

		assert.Equal(t, "data/events.parquet", storage.objectKey("s3://test-bucket/data/events.parquet"))
		assert.Equal(t, "data/events.parquet", storage.objectKey("/data/events.parquet"))
		assert.Equal(t, "data/events.parquet", storage.objectKey("data/events.parquet"))
	})
}
