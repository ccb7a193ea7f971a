package main

import (
	"context"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
	"github.com/xitongsys/parquet-go-source/s3v2"
	"github.com/xitongsys/parquet-go/source"
)

type StorageS3 struct {
	s3Client *s3.Client
	config   *Config
}

func NewS3Storage(config *Config) *StorageS3 {
	awsCredentials := credentials.NewStaticCredentialsProvider(
		config.Aws.AccessKeyId,
		config.Aws.SecretAccessKey,
		"",
	)

	var logMode aws.ClientLogMode
	if config.LogLevel == LOG_LEVEL_DEBUG {
		logMode = aws.LogRetries
	}

	loadedAwsConfig, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithRegion(config.Aws.Region),
		awsConfig.WithCredentialsProvider(awsCredentials),
		awsConfig.WithClientLogMode(logMode),
	)
	PanicIfError(err)

	s3Client := s3.NewFromConfig(loadedAwsConfig, func(options *s3.Options) {
		if config.Aws.S3Endpoint != "" {
			options.BaseEndpoint = aws.String(config.Aws.S3Endpoint)
			options.UsePathStyle = true
		}
	})

	return &StorageS3{s3Client: s3Client, config: config}
}

func (storage *StorageS3) OpenParquetFile(filePath string) (source.ParquetFile, error) {
	ctx := context.Background()
	fileKey := storage.objectKey(filePath)

	fileReader, err := s3v2.NewS3FileReaderWithClient(ctx, storage.s3Client, storage.config.Aws.S3Bucket, fileKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Parquet file for reading")
	}

	LogDebug(storage.config, "Opened S3 Parquet file:", storage.fullBucketPath()+fileKey)
	return fileReader, nil
}

func (storage *StorageS3) StatParquetFile(filePath string) (ParquetFile, error) {
	fileKey := storage.objectKey(filePath)

	headObjectResponse, err := storage.s3Client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(storage.config.Aws.S3Bucket),
		Key:    aws.String(fileKey),
	})
	if err != nil {
		return ParquetFile{}, errors.Wrap(err, "failed to get Parquet file info")
	}

	var fileSize int64
	if headObjectResponse.ContentLength != nil {
		fileSize = *headObjectResponse.ContentLength
	}

	return ParquetFile{
		Path: filePath,
		Name: path.Base(fileKey),
		Uri:  storage.fullBucketPath() + fileKey,
		Size: fileSize,
	}, nil
}

// Accepts both "s3://bucket/key" and a bare "key"
func (storage *StorageS3) objectKey(filePath string) string {
	return strings.TrimPrefix(strings.TrimPrefix(filePath, storage.fullBucketPath()), "/")
}

func (storage *StorageS3) fullBucketPath() string {
	return "s3://" + storage.config.Aws.S3Bucket + "/"
}
