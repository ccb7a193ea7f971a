package main

import (
	"flag"
	"os"
	"slices"
	"strings"
	"time"
)

const (
	ENV_LOG_LEVEL         = "PARQUETBQ_LOG_LEVEL"
	ENV_STORAGE_TYPE      = "PARQUETBQ_STORAGE_TYPE"
	ENV_WAREHOUSE_TYPE    = "PARQUETBQ_WAREHOUSE"
	ENV_TABLE             = "PARQUETBQ_TABLE"
	ENV_QUERY_LIMIT       = "PARQUETBQ_QUERY_LIMIT"
	ENV_USE_REGULAR_TABLE = "PARQUETBQ_USE_REGULAR_TABLE"
	ENV_KEEP_TABLE        = "PARQUETBQ_KEEP_TABLE"

	ENV_BQ_EMULATOR_HOST = "BIGQUERY_EMULATOR_HOST"
	ENV_BQ_EMULATOR_PORT = "BIGQUERY_EMULATOR_PORT"
	ENV_BQ_PROJECT_ID    = "BIGQUERY_PROJECT_ID"
	ENV_BQ_DATASET_ID    = "BIGQUERY_DATASET_ID"
	ENV_BQ_LOCATION      = "BIGQUERY_LOCATION"
	ENV_BQ_FILE_SERVER   = "BIGQUERY_FILE_SERVER_URL"
	ENV_BQ_READY_TIMEOUT = "BIGQUERY_READY_TIMEOUT"
	ENV_DUCKDB_DATABASE  = "DUCKDB_DATABASE_PATH"
	ENV_PG_DATABASE_URL  = "PG_DATABASE_URL"

	ENV_AWS_REGION            = "AWS_REGION"
	ENV_AWS_S3_ENDPOINT       = "AWS_S3_ENDPOINT"
	ENV_AWS_S3_BUCKET         = "AWS_S3_BUCKET"
	ENV_AWS_ACCESS_KEY_ID     = "AWS_ACCESS_KEY_ID"
	ENV_AWS_SECRET_ACCESS_KEY = "AWS_SECRET_ACCESS_KEY"

	DEFAULT_LOG_LEVEL        = "INFO"
	DEFAULT_STORAGE_TYPE     = "LOCAL"
	DEFAULT_WAREHOUSE_TYPE   = "BIGQUERY"
	DEFAULT_TABLE            = "external_data"
	DEFAULT_QUERY_LIMIT      = "10"
	DEFAULT_BQ_EMULATOR_HOST = "localhost"
	DEFAULT_BQ_EMULATOR_PORT = "9050"
	DEFAULT_BQ_PROJECT_ID    = "test-project"
	DEFAULT_BQ_DATASET_ID    = "test_dataset"
	DEFAULT_BQ_LOCATION      = "US"
	DEFAULT_BQ_FILE_SERVER   = "http://localhost:8080/data"
	DEFAULT_BQ_READY_TIMEOUT = "2m"

	STORAGE_TYPE_LOCAL = "LOCAL"
	STORAGE_TYPE_S3    = "S3"

	WAREHOUSE_TYPE_BIGQUERY = "BIGQUERY"
	WAREHOUSE_TYPE_DUCKDB   = "DUCKDB"
	WAREHOUSE_TYPE_POSTGRES = "POSTGRES"
)

var WAREHOUSE_TYPES = []string{WAREHOUSE_TYPE_BIGQUERY, WAREHOUSE_TYPE_DUCKDB, WAREHOUSE_TYPE_POSTGRES}

type AwsConfig struct {
	Region          string
	S3Endpoint      string // optional
	S3Bucket        string
	AccessKeyId     string
	SecretAccessKey string
}

type BigqueryConfig struct {
	EmulatorHost  string
	EmulatorPort  string
	ProjectId     string
	DatasetId     string
	Location      string
	FileServerUrl string
	ReadyTimeout  time.Duration
}

type DuckdbConfig struct {
	DatabasePath string // optional, in-memory by default
}

type PgConfig struct {
	DatabaseUrl string
}

type Config struct {
	LogLevel        string
	StorageType     string
	WarehouseType   string
	Table           string
	QueryLimit      int
	UseRegularTable bool
	KeepTable       bool
	Bigquery        BigqueryConfig
	Duckdb          DuckdbConfig
	Pg              PgConfig
	Aws             AwsConfig
}

type configParseValues struct {
	queryLimit      string
	useRegularTable string
	keepTable       string
	bqReadyTimeout  string
}

var _config Config
var _configParseValues configParseValues

func init() {
	registerFlags()
}

func registerFlags() {
	flag.StringVar(&_config.LogLevel, "log-level", os.Getenv(ENV_LOG_LEVEL), "Log level: \"ERROR\", \"WARN\", \"INFO\", \"DEBUG\". Default: \""+DEFAULT_LOG_LEVEL+"\"")
	flag.StringVar(&_config.StorageType, "storage-type", os.Getenv(ENV_STORAGE_TYPE), "Where Parquet files are read from: \"LOCAL\", \"S3\". Default: \""+DEFAULT_STORAGE_TYPE+"\"")
	flag.StringVar(&_config.WarehouseType, "warehouse", os.Getenv(ENV_WAREHOUSE_TYPE), "Warehouse for the round trip: \"BIGQUERY\", \"DUCKDB\", \"POSTGRES\". Default: \""+DEFAULT_WAREHOUSE_TYPE+"\"")
	flag.StringVar(&_config.Table, "table", os.Getenv(ENV_TABLE), "Name of the table to create. Default: \""+DEFAULT_TABLE+"\"")
	flag.StringVar(&_configParseValues.queryLimit, "limit", os.Getenv(ENV_QUERY_LIMIT), "Number of rows to query. Default: "+DEFAULT_QUERY_LIMIT)
	flag.StringVar(&_configParseValues.useRegularTable, "use-regular-table", os.Getenv(ENV_USE_REGULAR_TABLE), "(Optional) Create a regular table and load rows instead of an external table: \"true\", \"false\"")
	flag.StringVar(&_configParseValues.keepTable, "keep-table", os.Getenv(ENV_KEEP_TABLE), "(Optional) Keep the table after the round trip: \"true\", \"false\"")
	flag.StringVar(&_config.Bigquery.EmulatorHost, "bq-emulator-host", os.Getenv(ENV_BQ_EMULATOR_HOST), "BigQuery emulator host. Default: \""+DEFAULT_BQ_EMULATOR_HOST+"\"")
	flag.StringVar(&_config.Bigquery.EmulatorPort, "bq-emulator-port", os.Getenv(ENV_BQ_EMULATOR_PORT), "BigQuery emulator port. Default: \""+DEFAULT_BQ_EMULATOR_PORT+"\"")
	flag.StringVar(&_config.Bigquery.ProjectId, "bq-project", os.Getenv(ENV_BQ_PROJECT_ID), "BigQuery project ID. Default: \""+DEFAULT_BQ_PROJECT_ID+"\"")
	flag.StringVar(&_config.Bigquery.DatasetId, "bq-dataset", os.Getenv(ENV_BQ_DATASET_ID), "BigQuery dataset ID. Default: \""+DEFAULT_BQ_DATASET_ID+"\"")
	flag.StringVar(&_config.Bigquery.Location, "bq-location", os.Getenv(ENV_BQ_LOCATION), "BigQuery query location. Default: \""+DEFAULT_BQ_LOCATION+"\"")
	flag.StringVar(&_config.Bigquery.FileServerUrl, "bq-file-server-url", os.Getenv(ENV_BQ_FILE_SERVER), "Base URL the emulator fetches external table files from. Default: \""+DEFAULT_BQ_FILE_SERVER+"\"")
	flag.StringVar(&_configParseValues.bqReadyTimeout, "bq-ready-timeout", os.Getenv(ENV_BQ_READY_TIMEOUT), "How long to wait for the emulator to be ready. Default: \""+DEFAULT_BQ_READY_TIMEOUT+"\"")
	flag.StringVar(&_config.Duckdb.DatabasePath, "duckdb-database", os.Getenv(ENV_DUCKDB_DATABASE), "(Optional) DuckDB database file for the DUCKDB warehouse")
	flag.StringVar(&_config.Pg.DatabaseUrl, "pg-database-url", os.Getenv(ENV_PG_DATABASE_URL), "PostgreSQL database URL for the POSTGRES warehouse")
	flag.StringVar(&_config.Aws.Region, "aws-region", os.Getenv(ENV_AWS_REGION), "AWS region")
	flag.StringVar(&_config.Aws.S3Endpoint, "aws-s3-endpoint", os.Getenv(ENV_AWS_S3_ENDPOINT), "(Optional) Custom S3 endpoint")
	flag.StringVar(&_config.Aws.S3Bucket, "aws-s3-bucket", os.Getenv(ENV_AWS_S3_BUCKET), "AWS S3 bucket name")
	flag.StringVar(&_config.Aws.AccessKeyId, "aws-access-key-id", os.Getenv(ENV_AWS_ACCESS_KEY_ID), "AWS access key ID")
	flag.StringVar(&_config.Aws.SecretAccessKey, "aws-secret-access-key", os.Getenv(ENV_AWS_SECRET_ACCESS_KEY), "AWS secret access key")
}

func parseFlags() {
	flag.Parse()

	if _config.LogLevel == "" {
		_config.LogLevel = DEFAULT_LOG_LEVEL
	} else if !slices.Contains(LOG_LEVELS, _config.LogLevel) {
		panic("Invalid log level " + _config.LogLevel + ". Must be one of " + strings.Join(LOG_LEVELS, ", "))
	}
	if _config.StorageType == "" {
		_config.StorageType = DEFAULT_STORAGE_TYPE
	} else if !slices.Contains(STORAGE_TYPES, _config.StorageType) {
		panic("Invalid storage type " + _config.StorageType + ". Must be one of " + strings.Join(STORAGE_TYPES, ", "))
	}
	if _config.StorageType == STORAGE_TYPE_S3 {
		if _config.Aws.Region == "" {
			panic("AWS region is required")
		}
		if _config.Aws.S3Bucket == "" {
			panic("AWS S3 bucket name is required")
		}
		if _config.Aws.AccessKeyId == "" {
			panic("AWS access key ID is required")
		}
		if _config.Aws.SecretAccessKey == "" {
			panic("AWS secret access key is required")
		}
	}
	if _config.WarehouseType == "" {
		_config.WarehouseType = DEFAULT_WAREHOUSE_TYPE
	} else if !slices.Contains(WAREHOUSE_TYPES, _config.WarehouseType) {
		panic("Invalid warehouse " + _config.WarehouseType + ". Must be one of " + strings.Join(WAREHOUSE_TYPES, ", "))
	}
	if _config.WarehouseType == WAREHOUSE_TYPE_POSTGRES && _config.Pg.DatabaseUrl == "" {
		panic("PostgreSQL database URL is required for the " + WAREHOUSE_TYPE_POSTGRES + " warehouse")
	}
	if _config.Table == "" {
		_config.Table = DEFAULT_TABLE
	}
	if _configParseValues.queryLimit == "" {
		_configParseValues.queryLimit = DEFAULT_QUERY_LIMIT
	}
	queryLimit, err := StringToInt(_configParseValues.queryLimit)
	if err != nil || queryLimit < 0 {
		panic("Invalid query limit " + _configParseValues.queryLimit + ". Must be a non-negative integer")
	}
	_config.QueryLimit = queryLimit
	_config.UseRegularTable = parseBoolFlag("use-regular-table", _configParseValues.useRegularTable)
	_config.KeepTable = parseBoolFlag("keep-table", _configParseValues.keepTable)
	if _config.Bigquery.EmulatorHost == "" {
		_config.Bigquery.EmulatorHost = DEFAULT_BQ_EMULATOR_HOST
	}
	if _config.Bigquery.EmulatorPort == "" {
		_config.Bigquery.EmulatorPort = DEFAULT_BQ_EMULATOR_PORT
	}
	if _config.Bigquery.ProjectId == "" {
		_config.Bigquery.ProjectId = DEFAULT_BQ_PROJECT_ID
	}
	if _config.Bigquery.DatasetId == "" {
		_config.Bigquery.DatasetId = DEFAULT_BQ_DATASET_ID
	}
	if _config.Bigquery.Location == "" {
		_config.Bigquery.Location = DEFAULT_BQ_LOCATION
	}
	if _config.Bigquery.FileServerUrl == "" {
		_config.Bigquery.FileServerUrl = DEFAULT_BQ_FILE_SERVER
	}
	_config.Bigquery.FileServerUrl = strings.TrimRight(_config.Bigquery.FileServerUrl, "/")
	if _configParseValues.bqReadyTimeout == "" {
		_configParseValues.bqReadyTimeout = DEFAULT_BQ_READY_TIMEOUT
	}
	readyTimeout, err := time.ParseDuration(_configParseValues.bqReadyTimeout)
	if err != nil {
		panic("Invalid BigQuery ready timeout " + _configParseValues.bqReadyTimeout + ". Valid units: \"ms\", \"s\", \"m\", \"h\"")
	}
	_config.Bigquery.ReadyTimeout = readyTimeout

	_configParseValues = configParseValues{}
}

func parseBoolFlag(name string, value string) bool {
	switch strings.ToLower(value) {
	case "", "false", "0", "no":
		return false
	case "true", "1", "yes":
		return true
	}

	panic("Invalid value " + value + " for --" + name + ". Must be \"true\" or \"false\"")
}

func LoadConfig(reRegisterFlags ...bool) *Config {
	if reRegisterFlags != nil && reRegisterFlags[0] {
		flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)
		_config = Config{}
		registerFlags()
	}
	parseFlags()
	return &_config
}
