package main

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"google.golang.org/api/bigquery/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	BQ_INSERT_BATCH_SIZE       = 500
	BQ_READY_POLL_INTERVAL     = 2 * time.Second
	BQ_QUERY_POLL_INTERVAL     = 500 * time.Millisecond
	BQ_QUERY_TIMEOUT_MS        = 30000
	BQ_SOURCE_FORMAT_PARQUET   = "PARQUET"
	BQ_TABLE_TYPE_EXTERNAL     = "EXTERNAL"
	BQ_API_BASE_PATH_SUFFIX    = "/bigquery/v2/"
	BQ_RESULT_CELL_VALUE_KEY   = "v"
	BQ_RESULT_RECORD_FIELD_KEY = "f"
)

// Talks to the BigQuery REST API, usually served by an emulator without authentication.
// External tables read the Parquet file from a file server the emulator can reach.
type WarehouseBigquery struct {
	config     *Config
	service    *bigquery.Service
	httpClient *http.Client
}

func NewBigqueryWarehouse(config *Config) (*WarehouseBigquery, error) {
	httpClient := &http.Client{Timeout: time.Minute}

	service, err := bigquery.NewService(
		context.Background(),
		option.WithEndpoint(BigqueryEndpoint(config)),
		option.WithoutAuthentication(),
		option.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create BigQuery client")
	}

	return &WarehouseBigquery{config: config, service: service, httpClient: httpClient}, nil
}

func BigqueryEndpoint(config *Config) string {
	return "http://" + config.Bigquery.EmulatorHost + ":" + config.Bigquery.EmulatorPort + BQ_API_BASE_PATH_SUFFIX
}

func (warehouse *WarehouseBigquery) WaitUntilReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, warehouse.config.Bigquery.ReadyTimeout)
	defer cancel()

	LogInfo(warehouse.config, "BigQuery: Waiting for", BigqueryEndpoint(warehouse.config), "...")
	for {
		err := warehouse.checkReady(ctx)
		if err == nil {
			LogInfo(warehouse.config, "BigQuery: Ready")
			return nil
		}
		LogDebug(warehouse.config, "BigQuery: Not ready yet:", err)

		select {
		case <-ctx.Done():
			return errors.Wrapf(err, "BigQuery is not ready after %s", warehouse.config.Bigquery.ReadyTimeout)
		case <-time.After(BQ_READY_POLL_INTERVAL):
		}
	}
}

// External tables also need the file server the emulator reads Parquet files from
func (warehouse *WarehouseBigquery) checkReady(ctx context.Context) error {
	_, err := warehouse.service.Projects.List().Context(ctx).Do()
	if err != nil {
		return err
	}
	if warehouse.config.UseRegularTable {
		return nil
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, fileServerRootUrl(warehouse.config.Bigquery.FileServerUrl), nil)
	if err != nil {
		return errors.Wrap(err, "failed to build file server request")
	}
	response, err := warehouse.httpClient.Do(request)
	if err != nil {
		return errors.Wrap(err, "file server is not reachable")
	}
	response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return errors.Newf("file server returned status %d", response.StatusCode)
	}
	return nil
}

func (warehouse *WarehouseBigquery) EnsureDataset(ctx context.Context) error {
	projectId, datasetId := warehouse.config.Bigquery.ProjectId, warehouse.config.Bigquery.DatasetId

	_, err := warehouse.service.Datasets.Get(projectId, datasetId).Context(ctx).Do()
	if err == nil {
		LogDebug(warehouse.config, "BigQuery: Dataset", datasetId, "already exists")
		return nil
	}
	if !isGoogleApiError(err, http.StatusNotFound) {
		return errors.Wrapf(err, "failed to get dataset %s", datasetId)
	}

	dataset := &bigquery.Dataset{
		DatasetReference: &bigquery.DatasetReference{ProjectId: projectId, DatasetId: datasetId},
		Location:         warehouse.config.Bigquery.Location,
	}
	_, err = warehouse.service.Datasets.Insert(projectId, dataset).Context(ctx).Do()
	if err != nil && !isGoogleApiError(err, http.StatusConflict) {
		return errors.Wrapf(err, "failed to create dataset %s", datasetId)
	}

	LogInfo(warehouse.config, "BigQuery: Created dataset", datasetId)
	return nil
}

func (warehouse *WarehouseBigquery) CreateExternalTable(ctx context.Context, table string, bqSchema BqSchema, parquetFile ParquetFile) error {
	sourceUri := warehouse.config.Bigquery.FileServerUrl + "/" + parquetFile.Name
	warehouse.checkSourceUri(ctx, sourceUri)

	bigqueryTable := warehouse.newTable(table, bqSchema)
	bigqueryTable.ExternalDataConfiguration = &bigquery.ExternalDataConfiguration{
		SourceFormat: BQ_SOURCE_FORMAT_PARQUET,
		SourceUris:   []string{sourceUri},
		Autodetect:   false,
	}

	_, err := warehouse.service.Tables.Insert(warehouse.config.Bigquery.ProjectId, warehouse.config.Bigquery.DatasetId, bigqueryTable).Context(ctx).Do()
	if err != nil {
		return errors.Wrapf(err, "failed to create external table %s", table)
	}

	LogInfo(warehouse.config, "BigQuery: Created external table", warehouse.tableId(table), "over", sourceUri)
	return nil
}

// The outcome is only logged
func (warehouse *WarehouseBigquery) checkSourceUri(ctx context.Context, sourceUri string) {
	LogInfo(warehouse.config, "BigQuery: Checking file accessibility at", sourceUri)

	request, err := http.NewRequestWithContext(ctx, http.MethodHead, sourceUri, nil)
	if err != nil {
		LogWarn(warehouse.config, "BigQuery: Could not check file accessibility:", err)
		return
	}
	response, err := warehouse.httpClient.Do(request)
	if err != nil {
		LogWarn(warehouse.config, "BigQuery: Could not check file accessibility:", err)
		return
	}
	response.Body.Close()

	if response.StatusCode != http.StatusOK {
		LogWarn(warehouse.config, "BigQuery: File check returned status", response.StatusCode)
		return
	}

	size := "unknown"
	if response.ContentLength >= 0 {
		size = strconv.FormatInt(response.ContentLength, 10)
	}
	LogInfo(warehouse.config, "BigQuery: File is accessible (size:", size, "bytes)")
}

func (warehouse *WarehouseBigquery) CreateTable(ctx context.Context, table string, bqSchema BqSchema) error {
	_, err := warehouse.service.Tables.Insert(warehouse.config.Bigquery.ProjectId, warehouse.config.Bigquery.DatasetId, warehouse.newTable(table, bqSchema)).Context(ctx).Do()
	if err != nil {
		return errors.Wrapf(err, "failed to create table %s", table)
	}

	LogInfo(warehouse.config, "BigQuery: Created table", warehouse.tableId(table))
	return nil
}

func (warehouse *WarehouseBigquery) InsertRows(ctx context.Context, table string, bqSchema BqSchema, rows [][]interface{}) (int, error) {
	insertedCount := 0

	for batchStart := 0; batchStart < len(rows); batchStart += BQ_INSERT_BATCH_SIZE {
		batchEnd := min(batchStart+BQ_INSERT_BATCH_SIZE, len(rows))

		request := &bigquery.TableDataInsertAllRequest{}
		for _, row := range rows[batchStart:batchEnd] {
			request.Rows = append(request.Rows, &bigquery.TableDataInsertAllRequestRows{
				InsertId: uuid.New().String(),
				Json:     BigqueryRowJson(bqSchema, row),
			})
		}

		response, err := warehouse.service.Tabledata.InsertAll(warehouse.config.Bigquery.ProjectId, warehouse.config.Bigquery.DatasetId, table, request).Context(ctx).Do()
		if err != nil {
			return insertedCount, errors.Wrapf(err, "failed to insert rows into %s", table)
		}
		if len(response.InsertErrors) > 0 {
			insertError := response.InsertErrors[0]
			message := "unknown error"
			if len(insertError.Errors) > 0 {
				message = insertError.Errors[0].Message
			}
			return insertedCount, errors.Newf("failed to insert %d row(s) into %s, row %d: %s", len(response.InsertErrors), table, int64(batchStart)+insertError.Index, message)
		}

		insertedCount = batchEnd
		LogDebug(warehouse.config, "BigQuery: Inserted", insertedCount, "row(s) into", table)
	}

	return insertedCount, nil
}

func (warehouse *WarehouseBigquery) Query(ctx context.Context, table string, limit int) (QueryResult, error) {
	useLegacySql := false
	request := &bigquery.QueryRequest{
		Query:        "SELECT * FROM " + QuoteBacktickIdentifier(warehouse.tableId(table)) + " LIMIT " + IntToString(limit),
		UseLegacySql: &useLegacySql,
		Location:     warehouse.config.Bigquery.Location,
		TimeoutMs:    BQ_QUERY_TIMEOUT_MS,
	}
	LogDebug(warehouse.config, "BigQuery: Querying:", request.Query)

	response, err := warehouse.service.Jobs.Query(warehouse.config.Bigquery.ProjectId, request).Context(ctx).Do()
	if err != nil {
		return QueryResult{}, errors.Wrapf(err, "failed to query %s", table)
	}

	schema, rows, jobComplete := response.Schema, response.Rows, response.JobComplete
	for !jobComplete {
		select {
		case <-ctx.Done():
			return QueryResult{}, ctx.Err()
		case <-time.After(BQ_QUERY_POLL_INTERVAL):
		}

		results, err := warehouse.service.Jobs.GetQueryResults(warehouse.config.Bigquery.ProjectId, response.JobReference.JobId).
			Location(warehouse.config.Bigquery.Location).
			Context(ctx).
			Do()
		if err != nil {
			return QueryResult{}, errors.Wrapf(err, "failed to get query results of %s", table)
		}
		schema, rows, jobComplete = results.Schema, results.Rows, results.JobComplete
	}

	queryResult := QueryResult{}
	if schema != nil {
		for _, field := range schema.Fields {
			queryResult.Columns = append(queryResult.Columns, field.Name)
		}
	}
	for _, row := range rows {
		resultRow := make([]string, len(row.F))
		for i, cell := range row.F {
			resultRow[i] = BigqueryCellString(cell.V)
		}
		queryResult.Rows = append(queryResult.Rows, resultRow)
	}

	return queryResult, nil
}

func (warehouse *WarehouseBigquery) TableInfo(ctx context.Context, table string) (TableInfo, error) {
	bigqueryTable, err := warehouse.service.Tables.Get(warehouse.config.Bigquery.ProjectId, warehouse.config.Bigquery.DatasetId, table).Context(ctx).Do()
	if err != nil {
		return TableInfo{}, errors.Wrapf(err, "failed to get table %s", table)
	}

	tableInfo := TableInfo{
		Name:    warehouse.tableId(table),
		Kind:    TABLE_KIND_TABLE,
		NumRows: int64(bigqueryTable.NumRows),
	}
	if bigqueryTable.Type == BQ_TABLE_TYPE_EXTERNAL {
		tableInfo.Kind = TABLE_KIND_EXTERNAL
	}
	if bigqueryTable.Schema != nil {
		for _, field := range bigqueryTable.Schema.Fields {
			columnType := field.Type
			if field.Mode == BQ_MODE_REPEATED {
				columnType = BQ_TYPE_ARRAY + "<" + field.Type + ">"
			}
			tableInfo.Columns = append(tableInfo.Columns, ColumnTuple{Name: field.Name, Type: columnType})
		}
	}

	return tableInfo, nil
}

func (warehouse *WarehouseBigquery) DeleteTable(ctx context.Context, table string) error {
	err := warehouse.service.Tables.Delete(warehouse.config.Bigquery.ProjectId, warehouse.config.Bigquery.DatasetId, table).Context(ctx).Do()
	if err != nil {
		return errors.Wrapf(err, "failed to delete table %s", table)
	}
	return nil
}

func (warehouse *WarehouseBigquery) Close() {
}

func (warehouse *WarehouseBigquery) newTable(table string, bqSchema BqSchema) *bigquery.Table {
	return &bigquery.Table{
		TableReference: &bigquery.TableReference{
			ProjectId: warehouse.config.Bigquery.ProjectId,
			DatasetId: warehouse.config.Bigquery.DatasetId,
			TableId:   table,
		},
		Schema: &bigquery.TableSchema{Fields: BigqueryTableFieldSchemas(bqSchema)},
	}
}

// Example: project.dataset.table
func (warehouse *WarehouseBigquery) tableId(table string) string {
	return warehouse.config.Bigquery.ProjectId + "." + warehouse.config.Bigquery.DatasetId + "." + table
}

// BigqueryTableFieldSchemas converts the schema to the REST representation, where arrays are repeated fields
// and values without a native representation are JSON strings.
func BigqueryTableFieldSchemas(bqSchema BqSchema) []*bigquery.TableFieldSchema {
	tableFieldSchemas := make([]*bigquery.TableFieldSchema, len(bqSchema.Fields))

	for i, field := range bqSchema.Fields {
		tableFieldSchema := &bigquery.TableFieldSchema{Name: field.Name, Type: field.Type.Name, Mode: field.Mode}

		switch {
		case IsOpaqueJsonType(field.Type):
			tableFieldSchema.Type = BQ_TYPE_STRING
			if field.Type.IsArray() {
				tableFieldSchema.Mode = BQ_MODE_NULLABLE
			}
		case field.Type.IsArray():
			tableFieldSchema.Type = field.Type.Element.Name
			tableFieldSchema.Mode = BQ_MODE_REPEATED
		}

		tableFieldSchemas[i] = tableFieldSchema
	}

	return tableFieldSchemas
}

// BigqueryRowJson builds an insertAll row. NULLs are omitted, BYTES are base64 encoded
// and NULL array elements are dropped since repeated fields can't hold them.
func BigqueryRowJson(bqSchema BqSchema, row []interface{}) map[string]bigquery.JsonValue {
	rowJson := map[string]bigquery.JsonValue{}

	for i, field := range bqSchema.Fields {
		if i >= len(row) || row[i] == nil {
			continue
		}

		switch value := row[i].(type) {
		case []byte:
			rowJson[field.Name] = base64.StdEncoding.EncodeToString(value)
		case []interface{}:
			elements := []interface{}{}
			for _, element := range value {
				if stringElement, ok := ValueToString(element).(string); ok {
					elements = append(elements, stringElement)
				}
			}
			rowJson[field.Name] = elements
		default:
			rowJson[field.Name] = ValueToString(value)
		}
	}

	return rowJson
}

// BigqueryCellString renders a value of a query response row.
// Repeated values are lists of {"v": value} objects, records are {"f": [...]} objects.
func BigqueryCellString(value interface{}) string {
	switch typedValue := value.(type) {
	case nil:
		return NULL_VALUE_STRING
	case string:
		return typedValue
	case []interface{}:
		elements := make([]string, len(typedValue))
		for i, element := range typedValue {
			if elementMap, ok := element.(map[string]interface{}); ok {
				if elementValue, ok := elementMap[BQ_RESULT_CELL_VALUE_KEY]; ok {
					elements[i] = BigqueryCellString(elementValue)
					continue
				}
			}
			elements[i] = BigqueryCellString(element)
		}
		return "[" + strings.Join(elements, ", ") + "]"
	case map[string]interface{}:
		if fields, ok := typedValue[BQ_RESULT_RECORD_FIELD_KEY]; ok {
			return BigqueryCellString(fields)
		}
		return QueryValueString(typedValue)
	default:
		return QueryValueString(typedValue)
	}
}

// Example: http://localhost:8080/data -> http://localhost:8080/
func fileServerRootUrl(fileServerUrl string) string {
	parsedUrl, err := url.Parse(fileServerUrl)
	if err != nil || parsedUrl.Host == "" {
		return fileServerUrl
	}
	return parsedUrl.Scheme + "://" + parsedUrl.Host + "/"
}

func isGoogleApiError(err error, code int) bool {
	var googleApiError *googleapi.Error
	return errors.As(err, &googleApiError) && googleApiError.Code == code
}
