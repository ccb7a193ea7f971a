package main

type DatasetTable struct {
	Dataset string
	Table   string
}

func (datasetTable DatasetTable) String() string {
	return datasetTable.Dataset + "." + datasetTable.Table
}

// Example: "my_dataset"."my_table"
func (datasetTable DatasetTable) QuotedString() string {
	return QuoteDoubleQuoteIdentifier(datasetTable.Dataset) + "." + QuoteDoubleQuoteIdentifier(datasetTable.Table)
}
