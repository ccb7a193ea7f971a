package main

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

func PanicIfError(err error, message ...string) {
	if err != nil {
		if len(message) == 1 {
			panic(fmt.Errorf(message[0]+": %w", err))
		}

		panic(err)
	}
}

func IntToString(i int) string {
	return strconv.Itoa(i)
}

func StringToInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// Example: my`table -> `my\`table`
func QuoteBacktickIdentifier(identifier string) string {
	return "`" + strings.ReplaceAll(identifier, "`", "\\`") + "`"
}

// Example: my"table -> "my""table"
func QuoteDoubleQuoteIdentifier(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

func QuoteStringLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// ValueToString renders a value read from Parquet the way it is sent to a warehouse: nil stays nil,
// times in RFC 3339, nested values as JSON.
func ValueToString(value interface{}) interface{} {
	switch typedValue := value.(type) {
	case nil:
		return nil
	case string:
		return typedValue
	case []byte:
		return string(typedValue)
	case bool:
		return strconv.FormatBool(typedValue)
	case time.Time:
		return typedValue.UTC().Format(time.RFC3339Nano)
	case []interface{}, map[string]interface{}:
		jsonValue, err := json.Marshal(typedValue)
		if err != nil {
			return fmt.Sprint(typedValue)
		}
		return string(jsonValue)
	case driver.Valuer:
		driverValue, err := typedValue.Value()
		if err != nil {
			return fmt.Sprint(typedValue)
		}
		return ValueToString(driverValue)
	default:
		return fmt.Sprint(typedValue)
	}
}

func QueryValueString(value interface{}) string {
	stringValue, ok := ValueToString(value).(string)
	if !ok {
		return NULL_VALUE_STRING
	}
	return stringValue
}
