// Package typemap translates between Go column element types and the
// database column type vocabulary.
//
// The mapping is total over the supported kinds and deterministic.
// FromDBType(ToDBType(t)) == t for the canonical Go kinds (bool, int16,
// int32, int64, float32, float64, string, []byte, time.Time, uuid.UUID);
// other integer widths widen to the nearest canonical kind.
package typemap

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/koustreak/dbframe/internal/dialect"
	"github.com/koustreak/dbframe/internal/errs"
)

// Tag is a database column kind.
type Tag int

const (
	Other Tag = iota // a database type with no dedicated Go kind
	Boolean
	SmallInt
	Integer
	BigInt
	Real
	Double
	Text
	Binary
	Timestamp
	Date
	Time
	UUID
)

var tagNames = [...]string{
	Other:     "other",
	Boolean:   "boolean",
	SmallInt:  "smallint",
	Integer:   "integer",
	BigInt:    "bigint",
	Real:      "real",
	Double:    "double",
	Text:      "text",
	Binary:    "binary",
	Timestamp: "timestamp",
	Date:      "date",
	Time:      "time",
	UUID:      "uuid",
}

func (t Tag) String() string {
	if t < 0 || int(t) >= len(tagNames) {
		return fmt.Sprintf("tag(%d)", int(t))
	}
	return tagNames[t]
}

// ColumnSpec is a column name paired with its type.
// DataType keeps the backend's own spelling when the spec came from the
// catalog; it is empty for specs derived from Go values.
type ColumnSpec struct {
	Name     string
	Type     Tag
	DataType string
}

var (
	bytesType = reflect.TypeOf([]byte(nil))
	timeType  = reflect.TypeOf(time.Time{})
	uuidType  = reflect.TypeOf(uuid.UUID{})
	anyType   = reflect.TypeOf((*any)(nil)).Elem()
)

// ToDBType maps a Go element type to a Tag. Pointer types map like their
// element type. Kinds without a database equivalent fail with
// ErrKindUnsupportedType.
func ToDBType(t reflect.Type) (Tag, error) {
	if t == nil {
		return Other, errs.New(errs.ErrKindUnsupportedType, "column type is unknown")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t {
	case bytesType:
		return Binary, nil
	case timeType:
		return Timestamp, nil
	case uuidType:
		return UUID, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return Boolean, nil
	case reflect.Int8, reflect.Int16, reflect.Uint8:
		return SmallInt, nil
	case reflect.Int32, reflect.Uint16:
		return Integer, nil
	case reflect.Int, reflect.Int64, reflect.Uint32:
		return BigInt, nil
	case reflect.Float32:
		return Real, nil
	case reflect.Float64:
		return Double, nil
	case reflect.String:
		return Text, nil
	}
	return Other, errs.Newf(errs.ErrKindUnsupportedType, "go type %s has no database column type", t)
}

// FromDBType returns the Go type values of tag are delivered as.
func FromDBType(tag Tag) reflect.Type {
	switch tag {
	case Boolean:
		return reflect.TypeOf(false)
	case SmallInt:
		return reflect.TypeOf(int16(0))
	case Integer:
		return reflect.TypeOf(int32(0))
	case BigInt:
		return reflect.TypeOf(int64(0))
	case Real:
		return reflect.TypeOf(float32(0))
	case Double:
		return reflect.TypeOf(float64(0))
	case Text, Time:
		return reflect.TypeOf("")
	case Binary:
		return bytesType
	case Timestamp, Date:
		return timeType
	case UUID:
		return uuidType
	default:
		return anyType
	}
}

// SQLType spells tag in d's DDL vocabulary. MySQL has no column type the
// catalog reports distinctly for UUIDs, so UUID is unsupported there.
func SQLType(tag Tag, d dialect.Dialect) (string, error) {
	var names map[Tag]string
	switch d {
	case dialect.MySQL:
		names = mysqlTypes
	case dialect.DuckDB:
		names = duckdbTypes
	default:
		names = postgresTypes
	}
	name, ok := names[tag]
	if !ok {
		return "", errs.Newf(errs.ErrKindUnsupportedType, "%s has no %s column type", tag, d)
	}
	return name, nil
}

var postgresTypes = map[Tag]string{
	Boolean:   "boolean",
	SmallInt:  "smallint",
	Integer:   "integer",
	BigInt:    "bigint",
	Real:      "real",
	Double:    "double precision",
	Text:      "text",
	Binary:    "bytea",
	Timestamp: "timestamp",
	Date:      "date",
	Time:      "time",
	UUID:      "uuid",
}

var mysqlTypes = map[Tag]string{
	Boolean:   "BOOLEAN",
	SmallInt:  "SMALLINT",
	Integer:   "INT",
	BigInt:    "BIGINT",
	Real:      "FLOAT",
	Double:    "DOUBLE",
	Text:      "LONGTEXT",
	Binary:    "LONGBLOB",
	Timestamp: "DATETIME(6)",
	Date:      "DATE",
	Time:      "TIME(6)",
}

var duckdbTypes = map[Tag]string{
	Boolean:   "BOOLEAN",
	SmallInt:  "SMALLINT",
	Integer:   "INTEGER",
	BigInt:    "BIGINT",
	Real:      "REAL",
	Double:    "DOUBLE",
	Text:      "VARCHAR",
	Binary:    "BLOB",
	Timestamp: "TIMESTAMP",
	Date:      "DATE",
	Time:      "TIME",
	UUID:      "UUID",
}

// ParseDBType maps a catalog data_type string from any supported backend to
// a Tag. Unknown names map to Other.
func ParseDBType(dataType string) Tag {
	s := strings.ToLower(strings.TrimSpace(dataType))

	// MySQL reports BOOLEAN columns as tinyint(1) in column_type.
	if s == "tinyint(1)" {
		return Boolean
	}
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	s = strings.TrimSuffix(s, " unsigned")

	switch s {
	case "boolean", "bool":
		return Boolean
	case "smallint", "int2", "tinyint":
		return SmallInt
	case "integer", "int", "int4", "mediumint":
		return Integer
	case "bigint", "int8":
		return BigInt
	case "real", "float4", "float":
		return Real
	case "double precision", "double", "float8":
		return Double
	case "text", "character varying", "varchar", "character", "char", "bpchar",
		"tinytext", "mediumtext", "longtext", "string":
		return Text
	case "bytea", "blob", "tinyblob", "mediumblob", "longblob", "binary", "varbinary":
		return Binary
	case "timestamp", "timestamp without time zone", "timestamp with time zone",
		"timestamptz", "datetime":
		return Timestamp
	case "date":
		return Date
	case "time", "time without time zone", "time with time zone":
		return Time
	case "uuid":
		return UUID
	default:
		return Other
	}
}
