package typemap

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/koustreak/dbframe/internal/errs"
)

// timeOfDayLayout is how Time values are rendered as strings.
const timeOfDayLayout = "15:04:05.999999"

// Normalize coerces a value as returned by a driver into the Go kind
// FromDBType(tag) promises. nil stays nil. Values of Other columns are
// returned unchanged.
func Normalize(tag Tag, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	var (
		out any
		err error
	)
	switch tag {
	case Boolean:
		out, err = toBool(v)
	case SmallInt:
		out, err = toInt(v, 16)
	case Integer:
		out, err = toInt(v, 32)
	case BigInt:
		out, err = toInt(v, 64)
	case Real:
		out, err = toFloat(v, 32)
	case Double:
		out, err = toFloat(v, 64)
	case Text:
		out, err = toText(v)
	case Binary:
		out, err = toBytes(v)
	case Timestamp, Date:
		out, err = toTime(v)
	case Time:
		out, err = toTimeOfDay(v)
	case UUID:
		out, err = toUUID(v)
	default:
		return v, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed,
			fmt.Sprintf("cannot read %T as %s", v, tag), err)
	}
	return out, nil
}

func toBool(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int64:
		return x != 0, nil
	case int32:
		return x != 0, nil
	case int16:
		return x != 0, nil
	case int8:
		return x != 0, nil
	case []byte:
		return strconv.ParseBool(string(x))
	case string:
		return strconv.ParseBool(x)
	}
	return nil, fmt.Errorf("unexpected %T", v)
}

func toInt(v any, bits int) (any, error) {
	var n int64
	switch x := v.(type) {
	case int64:
		n = x
	case int32:
		n = int64(x)
	case int16:
		n = int64(x)
	case int8:
		n = int64(x)
	case int:
		n = int64(x)
	case uint8:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("%d overflows int64", x)
		}
		n = int64(x)
	case []byte:
		p, err := strconv.ParseInt(string(x), 10, bits)
		if err != nil {
			return nil, err
		}
		n = p
	case string:
		p, err := strconv.ParseInt(x, 10, bits)
		if err != nil {
			return nil, err
		}
		n = p
	default:
		return nil, fmt.Errorf("unexpected %T", v)
	}

	switch bits {
	case 16:
		if n < math.MinInt16 || n > math.MaxInt16 {
			return nil, fmt.Errorf("%d overflows int16", n)
		}
		return int16(n), nil
	case 32:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("%d overflows int32", n)
		}
		return int32(n), nil
	}
	return n, nil
}

func toFloat(v any, bits int) (any, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		if bits == 32 {
			return x, nil
		}
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case []byte:
		p, err := strconv.ParseFloat(string(x), bits)
		if err != nil {
			return nil, err
		}
		f = p
	case string:
		p, err := strconv.ParseFloat(x, bits)
		if err != nil {
			return nil, err
		}
		f = p
	default:
		return nil, fmt.Errorf("unexpected %T", v)
	}
	if bits == 32 {
		return float32(f), nil
	}
	return f, nil
}

func toText(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case fmt.Stringer:
		return x.String(), nil
	}
	return fmt.Sprint(v), nil
}

func toBytes(v any) (any, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	}
	return nil, fmt.Errorf("unexpected %T", v)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func toTime(v any) (any, error) {
	var s string
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case []byte:
		s = string(x)
	case string:
		s = x
	default:
		return nil, fmt.Errorf("unexpected %T", v)
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("unrecognised time %q", s)
}

func toTimeOfDay(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case time.Time:
		return x.Format(timeOfDayLayout), nil
	case time.Duration:
		return time.Time{}.Add(x).Format(timeOfDayLayout), nil
	case pgtype.Time:
		d := time.Duration(x.Microseconds) * time.Microsecond
		return time.Time{}.Add(d).Format(timeOfDayLayout), nil
	}
	return nil, fmt.Errorf("unexpected %T", v)
}

func toUUID(v any) (any, error) {
	switch x := v.(type) {
	case uuid.UUID:
		return x, nil
	case [16]byte:
		return uuid.UUID(x), nil
	case string:
		return uuid.Parse(x)
	case []byte:
		if len(x) == 16 {
			return uuid.FromBytes(x)
		}
		return uuid.ParseBytes(x)
	case fmt.Stringer:
		return uuid.Parse(strings.TrimSpace(x.String()))
	}

	// Driver-specific named [16]byte types.
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array && rv.Len() == 16 && rv.Type().Elem().Kind() == reflect.Uint8 {
		var u uuid.UUID
		reflect.Copy(reflect.ValueOf(u[:]), rv)
		return u, nil
	}
	return nil, fmt.Errorf("unexpected %T", v)
}
