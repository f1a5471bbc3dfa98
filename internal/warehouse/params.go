package warehouse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Interpolate substitutes positional placeholders ($1..$n) in sqlText with
// SQL literal renderings of args. The Data API takes statements as opaque
// strings, so there is no server-side binding; values are rendered as quoted
// literals with single-quote doubling.
//
// This is for internally generated values only (filters assembled by the
// service layer). It is not a defence suitable for free-form user input.
func Interpolate(sqlText string, args ...any) string {
	// Substitute highest-numbered placeholders first so $1 does not clobber $10.
	for i := len(args) - 1; i >= 0; i-- {
		placeholder := "$" + strconv.Itoa(i+1)
		sqlText = strings.ReplaceAll(sqlText, placeholder, Literal(args[i]))
	}
	return sqlText
}

// Literal renders a single value as a SQL literal.
func Literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'"
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return "'" + x.Format("2006-01-02 15:04:05") + "'"
	default:
		s := fmt.Sprintf("%v", x)
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}
}

// DateLiteral renders a time as a DATE literal (no time-of-day component).
func DateLiteral(t time.Time) string {
	return "'" + t.Format("2006-01-02") + "'"
}
