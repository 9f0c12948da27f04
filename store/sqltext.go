package store

import (
	"strconv"
	"time"
)

// Rebind numbers ? placeholders as $1, $2, ... for PostgreSQL.
func Rebind(query string) string {
	out := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			out = append(out, query[i])
			continue
		}
		n++
		out = append(out, '$')
		out = strconv.AppendInt(out, int64(n), 10)
	}
	return string(out)
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05-07:00",
}

// scanTime turns a scanned timestamp column into a time. SQLite hands back
// TEXT, pgx a time.Time; NULL and unparseable values give the zero time.
func scanTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	case []byte:
		return scanTime(string(t))
	}
	return time.Time{}
}
