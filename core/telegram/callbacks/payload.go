package callbacks

import (
	"strconv"
	"strings"
)

// Int64Args parses exactly n colon-separated int64 arguments.
func Int64Args(payload string, n int) ([]int64, error) {
	if payload == "" {
		if n == 0 {
			return nil, nil
		}
		return nil, strconv.ErrSyntax
	}
	parts := strings.Split(payload, Sep)
	if len(parts) != n {
		return nil, strconv.ErrSyntax
	}
	out := make([]int64, n)
	for i, p := range parts {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// FormatInt64 renders an id argument.
func FormatInt64(v int64) string {
	return strconv.FormatInt(v, 10)
}
