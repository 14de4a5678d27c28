package models

import (
	"bytes"
	"encoding/json"
)

// List decodes either a plain JSON array or a GraphQL connection object
// ({"nodes": [...]}). null and missing values decode as an empty list.
type List[T any] []T

func (l *List[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if data[0] == '{' {
		var conn struct {
			Nodes []T `json:"nodes"`
		}
		if err := json.Unmarshal(data, &conn); err != nil {
			return err
		}
		*l = conn.Nodes
		return nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

// orString returns v, or fallback when v is empty
func orString(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

// Count decodes a plain number or a counter object as produced by the
// GitHub APIs ({"totalCount": n} or {"total_count": n}).
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}

	if data[0] == '{' {
		var obj struct {
			TotalCount  *int `json:"totalCount"`
			TotalCount2 *int `json:"total_count"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		switch {
		case obj.TotalCount != nil:
			*c = Count(*obj.TotalCount)
		case obj.TotalCount2 != nil:
			*c = Count(*obj.TotalCount2)
		default:
			*c = 0
		}
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = Count(n)
	return nil
}
