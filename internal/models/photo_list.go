package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// PhotoList is a list of photo URLs. Rows written over the years hold it as
// a native array, a JSON-encoded string or a Postgres array literal; every
// read goes through ParsePhotoList so all three decode the same way.
type PhotoList []string

// ParsePhotoList normalizes any stored shape into a clean URL list. Empty
// entries and the literal "null" are dropped.
func ParsePhotoList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case PhotoList:
		return cleanPhotos([]string(t))
	case []string:
		return cleanPhotos(t)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return cleanPhotos(out)
	case []byte:
		return parsePhotoString(string(t))
	case string:
		return parsePhotoString(t)
	}
	return nil
}

func parsePhotoString(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return nil
	}

	if strings.HasPrefix(s, "[") {
		var items []any
		if err := json.Unmarshal([]byte(s), &items); err == nil {
			return ParsePhotoList(items)
		}
	}

	s = strings.Trim(s, "{}[]")
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.Trim(strings.TrimSpace(p), `"'`)
	}
	return cleanPhotos(parts)
}

func cleanPhotos(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || s == "null" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Scan implements sql.Scanner.
func (p *PhotoList) Scan(value any) error {
	*p = ParsePhotoList(value)
	return nil
}

// Value stores the list as a JSON array.
func (p PhotoList) Value() (driver.Value, error) {
	b, err := json.Marshal(cleanPhotos(p))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *PhotoList) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = ParsePhotoList(raw)
	return nil
}

func (p PhotoList) MarshalJSON() ([]byte, error) {
	return json.Marshal(cleanPhotos(p))
}
