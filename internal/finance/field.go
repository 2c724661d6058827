package finance

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Field is a raw form value. It decodes from a JSON string or number and
// keeps the text as typed so blank and unparsable input stay distinguishable
// from zero.
type Field string

func (f *Field) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Field(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = Field(n.String())
	return nil
}

// Float parses the field; blank or invalid input yields 0.
func (f Field) Float() float64 {
	v, _ := f.Parse()
	return v
}

// Parse reports whether the field holds a finite number.
func (f Field) Parse() (float64, bool) {
	s := strings.TrimSpace(string(f))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func (f Field) Blank() bool {
	return strings.TrimSpace(string(f)) == ""
}

// FieldOf formats v back into form text.
func FieldOf(v float64) Field {
	return Field(strconv.FormatFloat(v, 'f', -1, 64))
}
