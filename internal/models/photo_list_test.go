package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestParsePhotoListShapes(t *testing.T) {
	want := []string{"a", "b"}
	inputs := []any{
		[]string{"a", "b"},
		[]any{"a", "b"},
		`["a","b"]`,
		`{a,b}`,
		`{"a","b"}`,
		[]byte(`{a,b}`),
		` [ "a" , "b" ] `,
		`a, b`,
		`{a,,null,b}`,
		[]string{"a", "", "null", "b"},
	}
	for _, in := range inputs {
		if got := ParsePhotoList(in); !reflect.DeepEqual(got, want) {
			t.Errorf("ParsePhotoList(%#v) = %#v", in, got)
		}
	}
}

func TestParsePhotoListEmpty(t *testing.T) {
	for _, in := range []any{nil, "", "null", "{}", "[]", []string{}, 42} {
		if got := ParsePhotoList(in); len(got) != 0 {
			t.Errorf("ParsePhotoList(%#v) = %#v", in, got)
		}
	}
}

func TestParsePhotoListKeepsURLs(t *testing.T) {
	got := ParsePhotoList(`{"https://cdn.example.com/cars/1.jpg","https://cdn.example.com/cars/2.jpg?w=800"}`)
	want := []string{"https://cdn.example.com/cars/1.jpg", "https://cdn.example.com/cars/2.jpg?w=800"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v", got)
	}
}

func TestPhotoListScanValue(t *testing.T) {
	var p PhotoList
	if err := p.Scan(`{x,y}`); err != nil {
		t.Fatal(err)
	}
	v, err := p.Value()
	if err != nil {
		t.Fatal(err)
	}
	if v != `["x","y"]` {
		t.Errorf("Value = %v", v)
	}

	var empty PhotoList
	v, _ = empty.Value()
	if v != `[]` {
		t.Errorf("empty Value = %v", v)
	}
}

func TestPhotoListJSON(t *testing.T) {
	var payload struct {
		Native  PhotoList `json:"native"`
		Encoded PhotoList `json:"encoded"`
		Literal PhotoList `json:"literal"`
	}
	body := `{"native":["a","b"],"encoded":"[\"a\",\"b\"]","literal":"{a,b}"}`
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatal(err)
	}
	want := PhotoList{"a", "b"}
	for name, got := range map[string]PhotoList{"native": payload.Native, "encoded": payload.Encoded, "literal": payload.Literal} {
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%s = %#v", name, got)
		}
	}
}
