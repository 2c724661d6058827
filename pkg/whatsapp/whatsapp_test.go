package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	tests := map[string]string{
		"0559123456":     "213559123456",
		"00213559123456": "213559123456",
		"+213559123456":  "213559123456",
		"213559123456":   "213559123456",
		"0555 12 34 56":  "213555123456",
		"":               "",
		"n/a":            "",
	}
	for in, want := range tests {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizePhoneIsIdempotent(t *testing.T) {
	for _, in := range []string{"0559123456", "00213770001122", "+213 661 22 33 44"} {
		once := NormalizePhone(in)
		if twice := NormalizePhone(once); twice != once {
			t.Errorf("NormalizePhone(%q) = %q, again %q", in, once, twice)
		}
	}
}

func TestDeepLink(t *testing.T) {
	got := DeepLink("0559123456", "Hello & welcome\nOrder: WA-2025-000001")
	want := "https://wa.me/213559123456?text=Hello%20%26%20welcome%0AOrder%3A%20WA-2025-000001"
	if got != want {
		t.Errorf("DeepLink = %q\nwant      %q", got, want)
	}
	if got := DeepLink("0559123456", ""); got != "https://wa.me/213559123456" {
		t.Errorf("DeepLink without text = %q", got)
	}
}

func TestClientSendMessage(t *testing.T) {
	var got SendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/device1/send/message" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if user, pass, ok := r.BasicAuth(); !ok || user != "u" || pass != "p" {
			t.Errorf("basic auth = %q %q %v", user, pass, ok)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"code":"SUCCESS","message":"ok","results":{"message_id":"m1","status":"sent"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "u", "p", "/device1/")
	resp, err := c.SendMessage(context.Background(), "0559123456", "hi")
	if err != nil {
		t.Fatal(err)
	}
	if got.Phone != "213559123456@s.whatsapp.net" || got.Message != "hi" {
		t.Errorf("request = %+v", got)
	}
	if resp.Results.MessageID != "m1" {
		t.Errorf("response = %+v", resp)
	}
}

func TestClientErrors(t *testing.T) {
	var nilClient *Client
	if _, err := nilClient.SendMessage(context.Background(), "0559123456", "x"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "device offline", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", "")
	if _, err := c.SendMessage(context.Background(), "0559123456", "x"); err == nil {
		t.Error("expected gateway error")
	}
	if _, err := c.SendMessage(context.Background(), "---", "x"); err == nil {
		t.Error("expected invalid phone error")
	}
}

func ExampleDeepLink() {
	fmt.Println(DeepLink("0770 11 22 33", "Salam"))
	// Output: https://wa.me/213770112233?text=Salam
}
