package cli

import (
	"bytes"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConvertWithRateFlags(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		mode   string
		want   string
	}{
		{"usdt to dzd", "1000", "usdt_to_dzd", "250,000.00"},
		{"krw to dzd", "1380000", "krw_to_dzd", "250,000.00"},
		{"dzd to usdt", "500", "dzd_to_usdt", "2.00"},
		{"not a number", "abc", "krw_to_usdt", "not available"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "convert", tt.amount, "--mode", tt.mode, "--dzd-usdt", "250", "--krw-usdt", "1380")
			if err != nil {
				t.Fatalf("convert: %v", err)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConvertRejectsUnknownMode(t *testing.T) {
	_, err := run(t, "convert", "10", "--mode", "eur_to_dzd", "--dzd-usdt", "250", "--krw-usdt", "1380")
	if err == nil || !strings.Contains(err.Error(), "unknown mode") {
		t.Fatalf("expected unknown mode error, got %v", err)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"serve": false, "migrate": false, "rates": false, "convert": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}
