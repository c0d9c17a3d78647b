package jsonutil

import (
	"strings"
	"testing"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "json fence",
			in:   "```json\n[{\"name\":\"cup\"}]\n```",
			want: "[{\"name\":\"cup\"}]",
		},
		{
			name: "bare fence",
			in:   "```\n{\"a\":1}\n```",
			want: "{\"a\":1}",
		},
		{
			name: "no fence",
			in:   "[1,2,3]",
			want: "[1,2,3]",
		},
		{
			name: "fence with trailing whitespace",
			in:   "  ```json\n[]\n```  ",
			want: "[]",
		},
		{
			name: "too short to be fenced",
			in:   "```",
			want: "```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{
			name: "array with prose around it",
			in:   "Here you go:\n[{\"name\":\"lamp\"}]\nHope that helps!",
			want: "[{\"name\":\"lamp\"}]",
		},
		{
			name: "object",
			in:   "{\"x\":0.5}",
			want: "{\"x\":0.5}",
		},
		{
			name: "object before array picks object",
			in:   "{\"items\":[1,2]}",
			want: "{\"items\":[1,2]}",
		},
		{
			name:    "no json at all",
			in:      "sorry, I can't see any objects",
			wantErr: true,
		},
		{
			name:    "unterminated array",
			in:      "[{\"name\":\"cup\"}",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Extract() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type labelPayload struct {
	Name     string `json:"name"`
	Position point  `json:"position"`
}

func TestParse(t *testing.T) {
	raw := "```json\n[{\"name\":\"cup\",\"position\":{\"x\":0.5,\"y\":0.5}}]\n```"

	labels, err := Parse[[]labelPayload](raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(labels) != 1 {
		t.Fatalf("Parse() returned %d labels, want 1", len(labels))
	}
	if labels[0].Name != "cup" {
		t.Errorf("Name = %q, want %q", labels[0].Name, "cup")
	}
	if labels[0].Position.X != 0.5 || labels[0].Position.Y != 0.5 {
		t.Errorf("Position = %+v, want {0.5 0.5}", labels[0].Position)
	}
}

func TestParseInvalidJSON(t *testing.T) {
	_, err := Parse[[]labelPayload]("[{\"name\": cup}]")
	if err == nil {
		t.Fatal("Parse() expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "invalid JSON") {
		t.Errorf("error = %v, want invalid JSON mention", err)
	}
}
