package ui_test

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"testing"

	"github.com/g5becks/apidoc/internal/model"
	"github.com/g5becks/apidoc/internal/ui"
)

func TestRenderClassListJSON(t *testing.T) {
	classes := []*model.Class{
		{
			Name:     "Page",
			Extends:  "EventEmitter",
			Metainfo: model.Metainfo{Since: "v1.0"},
		},
		{
			Name:     "Browser",
			Metainfo: model.Metainfo{Since: "v1.0"},
		},
	}

	// Capture stdout
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w //nolint:reassign // Test helper to capture stdout

	err := ui.RenderClassList(classes, true)
	w.Close()

	var buf bytes.Buffer
	io.Copy(&buf, r)
	os.Stdout = oldStdout //nolint:reassign // Restore stdout after test

	if err != nil {
		t.Fatalf("RenderClassList(jsonOut=true) error = %v", err)
	}

	var decoded []*model.Class
	if unmarshalErr := json.Unmarshal(buf.Bytes(), &decoded); unmarshalErr != nil {
		t.Fatalf("JSON unmarshal error = %v, output:\n%s", unmarshalErr, buf.String())
	}

	if len(decoded) != 2 {
		t.Errorf("decoded JSON has %d classes, want 2", len(decoded))
	}
	if decoded[0].Name != "Page" {
		t.Errorf("decoded[0].Name = %q, want %q", decoded[0].Name, "Page")
	}
	if decoded[0].Extends != "EventEmitter" {
		t.Errorf("decoded[0].Extends = %q, want %q", decoded[0].Extends, "EventEmitter")
	}
}

func TestMemberFlags(t *testing.T) {
	tests := []struct {
		name   string
		member *model.Member
		want   string
	}{
		{
			name:   "plain required member",
			member: &model.Member{Kind: model.KindMethod, Required: true},
			want:   "",
		},
		{
			name:   "async optional",
			member: &model.Member{Kind: model.KindMethod, Async: true},
			want:   "async optional",
		},
		{
			name: "experimental with langs",
			member: &model.Member{
				Kind:     model.KindMethod,
				Required: true,
				Metainfo: model.Metainfo{
					Experimental: true,
					Langs:        model.Langs{Only: []string{"js", "python"}},
				},
			},
			want: "experimental langs:js,python",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ui.MemberFlags(tc.member)
			if got != tc.want {
				t.Errorf("MemberFlags() = %q, want %q", got, tc.want)
			}
		})
	}
}
