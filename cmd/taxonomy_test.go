package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/spigell/hackmatch/internal/taxonomy"
)

func TestPrintTaxonomy(t *testing.T) {
	tax := taxonomy.New([]taxonomy.Category{
		{Name: "web", Terms: []string{"html", "css"}},
		{Name: "cloud", Terms: []string{"aws"}},
	})

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{name: "all", want: "2 categories\nweb: html, css\ncloud: aws\n"},
		{name: "one", args: []string{"WEB"}, want: "html, css\n"},
		{name: "unknown", args: []string{"cobol"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cmd := &cobra.Command{}
			cmd.SetOut(&buf)

			err := printTaxonomy(cmd, tax, tt.args)
			if tt.wantErr {
				if err == nil || !strings.Contains(err.Error(), "cobol") {
					t.Fatalf("expected an unknown category error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if buf.String() != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, buf.String())
			}
		})
	}
}
