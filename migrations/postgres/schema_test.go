package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

// The store layer addresses columns by name; the embedded DDL must declare
// them. These checks pin the columns that have no compile-time link to the
// queries using them.
func TestSchemaDeclaresStoreColumns(t *testing.T) {
	tests := []struct {
		file string
		want []string
	}{
		{"0001_init_up.sql", []string{
			"password_hash",
			"resource_category_key",
			"user_editable",
		}},
		{"0002_oauth_up.sql", []string{
			"refresh_token",
			"code_challenge_method",
		}},
		{"0003_data_links_up.sql", []string{
			"genotype_resources",
			"mrna_resources",
			"phenotype_resources",
			"inbredset_group_resources",
			"data_link_id",
		}},
	}
	for _, tt := range tests {
		b, err := fs.ReadFile(FS, tt.file)
		if err != nil {
			t.Fatalf("read %s: %v", tt.file, err)
		}
		ddl := string(b)
		for _, w := range tt.want {
			if !strings.Contains(ddl, w) {
				t.Errorf("%s: missing %q", tt.file, w)
			}
		}
	}
}

func TestEveryUpHasDown(t *testing.T) {
	ups, err := fs.Glob(FS, "*_up.sql")
	if err != nil {
		t.Fatal(err)
	}
	if len(ups) == 0 {
		t.Fatal("no up migrations embedded")
	}
	for _, up := range ups {
		down := strings.TrimSuffix(up, "_up.sql") + "_down.sql"
		if _, err := fs.ReadFile(FS, down); err != nil {
			t.Errorf("%s has no %s", up, down)
		}
	}
}
