package migrations

import (
	"regexp"
	"testing"
)

func TestSchemaUsesBigintKeys(t *testing.T) {
	data, err := FS.ReadFile("000001_catalog_cart.up.sql")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	schema := string(data)
	if regexp.MustCompile(`(?m)^\s*id\s+SERIAL\b`).MatchString(schema) {
		t.Fatal("id columns must be BIGSERIAL")
	}
	for _, col := range []string{"category_id", "service_id", "user_id"} {
		re := regexp.MustCompile(`(?m)^\s*` + col + `\s+BIGINT\b`)
		if !re.MatchString(schema) {
			t.Fatalf("%s must be BIGINT", col)
		}
	}
}
