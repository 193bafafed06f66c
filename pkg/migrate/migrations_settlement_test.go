package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmarasigan/printshop-pos-backend/pkg/migrate"
)

func TestSettlementLogMigrationContainsAuditColumns(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_settlement_logs.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no settlement log migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE settlement_logs",
		"attempt_id UUID NOT NULL",
		"paid_before DECIMAL(12,2) NOT NULL",
		"paid_after DECIMAL(12,2) NOT NULL",
		"committed BOOLEAN NOT NULL",
		"CREATE INDEX idx_settlement_logs_attempt",
		"DROP TABLE settlement_logs",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
