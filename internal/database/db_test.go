package database

import (
	"strings"
	"testing"
)

func TestSettingsDSN(t *testing.T) {
	dsn := Settings{User: "board", Pass: "pw", Host: "db", Port: "3306", Name: "arcade"}.DSN()
	for _, want := range []string{"board:pw@tcp(db:3306)/arcade", "parseTime=true", "charset=utf8mb4"} {
		if !strings.Contains(dsn, want) {
			t.Fatalf("DSN %q missing %q", dsn, want)
		}
	}
}

func TestSettingsDSNWithoutPassword(t *testing.T) {
	dsn := Settings{User: "board", Host: "db", Port: "3306", Name: "arcade"}.DSN()
	if !strings.HasPrefix(dsn, "board@tcp(db:3306)/arcade") {
		t.Fatalf("DSN = %q", dsn)
	}
}
