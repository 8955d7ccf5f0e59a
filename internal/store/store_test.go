package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/contactdb/internal/tables"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_OpensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	if _, err := s1.db.Exec(`INSERT INTO Contacts (displayLabel) VALUES ('Ada')`); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()

	var count int
	if err := s2.db.QueryRow("SELECT COUNT(*) FROM Contacts").Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	for _, table := range []string{"Contacts", "Relationships", "Identities", "Details", "GlobalPresences"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "test.db"), WithDriver("postgres"))
	if err == nil {
		t.Error("expected error for unsupported driver, got nil")
	}
}

func TestOpen_PureDriver(t *testing.T) {
	s := createTestStore(t, WithDriver(DriverPure))

	if s.Driver() != DriverPure {
		t.Errorf("Driver() = %q, want %q", s.Driver(), DriverPure)
	}
	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
	if err := s.verifyPragma("foreign_keys", "1"); err != nil {
		t.Error(err)
	}
	if id := insertContact(t, s, "Grace"); id != 1 {
		t.Errorf("first contactId = %d, want 1", id)
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestClose_MultipleCalls(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("first Close() failed: %v", err)
	}

	// Second close must not panic.
	_ = s.Close()
}

func TestDB_ReturnsUnderlyingConnection(t *testing.T) {
	s := createTestStore(t)

	db := s.DB()
	if db == nil {
		t.Fatal("DB() returned nil")
	}
	if err := db.Ping(); err != nil {
		t.Errorf("DB() connection not usable: %v", err)
	}
}

// Pragma tests

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	for name, want := range map[string]string{
		"journal_mode": "wal",
		"synchronous":  "1", // NORMAL
		"busy_timeout": "5000",
		"foreign_keys": "1",
	} {
		if err := s.verifyPragma(name, want); err != nil {
			t.Error(err)
		}
	}
}

// Schema tests

func TestSchema_ContactsTable(t *testing.T) {
	s := createTestStore(t)

	columns := getTableColumns(t, s.db, "Contacts")
	expected := []string{
		"contactId", "displayLabel", "displayLabelGroup", "firstName", "lastName",
		"middleName", "prefix", "suffix", "customLabel", "created", "modified",
		"gender", "isFavorite",
	}
	for _, col := range expected {
		if !contains(columns, col) {
			t.Errorf("Contacts table missing column %q", col)
		}
	}
}

func TestSchema_DetailTablesMatchMapping(t *testing.T) {
	s := createTestStore(t)

	all := append(tables.Writable(), tables.GlobalPresences())
	for _, tbl := range all {
		columns := getTableColumns(t, s.db, tbl.Name())
		if len(columns) == 0 {
			t.Errorf("table %s does not exist", tbl.Name())
			continue
		}
		for _, col := range append([]string{"contactId"}, tbl.Columns()...) {
			if !contains(columns, col) {
				t.Errorf("%s table missing column %q", tbl.Name(), col)
			}
		}
	}
}

// Constraint tests

func TestConstraint_RelationshipsUnique(t *testing.T) {
	s := createTestStore(t)
	a := insertContact(t, s, "Ada")
	b := insertContact(t, s, "Bob")

	insert := `INSERT INTO Relationships (firstId, secondId, type) VALUES (?, ?, ?)`
	if _, err := s.db.Exec(insert, a, b, "friend"); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := s.db.Exec(insert, a, b, "friend"); err == nil {
		t.Error("expected UNIQUE violation for duplicate edge")
	}
	if _, err := s.db.Exec(insert, b, a, "friend"); err != nil {
		t.Errorf("reverse edge should be allowed: %v", err)
	}
}

func TestConstraint_DetailsCascadeWithContact(t *testing.T) {
	s := createTestStore(t)
	id := insertContact(t, s, "Ada")

	stmts := []string{
		`INSERT INTO Tags (contactId, tag) VALUES (?, 'x')`,
		`INSERT INTO Details (contactId, detailId, detail, detailUri) VALUES (?, 1, 'Tag', 'tag:1')`,
		`INSERT INTO GlobalPresences (contactId, presenceState) VALUES (?, 1)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt, id); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}

	if _, err := s.db.Exec(DeleteContactSQL, id); err != nil {
		t.Fatalf("delete contact: %v", err)
	}

	for _, table := range []string{"Tags", "Details", "GlobalPresences"} {
		var count int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 0 {
			t.Errorf("%s has %d rows after contact delete, want 0", table, count)
		}
	}
}

func TestConstraint_DetailRequiresContact(t *testing.T) {
	s := createTestStore(t)

	_, err := s.db.Exec(`INSERT INTO Notes (contactId, note) VALUES (42, 'orphan')`)
	if err == nil {
		t.Error("expected foreign key violation for detail of missing contact")
	}
}

// Migration tests

func TestMigration_SchemaVersion(t *testing.T) {
	s := createTestStore(t)

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("failed to get user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, currentSchemaVersion)
	}
}

func TestMigration_V1IndexesExist(t *testing.T) {
	s := createTestStore(t)

	if !contains(getTableIndexes(t, s.db, "Contacts"), "idx_contacts_label_group") {
		t.Error("Contacts missing idx_contacts_label_group")
	}
	for _, table := range indexedDetailTables {
		if !contains(getTableIndexes(t, s.db, table), "idx_"+table+"_contact") {
			t.Errorf("%s missing contactId index", table)
		}
	}
}

func TestMigration_UpgradeFromV0(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	// Apply schema but not migrations.
	db, err := sql.Open(DriverCGO, path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 0"); err != nil {
		t.Fatalf("failed to set user_version: %v", err)
	}
	db.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("failed to get user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d after migration", version, currentSchemaVersion)
	}
	if !contains(getTableIndexes(t, s.db, "PhoneNumbers"), "idx_phone_normalized") {
		t.Error("PhoneNumbers missing idx_phone_normalized after migration")
	}
}

// Helper functions

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("failed to get table info for %q: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue any
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func getTableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	if err != nil {
		t.Fatalf("failed to get indexes for %q: %v", table, err)
	}
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan index name: %v", err)
		}
		indexes = append(indexes, name)
	}
	return indexes
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
