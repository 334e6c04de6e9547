package library

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/blake2b"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Archive persists completed replay runs into SQLite so past runs can be
// compared and their loan journals queried later.
type Archive struct {
	db *sqlx.DB

	insertLoanStmt *sql.Stmt
}

// OpenArchive opens (or creates) the archive database at dbPath, applies
// schema migrations, and prepares common statements.
func OpenArchive(dbPath string) (*Archive, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", dbPath)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	a := &Archive{db: db}
	if a.insertLoanStmt, err = db.Prepare(
		`INSERT INTO loans(run_id,seq,user_id,item_id,action,event_date) VALUES(?,?,?,?,?,?)`); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

// Close releases prepared statements and closes the DB.
func (a *Archive) Close() error {
	if a.insertLoanStmt != nil {
		a.insertLoanStmt.Close()
	}
	return a.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sqlx.DB) error {
	// WAL improves write concurrency.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
            id TEXT PRIMARY KEY,
            started_at DATETIME NOT NULL,
            finished_at DATETIME NOT NULL,
            items_file TEXT NOT NULL,
            users_file TEXT NOT NULL,
            commands_file TEXT NOT NULL,
            items_fp TEXT NOT NULL,
            users_fp TEXT NOT NULL,
            commands_fp TEXT NOT NULL,
            command_count INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS run_users (
            run_id TEXT NOT NULL REFERENCES runs(id),
            user_id TEXT NOT NULL,
            name TEXT NOT NULL,
            category TEXT NOT NULL,
            penalty INTEGER NOT NULL,
            has_paid BOOLEAN NOT NULL,
            held INTEGER NOT NULL,
            PRIMARY KEY(run_id, user_id)
        );`,
		`CREATE TABLE IF NOT EXISTS run_items (
            run_id TEXT NOT NULL REFERENCES runs(id),
            item_id TEXT NOT NULL,
            title TEXT NOT NULL,
            category TEXT NOT NULL,
            kind TEXT NOT NULL,
            borrowed BOOLEAN NOT NULL,
            borrowed_by TEXT NOT NULL,
            borrowed_date TEXT NOT NULL,
            attrs TEXT NOT NULL,
            PRIMARY KEY(run_id, item_id)
        );`,
		`CREATE TABLE IF NOT EXISTS loans (
            run_id TEXT NOT NULL REFERENCES runs(id),
            seq INTEGER NOT NULL,
            user_id TEXT NOT NULL,
            item_id TEXT NOT NULL,
            action TEXT NOT NULL,
            event_date TEXT NOT NULL,
            PRIMARY KEY(run_id, seq)
        );`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Run records
// ---------------------------------------------------------------------------

// RunRecord identifies one archived replay: the input files, their content
// fingerprints, and the run window.
type RunRecord struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	ItemsFile    string
	UsersFile    string
	CommandsFile string
	ItemsFP      string
	UsersFP      string
	CommandsFP   string
	CommandCount int
}

// NewRunRecord assigns a fresh run id and fingerprints the input files.
// A file that cannot be read gets an empty fingerprint.
func NewRunRecord(itemsFile, usersFile, commandsFile string, res *RunResult) RunRecord {
	return RunRecord{
		ID:           uuid.NewString(),
		StartedAt:    res.StartedAt,
		FinishedAt:   res.FinishedAt,
		ItemsFile:    itemsFile,
		UsersFile:    usersFile,
		CommandsFile: commandsFile,
		ItemsFP:      fingerprintOrEmpty(itemsFile),
		UsersFP:      fingerprintOrEmpty(usersFile),
		CommandsFP:   fingerprintOrEmpty(commandsFile),
		CommandCount: res.Stats.Commands,
	}
}

// FingerprintFile returns the hex BLAKE2b-256 digest of the file's content.
func FingerprintFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func fingerprintOrEmpty(path string) string {
	fp, err := FingerprintFile(path)
	if err != nil {
		return ""
	}
	return fp
}

// SaveRun writes the run record, the final user and item state, and the loan
// journal in one transaction.
func (a *Archive) SaveRun(rec RunRecord, res *RunResult) error {
	tx, err := a.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs(id,started_at,finished_at,items_file,users_file,commands_file,items_fp,users_fp,commands_fp,command_count)
         VALUES(?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.StartedAt, rec.FinishedAt,
		rec.ItemsFile, rec.UsersFile, rec.CommandsFile,
		rec.ItemsFP, rec.UsersFP, rec.CommandsFP, rec.CommandCount); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, u := range res.Library.Users() {
		if _, err := tx.Exec(
			`INSERT INTO run_users(run_id,user_id,name,category,penalty,has_paid,held) VALUES(?,?,?,?,?,?,?)`,
			rec.ID, u.ID, u.Name, string(u.Category), u.Penalty, u.HasPaid,
			len(res.Library.Held(u.ID))); err != nil {
			return fmt.Errorf("insert run user %s: %w", u.ID, err)
		}
	}

	for _, it := range res.Library.Items() {
		attrs, err := json.Marshal(it.Attrs)
		if err != nil {
			return fmt.Errorf("marshal attrs for %s: %w", it.ID, err)
		}
		borrowedDate := ""
		if !it.BorrowedDate.IsZero() {
			borrowedDate = it.BorrowedDate.Format(dateLayout)
		}
		if _, err := tx.Exec(
			`INSERT INTO run_items(run_id,item_id,title,category,kind,borrowed,borrowed_by,borrowed_date,attrs)
             VALUES(?,?,?,?,?,?,?,?,?)`,
			rec.ID, it.ID, it.Title, string(it.Category), it.Kind,
			it.Borrowed, it.BorrowedBy, borrowedDate, string(attrs)); err != nil {
			return fmt.Errorf("insert run item %s: %w", it.ID, err)
		}
	}

	loanStmt := tx.Stmt(a.insertLoanStmt)
	for _, ev := range res.Journal {
		if _, err := loanStmt.Exec(
			rec.ID, ev.Seq, ev.UserID, ev.ItemID, string(ev.Action),
			ev.Date.Format(dateLayout)); err != nil {
			return fmt.Errorf("insert loan %d: %w", ev.Seq, err)
		}
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Read side
// ---------------------------------------------------------------------------

// RunRow is one archived run as listed by the history command.
type RunRow struct {
	ID           string    `db:"id"`
	StartedAt    time.Time `db:"started_at"`
	FinishedAt   time.Time `db:"finished_at"`
	ItemsFile    string    `db:"items_file"`
	UsersFile    string    `db:"users_file"`
	CommandsFile string    `db:"commands_file"`
	ItemsFP      string    `db:"items_fp"`
	UsersFP      string    `db:"users_fp"`
	CommandsFP   string    `db:"commands_fp"`
	CommandCount int       `db:"command_count"`
}

// LoanRow is one journal entry of an archived run.
type LoanRow struct {
	RunID     string `db:"run_id"`
	Seq       int    `db:"seq"`
	UserID    string `db:"user_id"`
	ItemID    string `db:"item_id"`
	Action    string `db:"action"`
	EventDate string `db:"event_date"`
}

// Runs lists archived runs, newest first.
func (a *Archive) Runs() ([]RunRow, error) {
	var rows []RunRow
	if err := a.db.Select(&rows,
		`SELECT id,started_at,finished_at,items_file,users_file,commands_file,items_fp,users_fp,commands_fp,command_count
         FROM runs ORDER BY started_at DESC, id`); err != nil {
		return nil, err
	}
	return rows, nil
}

// Loans lists the journal of one archived run in replay order.
func (a *Archive) Loans(runID string) ([]LoanRow, error) {
	var rows []LoanRow
	if err := a.db.Select(&rows,
		`SELECT run_id,seq,user_id,item_id,action,event_date FROM loans WHERE run_id=? ORDER BY seq`, runID); err != nil {
		return nil, err
	}
	return rows, nil
}
