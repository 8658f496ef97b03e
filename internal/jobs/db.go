// Package jobs keeps a local ledger of conversions and the workbooks they
// produced. Parsed messages are never stored.
package jobs

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var (
	ErrNotFound  = errors.New("job not found")
	ErrAmbiguous = errors.New("job id prefix is ambiguous")
)

type Status string

const (
	StatusPreviewed  Status = "previewed"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
	StatusExpired    Status = "expired"
)

// ParseStatus accepts a status name as typed on the command line.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPreviewed, StatusProcessing, StatusSuccess, StatusFailed, StatusExpired:
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

const (
	// StorageLocal files live under the managed storage directory and are
	// removed by cleanup.
	StorageLocal = "local"
	// StorageExternal files were written to a caller-chosen path and are
	// never removed.
	StorageExternal = "external"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS jobs (
    id                 TEXT PRIMARY KEY,
    original_file_name TEXT NOT NULL,
    status             TEXT NOT NULL,
    options_json       TEXT NOT NULL DEFAULT '{}',
    room_name          TEXT NOT NULL DEFAULT '',
    total_messages     INTEGER NOT NULL DEFAULT 0,
    error              TEXT NOT NULL DEFAULT '',
    created_at         TEXT NOT NULL,
    finished_at        TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS jobs_created_at ON jobs(created_at);

CREATE TABLE IF NOT EXISTS job_files (
    job_id       TEXT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
    storage_type TEXT NOT NULL,
    path         TEXT NOT NULL,
    size_bytes   INTEGER NOT NULL DEFAULT 0,
    expires_at   TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (job_id, path)
);
`

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000Z"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// one connection keeps the per-connection pragmas in effect
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

type Job struct {
	ID            string
	FileName      string
	Status        Status
	OptionsJSON   string
	RoomName      string
	TotalMessages int
	Error         string
	CreatedAt     time.Time
	FinishedAt    time.Time // zero until the job settles
	Files         []File
}

type File struct {
	JobID       string
	StorageType string
	Path        string
	SizeBytes   int64
	ExpiresAt   time.Time // zero means never
}

// CreateJob records a new job for fileName.
func (d *DB) CreateJob(fileName string, status Status, optionsJSON string) (*Job, error) {
	if optionsJSON == "" {
		optionsJSON = "{}"
	}
	j := &Job{
		ID:          uuid.NewString(),
		FileName:    fileName,
		Status:      status,
		OptionsJSON: optionsJSON,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
	_, err := d.db.Exec(
		`INSERT INTO jobs (id, original_file_name, status, options_json, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		j.ID, j.FileName, string(j.Status), j.OptionsJSON, formatTime(j.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return j, nil
}

// LatestPreviewed returns the newest job for fileName still in the
// previewed state, or nil.
func (d *DB) LatestPreviewed(fileName string) (*Job, error) {
	var id string
	err := d.db.QueryRow(
		`SELECT id FROM jobs WHERE original_file_name = ? AND status = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		fileName, string(StatusPreviewed),
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d.GetJob(id)
}

// Update changes a job's status and result fields. Settled statuses stamp
// finished_at.
func (d *DB) Update(j *Job) error {
	switch j.Status {
	case StatusSuccess, StatusFailed:
		if j.FinishedAt.IsZero() {
			j.FinishedAt = time.Now().UTC().Truncate(time.Millisecond)
		}
	}
	res, err := d.db.Exec(
		`UPDATE jobs SET status = ?, options_json = ?, room_name = ?, total_messages = ?, error = ?, finished_at = ?
		 WHERE id = ?`,
		string(j.Status), j.OptionsJSON, j.RoomName, j.TotalMessages, j.Error, formatTime(j.FinishedAt), j.ID,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", j.ID, ErrNotFound)
	}
	return nil
}

func (d *DB) AddFile(f File) error {
	_, err := d.db.Exec(
		`INSERT OR REPLACE INTO job_files (job_id, storage_type, path, size_bytes, expires_at)
		 VALUES (?, ?, ?, ?, ?)`,
		f.JobID, f.StorageType, f.Path, f.SizeBytes, formatTime(f.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("insert job file: %w", err)
	}
	return nil
}

// GetJob looks a job up by id or by a unique id prefix.
func (d *DB) GetJob(id string) (*Job, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	rows, err := d.db.Query(
		`SELECT id, original_file_name, status, options_json, room_name, total_messages, error, created_at, finished_at
		 FROM jobs WHERE id = ? OR id LIKE ? ESCAPE '\' LIMIT 2`,
		id, escapeLike(id)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	jobs, err := scanJobs(rows)
	if err != nil {
		return nil, err
	}
	switch len(jobs) {
	case 0:
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	case 1:
	default:
		return nil, fmt.Errorf("%s: %w", id, ErrAmbiguous)
	}

	j := &jobs[0]
	if j.Files, err = d.files(j.ID); err != nil {
		return nil, err
	}
	return j, nil
}

func (d *DB) files(jobID string) ([]File, error) {
	rows, err := d.db.Query(
		`SELECT job_id, storage_type, path, size_bytes, expires_at FROM job_files WHERE job_id = ? ORDER BY path`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("get job files: %w", err)
	}
	return scanFiles(rows)
}

type ListOptions struct {
	Status Status    // "" = all
	Since  time.Time // zero = no filter
	Limit  int
	Offset int
}

// ListJobs returns jobs newest first.
func (d *DB) ListJobs(opts ListOptions) ([]Job, error) {
	if opts.Limit <= 0 {
		opts.Limit = 20
	}

	var conditions []string
	var args []interface{}
	if opts.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(opts.Status))
	}
	if !opts.Since.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, formatTime(opts.Since))
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT id, original_file_name, status, options_json, room_name, total_messages, error, created_at, finished_at
		FROM jobs
		%s
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`, where)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	jobs, err := scanJobs(rows)
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		if jobs[i].Files, err = d.files(jobs[i].ID); err != nil {
			return nil, err
		}
	}
	return jobs, nil
}

// ExpiredFiles returns files whose expiry is at or before now.
func (d *DB) ExpiredFiles(now time.Time) ([]File, error) {
	rows, err := d.db.Query(
		`SELECT job_id, storage_type, path, size_bytes, expires_at FROM job_files
		 WHERE expires_at != '' AND expires_at <= ?
		 ORDER BY expires_at`,
		formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("expired files: %w", err)
	}
	return scanFiles(rows)
}

// ExpireFile drops the file record and marks its job expired.
func (d *DB) ExpireFile(f File) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM job_files WHERE job_id = ? AND path = ?", f.JobID, f.Path); err != nil {
		return err
	}
	if _, err := tx.Exec("UPDATE jobs SET status = ? WHERE id = ?", string(StatusExpired), f.JobID); err != nil {
		return err
	}
	return tx.Commit()
}

type Counts struct {
	Jobs     int
	Files    int
	ByStatus map[Status]int
}

func (c Counts) String() string {
	parts := []string{fmt.Sprintf("jobs=%d files=%d", c.Jobs, c.Files)}
	for _, st := range []Status{StatusPreviewed, StatusProcessing, StatusSuccess, StatusFailed, StatusExpired} {
		parts = append(parts, fmt.Sprintf("%s=%d", st, c.ByStatus[st]))
	}
	return strings.Join(parts, " ")
}

func (d *DB) Counts() (Counts, error) {
	c := Counts{ByStatus: make(map[Status]int)}
	if err := d.db.QueryRow("SELECT COUNT(*) FROM job_files").Scan(&c.Files); err != nil {
		return c, err
	}

	rows, err := d.db.Query("SELECT status, COUNT(*) FROM jobs GROUP BY status")
	if err != nil {
		return c, err
	}
	defer rows.Close()
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return c, err
		}
		c.ByStatus[Status(st)] = n
		c.Jobs += n
	}
	return c, rows.Err()
}

func scanJobs(rows *sql.Rows) ([]Job, error) {
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		var status, created, finished string
		if err := rows.Scan(&j.ID, &j.FileName, &status, &j.OptionsJSON, &j.RoomName, &j.TotalMessages, &j.Error, &created, &finished); err != nil {
			return nil, err
		}
		j.Status = Status(status)
		j.CreatedAt = parseTime(created)
		j.FinishedAt = parseTime(finished)
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func scanFiles(rows *sql.Rows) ([]File, error) {
	defer rows.Close()

	var files []File
	for rows.Next() {
		var f File
		var expires string
		if err := rows.Scan(&f.JobID, &f.StorageType, &f.Path, &f.SizeBytes, &expires); err != nil {
			return nil, err
		}
		f.ExpiresAt = parseTime(expires)
		files = append(files, f)
	}
	return files, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
