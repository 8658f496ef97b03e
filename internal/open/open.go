package open

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/xowls0315/kakaotalk-excel/internal/jobs"
)

// EnvOpener names the program used to open workbooks.
const EnvOpener = "KTE_OPENER"

// Workbook returns the path of a job's workbook, failing if the job has
// none or the file is gone.
func Workbook(db *jobs.DB, jobID string) (string, error) {
	job, err := db.GetJob(jobID)
	if err != nil {
		return "", fmt.Errorf("get job: %w", err)
	}
	if len(job.Files) == 0 {
		return "", fmt.Errorf("job %s (%s) has no workbook", job.ID, job.Status)
	}
	path := job.Files[0].Path
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("file not found: %s", path)
	}
	return path, nil
}

// OpenJob opens a job's workbook with the platform opener.
func OpenJob(db *jobs.DB, jobID string) error {
	path, err := Workbook(db, jobID)
	if err != nil {
		return err
	}
	cmd := Command(os.Getenv(EnvOpener), runtime.GOOS, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Command builds the opener invocation. opener may carry arguments, e.g.
// "libreoffice --calc".
func Command(opener, goos, path string) *exec.Cmd {
	if fields := strings.Fields(opener); len(fields) > 0 {
		return exec.Command(fields[0], append(fields[1:], path)...)
	}
	switch goos {
	case "darwin":
		return exec.Command("open", path)
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path)
	default:
		return exec.Command("xdg-open", path)
	}
}
