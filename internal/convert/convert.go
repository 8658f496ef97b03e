// Package convert runs a transcript through parse, filter and export and
// records the outcome in the job ledger.
package convert

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/xowls0315/kakaotalk-excel/internal/chat"
	"github.com/xowls0315/kakaotalk-excel/internal/config"
	"github.com/xowls0315/kakaotalk-excel/internal/export"
	"github.com/xowls0315/kakaotalk-excel/internal/filter"
	"github.com/xowls0315/kakaotalk-excel/internal/jobs"
	"github.com/xowls0315/kakaotalk-excel/internal/parse"
	"github.com/xowls0315/kakaotalk-excel/internal/scan"
)

type Options struct {
	Criteria filter.Criteria
	Layout   export.Layout
}

// JSON renders the options the way they are recorded on a job.
func (o Options) JSON() string {
	rec := struct {
		IncludeSystem    bool     `json:"includeSystem"`
		DateFrom         string   `json:"dateFrom,omitempty"`
		DateTo           string   `json:"dateTo,omitempty"`
		Participants     []string `json:"participants,omitempty"`
		SplitSheetsByDay bool     `json:"splitSheetsByDay"`
	}{
		IncludeSystem:    o.Criteria.IncludeSystem,
		Participants:     o.Criteria.Participants,
		SplitSheetsByDay: o.Layout.SplitByDay,
	}
	if o.Criteria.DateFrom != nil {
		rec.DateFrom = o.Criteria.DateFrom.Format(chat.TimestampLayout)
	}
	if o.Criteria.DateTo != nil {
		rec.DateTo = o.Criteria.DateTo.Format(chat.TimestampLayout)
	}
	b, _ := json.Marshal(rec)
	return string(b)
}

type Service struct {
	Parser        *parse.Parser
	DB            *jobs.DB
	Store         *jobs.FileStore
	MaxInputBytes int64
	PreviewLimit  int
	FileExpiry    time.Duration
	Log           zerolog.Logger
}

func NewService(cfg *config.Config, db *jobs.DB, log zerolog.Logger) *Service {
	return &Service{
		Parser:        parse.NewParser(cfg.Markers),
		DB:            db,
		Store:         jobs.NewFileStore(cfg.StoragePath),
		MaxInputBytes: cfg.MaxInputBytes(),
		PreviewLimit:  cfg.PreviewLimit,
		FileExpiry:    time.Duration(cfg.FileExpiresInDays) * 24 * time.Hour,
		Log:           log,
	}
}

type PreviewResult struct {
	JobID string `json:"jobId"`
	chat.Preview
}

// Preview parses the transcript at path and returns its first messages.
// The job is recorded as previewed so a later Convert of the same file
// picks it up.
func (s *Service) Preview(path string, opts Options, limit int) (*PreviewResult, error) {
	text, err := scan.ReadTranscript(path, s.MaxInputBytes)
	if err != nil {
		return nil, err
	}
	res := s.view(text, opts.Criteria)

	job, err := s.DB.CreateJob(filepath.Base(path), jobs.StatusPreviewed, opts.JSON())
	if err != nil {
		return nil, err
	}
	job.RoomName = res.RoomName
	job.TotalMessages = len(res.Messages)
	if err := s.DB.Update(job); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = s.PreviewLimit
	}
	s.Log.Debug().Str("job", job.ID).Str("room", res.RoomName).Int("messages", len(res.Messages)).Msg("previewed")
	return &PreviewResult{JobID: job.ID, Preview: chat.NewPreview(res, limit)}, nil
}

type Result struct {
	JobID        string
	RoomName     string
	Participants []string
	Total        int
	Path         string
	SizeBytes    int64
}

// Convert exports the transcript at path. With output empty the workbook
// goes to the managed store and expires; otherwise it is written to output
// and kept.
func (s *Service) Convert(path string, opts Options, output string) (*Result, error) {
	text, err := scan.ReadTranscript(path, s.MaxInputBytes)
	if err != nil {
		return nil, err
	}

	job, err := s.startJob(filepath.Base(path), opts)
	if err != nil {
		return nil, err
	}

	res := s.view(text, opts.Criteria)
	job.RoomName = res.RoomName
	job.TotalMessages = len(res.Messages)

	file, err := s.write(job.ID, res, opts.Layout, output)
	if err != nil {
		s.fail(job, err)
		return nil, fmt.Errorf("convert %s: %w", path, err)
	}

	if err := s.DB.AddFile(file); err != nil {
		s.discard(file)
		s.fail(job, err)
		return nil, fmt.Errorf("convert %s: %w", path, err)
	}
	job.Status = jobs.StatusSuccess
	if err := s.DB.Update(job); err != nil {
		s.discard(file)
		s.fail(job, err)
		return nil, fmt.Errorf("convert %s: %w", path, err)
	}

	s.Log.Info().
		Str("job", job.ID).
		Str("room", res.RoomName).
		Int("messages", len(res.Messages)).
		Str("path", file.Path).
		Msg("converted")

	return &Result{
		JobID:        job.ID,
		RoomName:     res.RoomName,
		Participants: res.Participants,
		Total:        len(res.Messages),
		Path:         file.Path,
		SizeBytes:    file.SizeBytes,
	}, nil
}

// view parses text once with nothing filtered out, then narrows the
// messages with c. Participants stay those of the whole transcript.
func (s *Service) view(text string, c filter.Criteria) *chat.ParseResult {
	res := s.Parser.Parse(text, filter.Criteria{IncludeSystem: true})
	return &chat.ParseResult{
		RoomName:     res.RoomName,
		Messages:     filter.Apply(res.Messages, c),
		Participants: res.Participants,
	}
}

// fail records err on job. A ledger error here is only logged; the caller
// already has an error to return.
func (s *Service) fail(job *jobs.Job, err error) {
	job.Status = jobs.StatusFailed
	job.Error = err.Error()
	if uerr := s.DB.Update(job); uerr != nil {
		s.Log.Error().Err(uerr).Str("job", job.ID).Msg("record failure")
	}
}

// discard removes a managed workbook that never made it into the ledger.
func (s *Service) discard(f jobs.File) {
	if f.StorageType != jobs.StorageLocal {
		return
	}
	if err := s.Store.Remove(f.Path); err != nil {
		s.Log.Warn().Err(err).Str("path", f.Path).Msg("remove unrecorded workbook")
	}
}

// startJob reuses the newest previewed job for fileName, or opens a new one.
func (s *Service) startJob(fileName string, opts Options) (*jobs.Job, error) {
	job, err := s.DB.LatestPreviewed(fileName)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return s.DB.CreateJob(fileName, jobs.StatusProcessing, opts.JSON())
	}
	job.Status = jobs.StatusProcessing
	job.OptionsJSON = opts.JSON()
	if err := s.DB.Update(job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Service) write(jobID string, res *chat.ParseResult, l export.Layout, output string) (jobs.File, error) {
	data, err := export.Workbook(res.Messages, res.RoomName, l)
	if err != nil {
		return jobs.File{}, err
	}

	f := jobs.File{JobID: jobID, SizeBytes: int64(len(data))}
	if output == "" {
		if f.Path, err = s.Store.Save(jobID, data); err != nil {
			return jobs.File{}, err
		}
		f.StorageType = jobs.StorageLocal
		if s.FileExpiry > 0 {
			f.ExpiresAt = time.Now().Add(s.FileExpiry)
		}
		return f, nil
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return jobs.File{}, fmt.Errorf("create output dir: %w", err)
	}
	if err := jobs.WriteFile(output, data); err != nil {
		return jobs.File{}, err
	}
	if f.Path, err = filepath.Abs(output); err != nil {
		f.Path = output
	}
	f.StorageType = jobs.StorageExternal
	return f, nil
}

// OutputName maps a transcript file name to its workbook name.
func OutputName(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".xlsx"
}

type Stats struct {
	Scanned   int
	Converted int
	Empty     int
	Errors    int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d converted=%d empty=%d errors=%d",
		s.Scanned, s.Converted, s.Empty, s.Errors)
}

// ConvertAll converts every transcript under dir. With outDir set each
// workbook is written there under OutputName. A failing file is logged and
// counted; the batch continues.
func (s *Service) ConvertAll(dir string, opts Options, outDir string) (Stats, error) {
	var stats Stats

	files, err := scan.ScanDir(dir)
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(files)

	for _, fi := range files {
		output := ""
		if outDir != "" {
			output = filepath.Join(outDir, OutputName(fi.Path))
		}
		res, err := s.Convert(fi.Path, opts, output)
		if err != nil {
			stats.Errors++
			s.Log.Warn().Err(err).Str("path", fi.Path).Msg("skipped")
			continue
		}
		if res.Total == 0 {
			stats.Empty++
		}
		stats.Converted++
	}
	return stats, nil
}
