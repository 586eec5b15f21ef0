package export

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"fieldjobs/internal/domain"
	"fieldjobs/internal/domain/evidence"
	"fieldjobs/internal/domain/job"
	"fieldjobs/internal/domain/proxy"
)

const noEvidenceText = "Este trabajo no tiene evidencias.\n"

// ObjectFetcher opens an evidence file by URL.
type ObjectFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*proxy.Object, error)
}

type Service struct {
	jobs     *job.Service
	evidence *evidence.Service
	fetcher  ObjectFetcher
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(jobs *job.Service, evidenceService *evidence.Service, fetcher ObjectFetcher, log logrus.FieldLogger) *Service {
	return &Service{jobs: jobs, evidence: evidenceService, fetcher: fetcher, log: log, now: time.Now}
}

type file struct {
	name string
	data []byte
}

type folder struct {
	name  string
	files []file
}

// Bundle is a fully downloaded export waiting to be written as a zip.
type Bundle struct {
	Filename string
	folders  []folder
}

// Failures counts error placeholders in the bundle.
func (b *Bundle) Failures() int {
	n := 0
	for _, f := range b.folders {
		for _, fl := range f.files {
			if strings.HasPrefix(fl.name, "error_") {
				n++
			}
		}
	}
	return n
}

// Prepare loads job metadata and downloads every evidence file. A
// metadata failure or a cancelled ctx is returned; per-file failures
// become error_N.txt entries.
func (s *Service) Prepare(ctx context.Context, jobIDs []string) (*Bundle, error) {
	if len(jobIDs) == 0 {
		return nil, ErrNoJobs
	}

	jobs, err := s.jobs.ByIDs(ctx, jobIDs)
	if err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}
	if len(jobs) == 0 {
		return nil, job.ErrJobNotFound
	}

	ids := make([]string, len(jobs))
	for i := range jobs {
		ids[i] = jobs[i].ID
	}
	byJob, err := s.evidence.ListForJobs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load evidence: %w", err)
	}

	folders := make([]folder, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i := range jobs {
		items := byJob[jobs[i].ID]
		folders[i] = folder{name: FolderName(jobs[i]), files: make([]file, len(items))}
		if len(items) == 0 {
			folders[i].files = []file{{name: "no_evidence.txt", data: []byte(noEvidenceText)}}
			continue
		}
		for n := range items {
			slot := &folders[i].files[n]
			e := items[n]
			g.Go(func() error {
				*slot = s.download(gctx, n+1, e)
				// Individual failures are archived as error files; only a
				// cancelled request stops the export.
				return ctx.Err()
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("download evidence: %w", err)
	}

	b := &Bundle{Filename: ArchiveName(s.now()), folders: folders}
	s.log.WithFields(logrus.Fields{
		"jobs":     len(folders),
		"failures": b.Failures(),
	}).Info("evidence export prepared")
	return b, nil
}

func (s *Service) download(ctx context.Context, n int, e domain.Evidence) file {
	obj, err := s.fetcher.Fetch(ctx, e.URL)
	if err == nil {
		defer obj.Body.Close()
		var data []byte
		if data, err = io.ReadAll(obj.Body); err == nil {
			return file{name: FileName(n, e), data: data}
		}
	}

	s.log.WithError(err).WithFields(logrus.Fields{"job_id": e.JobID, "evidence_id": e.ID}).Warn("evidence download failed")
	msg := fmt.Sprintf("No se pudo descargar %s\n%v\n", e.URL, err)
	return file{name: ErrorFileName(n), data: []byte(msg)}
}

// WriteTo writes the bundle as a zip archive, folders in job order.
func (b *Bundle) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)
	for _, f := range b.folders {
		for _, fl := range f.files {
			fw, err := zw.Create(f.name + "/" + fl.name)
			if err != nil {
				return cw.n, err
			}
			if _, err := fw.Write(fl.data); err != nil {
				return cw.n, err
			}
		}
	}
	err := zw.Close()
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
