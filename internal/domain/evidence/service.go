package evidence

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"fieldjobs/internal/domain"
	"fieldjobs/internal/realtime"
	"fieldjobs/internal/storage"
)

const MaxFileSize = 20 * 1024 * 1024 // 20 MB

// AllowedMimeTypes lists the image formats mobile cameras produce.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,
	"image/gif":  true,
}

type Service struct {
	repo  *Repository
	store storage.Interface
	pub   realtime.Publisher
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewService(repo *Repository, store storage.Interface, pub realtime.Publisher, log logrus.FieldLogger) *Service {
	if pub == nil {
		pub = realtime.NopPublisher{}
	}
	return &Service{repo: repo, store: store, pub: pub, log: log, now: time.Now}
}

// ListForJob returns a job's evidence with its completeness summary.
func (s *Service) ListForJob(ctx context.Context, jobID string) ([]domain.Evidence, Completeness, error) {
	items, err := s.repo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, Completeness{}, err
	}
	return items, Check(items), nil
}

func (s *Service) ListForJobs(ctx context.Context, jobIDs []string) (map[string][]domain.Evidence, error) {
	return s.repo.ListByJobs(ctx, jobIDs)
}

// Upload stores the file and records it against the job. Only the assignee
// may upload, and only while the job is pending.
func (s *Service) Upload(ctx context.Context, userID, jobID, rawType string, fh *multipart.FileHeader) (*domain.Evidence, error) {
	typ, err := domain.ParseEvidenceType(rawType)
	if err != nil {
		return nil, ErrInvalidType
	}
	if fh.Size == 0 {
		return nil, ErrEmptyFile
	}
	if fh.Size > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.IsAssignedTo(userID) {
		return nil, ErrNotAssignee
	}
	if job.Status != domain.JobStatusPending {
		return nil, ErrJobNotPending
	}

	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	mimeType, err := detectMime(file, fh.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	if !AllowedMimeTypes[mimeType] {
		return nil, ErrInvalidMimeType
	}

	key := ObjectKey(jobID, fh.Filename, mimeType, s.now())
	if err := s.store.Put(ctx, key, file, fh.Size, mimeType); err != nil {
		return nil, fmt.Errorf("failed to store evidence: %w", err)
	}

	e := &domain.Evidence{
		JobID:      jobID,
		URL:        s.store.PublicURL(key),
		Type:       typ,
		UploadedAt: s.now(),
	}
	if err := s.repo.Create(ctx, e); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.WithError(delErr).WithField("key", key).Warn("evidence rollback delete failed")
		}
		return nil, fmt.Errorf("failed to save evidence record: %w", err)
	}

	s.log.WithFields(logrus.Fields{"job_id": jobID, "evidence_id": e.ID, "type": typ}).Info("evidence uploaded")
	s.pub.Publish(realtime.NewEvent(realtime.TableEvidence, realtime.ChangeInsert, e, nil))
	return e, nil
}

// Delete removes the row and then the stored object. The row delete is
// conditional on the job still being pending; a storage failure after it
// is only logged.
func (s *Service) Delete(ctx context.Context, userID, jobID, evidenceID string) error {
	e, err := s.repo.GetByID(ctx, evidenceID)
	if err != nil {
		return err
	}
	if e.JobID != jobID {
		return ErrEvidenceNotFound
	}

	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if !job.IsAssignedTo(userID) {
		return ErrNotAssignee
	}
	if job.Status != domain.JobStatusPending {
		return ErrJobNotPending
	}

	if err := s.repo.DeleteWhileJobPending(ctx, e.ID, jobID); err != nil {
		return err
	}
	s.removeObject(ctx, *e)

	s.pub.Publish(realtime.NewEvent(realtime.TableEvidence, realtime.ChangeDelete, nil, e))
	return nil
}

// PurgeObjects deletes the stored files behind already-removed rows.
func (s *Service) PurgeObjects(ctx context.Context, items []domain.Evidence) {
	for _, e := range items {
		s.removeObject(ctx, e)
	}
}

func (s *Service) removeObject(ctx context.Context, e domain.Evidence) {
	key, ok := s.store.KeyFromURL(e.URL)
	if !ok {
		s.log.WithFields(logrus.Fields{"evidence_id": e.ID, "url": e.URL}).Warn("evidence url is not in storage, skipping object delete")
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.WithError(err).WithField("key", key).Error("storage delete failed")
	}
}

// ObjectKey builds "<jobID>/<unixmillis>-<name><ext>".
func ObjectKey(jobID, filename, mimeType string, at time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = mimeToExt(mimeType)
	}
	return fmt.Sprintf("%s/%d-%s%s", jobID, at.UnixMilli(), sanitizeName(filename), ext)
}

func detectMime(file multipart.File, declared string) (string, error) {
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind file: %w", err)
	}

	mimeType := strings.Split(http.DetectContentType(buf[:n]), ";")[0]
	// HEIC is not sniffable; trust the declared type only for it.
	if mimeType == "application/octet-stream" {
		declared = strings.ToLower(strings.TrimSpace(strings.Split(declared, ";")[0]))
		if declared == "image/heic" || declared == "image/heif" {
			return declared, nil
		}
	}
	return mimeType, nil
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	if name == "" {
		return "file"
	}
	return name
}

func mimeToExt(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/heic", "image/heif":
		return ".heic"
	default:
		return ".bin"
	}
}
