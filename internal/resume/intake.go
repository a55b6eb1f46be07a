package resume

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/career-path/internal/observability"
	"github.com/jonathan/career-path/internal/storage"
	"go.uber.org/zap"
)

// DefaultMaxBytes is the upload size limit when none is configured.
const DefaultMaxBytes int64 = 10 << 20

// ErrTooLarge is returned for uploads above the configured limit.
var ErrTooLarge = errors.New("resume file is too large")

// ErrEmptyFile is returned for zero-byte uploads.
var ErrEmptyFile = errors.New("resume file is empty")

// Upload is a processed résumé ready to be recorded.
type Upload struct {
	FileName string
	// FilePath is the s3:// URI of the stored raw file, empty when the raw
	// file was not stored.
	FilePath string
	Format   Format
	// Text is the extracted text cut to MaxStoredChars.
	Text   string
	Parsed ParsedData
}

// Intake validates, parses and optionally archives résumé uploads.
type Intake struct {
	store    storage.ObjectStore
	bucket   string
	maxBytes int64
	logger   *zap.Logger
}

// NewIntake creates an Intake. Raw files are archived only when both store
// and bucket are set.
func NewIntake(store storage.ObjectStore, bucket string, maxBytes int64, logger *zap.Logger) *Intake {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Intake{store: store, bucket: bucket, maxBytes: maxBytes, logger: logger}
}

// MaxBytes is the upload size limit.
func (in *Intake) MaxBytes() int64 { return in.maxBytes }

// Process extracts text and skills from one uploaded file. Archival
// failures are logged and leave FilePath empty.
func (in *Intake) Process(ctx context.Context, userID int64, filename string, data []byte) (*Upload, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		observability.ResumeUploadsTotal.WithLabelValues("unsupported", observability.OutcomeFailure).Inc()
		return nil, err
	}
	if len(data) == 0 {
		observability.ResumeUploadsTotal.WithLabelValues(string(format), observability.OutcomeFailure).Inc()
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > in.maxBytes {
		observability.ResumeUploadsTotal.WithLabelValues(string(format), observability.OutcomeFailure).Inc()
		return nil, ErrTooLarge
	}

	text, err := ExtractText(format, data)
	if err != nil {
		observability.ResumeUploadsTotal.WithLabelValues(string(format), observability.OutcomeFailure).Inc()
		return nil, err
	}
	text = Sanitize(text)

	upload := &Upload{
		FileName: filepath.Base(filename),
		Format:   format,
		Text:     Truncate(text, MaxStoredChars),
		Parsed:   Parse(text),
	}
	upload.FilePath = in.archive(ctx, userID, format, data)

	observability.ResumeUploadsTotal.WithLabelValues(string(format), observability.OutcomeSuccess).Inc()
	return upload, nil
}

func (in *Intake) archive(ctx context.Context, userID int64, format Format, data []byte) string {
	if in.store == nil || in.bucket == "" {
		return ""
	}
	key := ObjectKey(userID, format)
	if err := in.store.Put(ctx, in.bucket, key, format.ContentType(), data); err != nil {
		in.logger.Warn("failed to archive resume",
			zap.Int64("user_id", userID),
			zap.String("bucket", in.bucket),
			zap.Error(err))
		return ""
	}
	return storage.URI(in.bucket, key)
}

// ObjectKey is the storage key for a new upload by userID.
func ObjectKey(userID int64, format Format) string {
	return fmt.Sprintf("resumes/%d/%s.%s", userID, strings.ReplaceAll(uuid.NewString(), "-", ""), format)
}
