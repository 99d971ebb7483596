// Package output writes converted tracks to disk.
//
// Files are named <base>.<lang>.srt (and <base>.<lang>.txt for plain
// transcripts). Writers in the same directory serialize on a lock file.
package output

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"whisperxsubs/internal/convert"
	"whisperxsubs/internal/fileutil"
	"whisperxsubs/internal/logging"
	"whisperxsubs/internal/services"
	"whisperxsubs/internal/srt"
	"whisperxsubs/internal/textutil"
)

// LockFileName is created in the output directory while tracks are written.
const LockFileName = ".whisperxsubs.lock"

const lockRetryDelay = 100 * time.Millisecond

// Kind distinguishes subtitle files from plain transcripts.
type Kind string

const (
	KindSubtitles  Kind = "srt"
	KindTranscript Kind = "txt"
)

// Options controls where and what is written.
type Options struct {
	// Dir receives the files. Required.
	Dir string
	// Base is the file name stem shared by every track.
	Base             string
	WriteTranscripts bool
	// Verify re-reads each written subtitle file and validates it.
	Verify bool
	Logger *slog.Logger
}

// File describes one written file.
type File struct {
	Language string
	Kind     Kind
	Path     string
	Cues     int
}

// BaseName derives the output stem from an input transcript path.
func BaseName(inputPath string) string {
	base := textutil.SanitizeFileName(fileutil.TrimExt(inputPath))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "subtitles"
	}
	return base
}

// Path returns the file a track would be written to.
func Path(dir, base, lang string, kind Kind) string {
	return filepath.Join(dir, fmt.Sprintf("%s.%s.%s", base, textutil.SanitizeToken(lang), kind))
}

// Write stores every track in result under opts.Dir.
func Write(ctx context.Context, result *convert.Result, opts Options) ([]File, error) {
	if result == nil {
		return nil, services.Wrap(services.ErrValidation, "output", "write", "result required", nil)
	}
	dir := strings.TrimSpace(opts.Dir)
	if dir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "output", "write", "output directory required", nil)
	}
	base := strings.TrimSpace(opts.Base)
	if base == "" {
		base = "subtitles"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "output", "create directory", dir, err)
	}

	lockPath := filepath.Join(dir, LockFileName)
	lock := flock.New(lockPath)
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, services.Wrap(services.ErrTimeout, "output", "acquire lock", lockPath, err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrTimeout, "output", "acquire lock", lockPath, errors.New("lock held by another writer"))
	}
	logger := logging.WithContext(services.WithStage(ctx, "write"), logging.NewComponentLogger(opts.Logger, "output"))
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release output lock", logging.String("lock", lockPath), logging.Error(err))
		}
	}()

	written := make([]File, 0, len(result.Languages)*2)
	for _, lang := range result.Languages {
		track := result.Tracks[lang]
		if track == nil {
			continue
		}
		path := Path(dir, base, lang, KindSubtitles)
		if err := fileutil.WriteFileAtomic(path, []byte(track.String()), 0o644); err != nil {
			return written, services.Wrap(services.ErrExternalTool, "output", "write subtitles", path, err)
		}
		if opts.Verify && track.Len() > 0 {
			if err := VerifyFile(path); err != nil {
				return written, err
			}
		}
		written = append(written, File{Language: lang, Kind: KindSubtitles, Path: path, Cues: track.Len()})
		logger.Info("subtitle track written",
			logging.String(logging.FieldLanguage, lang),
			logging.String("path", path),
			logging.Int("cues", track.Len()),
		)

		if !opts.WriteTranscripts {
			continue
		}
		textPath := Path(dir, base, lang, KindTranscript)
		if err := fileutil.WriteFileAtomic(textPath, []byte(Transcript(result.Texts[lang])), 0o644); err != nil {
			return written, services.Wrap(services.ErrExternalTool, "output", "write transcript", textPath, err)
		}
		written = append(written, File{Language: lang, Kind: KindTranscript, Path: textPath})
		logger.Debug("transcript written", logging.String(logging.FieldLanguage, lang), logging.String("path", textPath))
	}
	return written, nil
}

// Transcript renders per-segment texts one per line.
func Transcript(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// VerifyFile re-reads a written SRT file and reports structural problems.
func VerifyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "output", "verify", path, err)
	}
	if issues := srt.Validate(string(data)); len(issues) > 0 {
		return services.Wrap(services.ErrValidation, "output", "verify",
			fmt.Sprintf("%s: %s", path, strings.Join(issues, ", ")), nil)
	}
	return nil
}
