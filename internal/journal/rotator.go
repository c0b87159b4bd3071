package journal

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	filePrefix = "uplink_"
	dateLayout = "2006-01-02"
)

// Rotator keeps one journal file per day and gzips the previous day's file
// on rotation
type Rotator struct {
	dir         string
	useUTC      bool
	logger      *logrus.Logger
	now         func() time.Time
	currentFile *os.File
	currentDate string
	mutex       sync.RWMutex
	compressWG  sync.WaitGroup
}

// NewRotator creates dir if needed and opens today's journal file
func NewRotator(dir string, useUTC bool, logger *logrus.Logger) (*Rotator, error) {
	return newRotator(dir, useUTC, logger, time.Now)
}

func newRotator(dir string, useUTC bool, logger *logrus.Logger, now func() time.Time) (*Rotator, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	r := &Rotator{
		dir:    dir,
		useUTC: useUTC,
		logger: logger,
		now:    now,
	}

	if err := r.rotate(); err != nil {
		return nil, fmt.Errorf("failed to open journal file: %w", err)
	}

	return r, nil
}

func (r *Rotator) today() string {
	now := r.now()
	if r.useUTC {
		now = now.UTC()
	}
	return now.Format(dateLayout)
}

// CheckRotation switches to a new file when the date has changed
func (r *Rotator) CheckRotation() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.currentDate == r.today() {
		return
	}

	r.logger.WithFields(logrus.Fields{
		"old_date": r.currentDate,
		"new_date": r.today(),
	}).Info("Rotating uplink journal")

	if err := r.rotate(); err != nil {
		r.logger.WithError(err).Error("Failed to rotate uplink journal")
	}
}

// rotate must be called with the mutex held, or before the rotator is shared
func (r *Rotator) rotate() error {
	newDate := r.today()

	// Close current file if it exists
	if r.currentFile != nil {
		if err := r.currentFile.Close(); err != nil {
			r.logger.WithError(err).Error("Failed to close journal file")
		}
		r.currentFile = nil

		// Compress the old file in the background
		oldDate := r.currentDate
		r.compressWG.Add(1)
		go func() {
			defer r.compressWG.Done()
			r.compress(oldDate)
		}()
	}

	// Open the new day's file
	path := r.pathFor(newDate)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create journal file %s: %w", path, err)
	}

	r.currentFile = file
	r.currentDate = newDate

	r.logger.WithField("file", path).Debug("Opened uplink journal")
	return nil
}

func (r *Rotator) pathFor(date string) string {
	return filepath.Join(r.dir, filePrefix+date+".log")
}

// compress gzips the journal for date and removes the plain file
func (r *Rotator) compress(date string) {
	src := r.pathFor(date)
	dst := src + ".gz"

	if err := gzipFile(src, dst); err != nil {
		r.logger.WithError(err).WithField("file", src).Error("Failed to compress journal file")
		return
	}

	if err := os.Remove(src); err != nil {
		r.logger.WithError(err).WithField("file", src).Error("Failed to remove journal file")
		return
	}

	r.logger.WithField("file", dst).Info("Journal file compressed")
}

func gzipFile(src, dst string) error {
	// Open source file
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	// Create compressed file
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	gz.Name = filepath.Base(src)
	gz.ModTime = time.Now()

	// Copy data, then close the gzip writer to flush it
	if _, err := io.Copy(gz, in); err != nil {
		gz.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	return out.Close()
}

// Write appends p to the current journal file
func (r *Rotator) Write(p []byte) (int, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if r.currentFile == nil {
		return 0, fmt.Errorf("journal is closed")
	}
	return r.currentFile.Write(p)
}

// CurrentFile returns the path of the file being written
func (r *Rotator) CurrentFile() string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if r.currentDate == "" {
		return ""
	}
	return r.pathFor(r.currentDate)
}

// Files lists all journal files, compressed ones included
func (r *Rotator) Files() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(r.dir, filePrefix+"*.log*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list journal files: %w", err)
	}
	return files, nil
}

// Cleanup removes journal files last modified more than maxDays ago. The
// current file is never removed.
func (r *Rotator) Cleanup(maxDays int) (int, error) {
	if maxDays <= 0 {
		return 0, fmt.Errorf("maxDays must be positive")
	}

	files, err := r.Files()
	if err != nil {
		return 0, err
	}

	cutoff := r.now().AddDate(0, 0, -maxDays)
	current := r.CurrentFile()

	removed := 0
	for _, file := range files {
		// Skip current journal file
		if file == current {
			continue
		}
		info, err := os.Stat(file)
		if err != nil {
			r.logger.WithError(err).WithField("file", file).Warn("Failed to stat journal file")
			continue
		}
		// Check if file is old enough to remove
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(file); err != nil {
			r.logger.WithError(err).WithField("file", file).Error("Failed to remove old journal file")
			continue
		}
		removed++
	}

	r.logger.WithField("count", removed).Debug("Cleaned up old journal files")
	return removed, nil
}

// Close closes the current file and waits for pending compression
func (r *Rotator) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var err error
	if r.currentFile != nil {
		err = r.currentFile.Close()
		r.currentFile = nil
	}
	r.compressWG.Wait()
	return err
}
