package journal

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"atlaswifi/internal/payload"
)

// Writer records each uplink payload handed to the transport as one line:
//
//	2026-10-15T08:30:00Z,2,3C52820000033C5282000001
//
// The MAC count travels with the payload since trailing zero bytes alone
// cannot tell an empty slot from a zero address.
type Writer struct {
	out    io.Writer
	logger *logrus.Logger
}

// NewWriter creates a payload journal writer on top of out
func NewWriter(out io.Writer, logger *logrus.Logger) *Writer {
	return &Writer{
		out:    out,
		logger: logger,
	}
}

// Record formats a journal line without the trailing newline
func Record(at time.Time, p payload.Payload) string {
	return fmt.Sprintf("%s,%d,%s", at.UTC().Format(time.RFC3339), p.Count, p.Hex())
}

// WritePayload appends p to the journal
func (w *Writer) WritePayload(at time.Time, p payload.Payload) error {
	if p.Count == 0 {
		return fmt.Errorf("payload carries no MAC address")
	}

	line := Record(at, p)
	if _, err := io.WriteString(w.out, line+"\n"); err != nil {
		return fmt.Errorf("failed to write journal record: %w", err)
	}

	w.logger.WithField("record", line).Debug("Payload journaled")
	return nil
}
