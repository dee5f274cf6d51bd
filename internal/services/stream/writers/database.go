package writers

import (
	"time"

	"github.com/kp666/twitter-stream/internal/models"
	"github.com/kp666/twitter-stream/internal/services/stream/contracts"

	"gorm.io/gorm"
)

// DefaultBatchSize is used when the database config sets none
const DefaultBatchSize = 100

var _ contracts.StreamWriter = (*DatabaseStreamWriter)(nil)

// DatabaseStreamWriter archives lines as StreamRecord rows. Lines are
// inserted once a full batch is buffered, and on Close.
type DatabaseStreamWriter struct {
	db        *gorm.DB
	sessionID string
	batchSize int
	batch     []models.StreamRecord
	seq       int64
	stored    int64
	now       func() time.Time
}

// NewDatabaseStreamWriter creates a new database writer
func NewDatabaseStreamWriter(db *gorm.DB, sessionID string, batchSize int) *DatabaseStreamWriter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &DatabaseStreamWriter{
		db:        db,
		sessionID: sessionID,
		batchSize: batchSize,
		batch:     make([]models.StreamRecord, 0, batchSize),
		now:       time.Now,
	}
}

// Write buffers the line as the next record of the session
func (w *DatabaseStreamWriter) Write(line []byte) error {
	w.seq++
	w.batch = append(w.batch, models.StreamRecord{
		SessionID:  w.sessionID,
		Seq:        w.seq,
		Payload:    string(line),
		ReceivedAt: w.now().UTC(),
	})
	return nil
}

// Flush inserts the batch once it is full
func (w *DatabaseStreamWriter) Flush() error {
	if len(w.batch) < w.batchSize {
		return nil
	}
	return w.persist()
}

// Close inserts whatever is buffered
func (w *DatabaseStreamWriter) Close() error {
	return w.persist()
}

// persist drops the batch even when the insert fails so memory stays bounded
func (w *DatabaseStreamWriter) persist() error {
	if len(w.batch) == 0 {
		return nil
	}
	n := len(w.batch)
	err := w.db.CreateInBatches(&w.batch, w.batchSize).Error
	w.batch = w.batch[:0]
	if err != nil {
		return contracts.NewInternalError(w.sessionID, "insert stream records failed", err)
	}
	w.stored += int64(n)
	return nil
}

// Stored returns the number of records inserted
func (w *DatabaseStreamWriter) Stored() int64 {
	return w.stored
}

// Pending returns the number of buffered records
func (w *DatabaseStreamWriter) Pending() int {
	return len(w.batch)
}
