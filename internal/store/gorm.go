package store

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/piatra-institute/morviq/internal/queue"
)

// flushInterval is how often queued frame records are batch-inserted.
const flushInterval = 500 * time.Millisecond

// GormBackend persists the frame ledger through GORM, batching writes on
// a background goroutine the way the render loop's producers never block
// on ledger I/O.
type GormBackend struct {
	db       *gorm.DB
	log      zerolog.Logger
	local    bool
	pending  *queue.Queue[frameRow]
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewGorm opens a Postgres connection, falling back to a SQLite file at
// sqlitePath (or an in-memory database if sqlitePath is empty) if
// Postgres cannot be reached.
func NewGorm(log zerolog.Logger, sqlitePath string) (*GormBackend, error) {
	db, local, err := connection(log, sqlitePath)
	if err != nil {
		return nil, err
	}
	return newGormWithDB(db, log, local), nil
}

func newGormWithDB(db *gorm.DB, log zerolog.Logger, local bool) *GormBackend {
	return &GormBackend{
		db:      db,
		log:     log,
		local:   local,
		pending: queue.New[frameRow](),
	}
}

func (b *GormBackend) Init() error {
	if err := migrate(b.db); err != nil {
		return fmt.Errorf("store: migrating frame ledger: %w", err)
	}
	b.stopChan = make(chan struct{})
	b.doneChan = make(chan struct{})
	go b.flushLoop()
	return nil
}

func (b *GormBackend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		<-b.doneChan
	}
	b.flush()
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (b *GormBackend) RecordFrame(rec *FrameRecord) error {
	b.pending.Push(toRow(rec))
	return nil
}

func (b *GormBackend) RecentFrames(limit int) ([]FrameRecord, error) {
	var rows []frameRow
	q := b.db.Order("frame_number DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: querying recent frames: %w", err)
	}
	out := make([]FrameRecord, len(rows))
	for i, r := range rows {
		out[i] = fromRow(r)
	}
	return out, nil
}

func (b *GormBackend) flushLoop() {
	defer close(b.doneChan)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.flush()
		case <-b.stopChan:
			return
		}
	}
}

func (b *GormBackend) flush() {
	if b.pending.Empty() {
		return
	}
	rows := b.pending.GetAndEmpty()
	if err := b.db.CreateInBatches(rows, 200).Error; err != nil {
		b.log.Error().Err(err).Int("count", len(rows)).Msg("store: failed to flush frame records")
	}
}
