package logger

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	common_models "eduvibe/internal/common/models"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap/zapcore"
)

// LogEntry holds the data passed from Zap to our worker
type LogEntry struct {
	Level     zapcore.Level
	Message   string
	IpAddress string
	UserID    string
	RequestID string
	Caller    string
}

// LogStore is the subset of *mongo.Collection the writer needs.
type LogStore interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// DBLogWriter persists log entries from a buffered channel on a single goroutine.
type DBLogWriter struct {
	store   LogStore
	logChan chan LogEntry
	appId   string
	done    chan struct{}
	once    sync.Once
}

func NewDBLogWriter(store LogStore, appId string, buffer int) *DBLogWriter {
	if buffer <= 0 {
		buffer = 1000
	}
	writer := &DBLogWriter{
		store:   store,
		logChan: make(chan LogEntry, buffer),
		appId:   appId,
		done:    make(chan struct{}),
	}

	go writer.processLogs()

	return writer
}

// AddLog never blocks; a full buffer drops the entry.
func (w *DBLogWriter) AddLog(entry LogEntry) {
	select {
	case w.logChan <- entry:
	default:
		fmt.Fprintln(os.Stderr, "DB Log Channel Full! Dropping log:", entry.Message)
	}
}

// Close drains the buffer and waits for the worker to finish or ctx to expire.
func (w *DBLogWriter) Close(ctx context.Context) error {
	w.once.Do(func() { close(w.logChan) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *DBLogWriter) processLogs() {
	defer close(w.done)
	for entry := range w.logChan {
		record := common_models.Log{
			AppID:        w.appId,
			Message:      entry.Message,
			Level:        entry.Level.String(),
			LogLevelId:   mapLevelToInt(entry.Level),
			IpAddress:    entry.IpAddress,
			UserID:       entry.UserID,
			RequestID:    entry.RequestID,
			Caller:       entry.Caller,
			CreatedOnUtc: time.Now().UTC(),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if _, err := w.store.InsertOne(ctx, record); err != nil {
			fmt.Fprintln(os.Stderr, "failed to persist log:", err)
		}
		cancel()
	}
}

func mapLevelToInt(l zapcore.Level) int {
	switch l {
	case zapcore.DebugLevel:
		return 10
	case zapcore.InfoLevel:
		return 20
	case zapcore.WarnLevel:
		return 30
	case zapcore.ErrorLevel:
		return 40
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return 50
	default:
		return 20
	}
}
