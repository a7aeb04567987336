package logger

import (
	"context"
	"sync"
	"testing"
	"time"

	common_models "eduvibe/internal/common/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type memoryStore struct {
	mu   sync.Mutex
	docs []common_models.Log
}

func (s *memoryStore) InsertOne(_ context.Context, document interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, document.(common_models.Log))
	return &mongo.InsertOneResult{}, nil
}

func TestDBCoreTeesEntriesWithContextFields(t *testing.T) {
	store := &memoryStore{}
	writer := NewDBLogWriter(store, "eduvibe-test", 10)
	observed, logs := observer.New(zapcore.InfoLevel)

	log := zap.New(NewDBCore(observed, writer)).With(zap.String(FieldUserID, "u-1"))
	log.Info("session booked", zap.String(FieldIP, "10.0.0.1"), zap.Int("minutes", 60))
	log.Debug("dropped below level")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, writer.Close(ctx))

	assert.Equal(t, 1, logs.Len())
	require.Len(t, store.docs, 1)
	doc := store.docs[0]
	assert.Equal(t, "eduvibe-test", doc.AppID)
	assert.Equal(t, "session booked", doc.Message)
	assert.Equal(t, "u-1", doc.UserID)
	assert.Equal(t, "10.0.0.1", doc.IpAddress)
	assert.Equal(t, 20, doc.LogLevelId)
}

func TestAddLogDropsWhenBufferIsFull(t *testing.T) {
	w := &DBLogWriter{logChan: make(chan LogEntry, 1), done: make(chan struct{})}

	w.AddLog(LogEntry{Message: "first"})
	w.AddLog(LogEntry{Message: "second"})

	assert.Len(t, w.logChan, 1)
}

func TestMapLevelToInt(t *testing.T) {
	assert.Equal(t, 10, mapLevelToInt(zapcore.DebugLevel))
	assert.Equal(t, 40, mapLevelToInt(zapcore.ErrorLevel))
	assert.Equal(t, 50, mapLevelToInt(zapcore.FatalLevel))
}
