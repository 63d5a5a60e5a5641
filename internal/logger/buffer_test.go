package logger

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLogBufferConcurrentAccess(t *testing.T) {
	buffer := NewLogBuffer(100)

	// Simulate concurrent log writes
	var wg sync.WaitGroup
	numGoroutines := 10
	logsPerGoroutine := 100

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < logsPerGoroutine; j++ {
				fields := map[string]interface{}{
					"goroutine": id,
					"iteration": j,
				}
				buffer.Add("info", fmt.Sprintf("Log from goroutine %d, iteration %d", id, j), fields)
			}
		}(i)
	}

	// Concurrent reads
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			_ = buffer.GetRecentLogs(10)
			_, _ = buffer.GetStats()
			time.Sleep(time.Millisecond)
		}
	}()

	wg.Wait()
	<-done

	total, dropped := buffer.GetStats()
	t.Logf("Total entries: %d, Dropped entries: %d", total, dropped)

	expectedTotal := uint64(numGoroutines * logsPerGoroutine)
	if total != expectedTotal {
		t.Errorf("Expected %d total entries, got %d", expectedTotal, total)
	}
	if dropped != expectedTotal-100 {
		t.Errorf("Expected %d dropped entries, got %d", expectedTotal-100, dropped)
	}
	if got := len(buffer.GetRecentLogs(0)); got != 100 {
		t.Errorf("Expected 100 logs held, got %d", got)
	}
}

func TestLogBufferRingBufferBehavior(t *testing.T) {
	bufferSize := 5
	buffer := NewLogBuffer(bufferSize)

	// Add more logs than buffer size
	for i := 0; i < 10; i++ {
		buffer.Add("info", fmt.Sprintf("Log %d", i), nil)
	}

	logs := buffer.GetRecentLogs(10)
	if len(logs) != bufferSize {
		t.Fatalf("Expected %d logs in buffer, got %d", bufferSize, len(logs))
	}

	if logs[0].Message != "Log 5" {
		t.Errorf("Expected first log to be 'Log 5', got '%s'", logs[0].Message)
	}
	if lastLog := logs[len(logs)-1]; lastLog.Message != "Log 9" {
		t.Errorf("Expected last log to be 'Log 9', got '%s'", lastLog.Message)
	}

	recent := buffer.GetRecentLogs(2)
	if len(recent) != 2 || recent[0].Message != "Log 8" || recent[1].Message != "Log 9" {
		t.Errorf("Unexpected tail: %+v", recent)
	}
}

func TestLogBufferBeforeWrap(t *testing.T) {
	buffer := NewLogBuffer(10)
	buffer.Add("info", "first", nil)
	buffer.Add("warn", "second", nil)

	logs := buffer.GetRecentLogs(0)
	if len(logs) != 2 {
		t.Fatalf("Expected 2 logs, got %d", len(logs))
	}
	if logs[0].Message != "first" || logs[1].Message != "second" {
		t.Errorf("Unexpected order: %+v", logs)
	}

	buffer.Clear()
	if got := len(buffer.GetRecentLogs(0)); got != 0 {
		t.Errorf("Expected empty buffer after Clear, got %d", got)
	}
	if total, _ := buffer.GetStats(); total != 2 {
		t.Errorf("Clear should keep counters, got total %d", total)
	}
}

func TestLogBufferAsZapSink(t *testing.T) {
	buffer := NewLogBuffer(20)
	log, err := CreateTUILogger(true, buffer, nil)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	log.Named("api").Warn("GET failed", zap.String("path", "/api/v1/pairs"), zap.Int("status", 502))
	log.Debug("tick")
	_ = log.Sync()

	logs := buffer.GetRecentLogs(0)
	if len(logs) != 2 {
		t.Fatalf("Expected 2 logs, got %d", len(logs))
	}

	first := logs[0]
	if first.Level != "warn" || first.Logger != "api" || first.Message != "GET failed" {
		t.Errorf("Unexpected entry: %+v", first)
	}
	if first.Fields["path"] != "/api/v1/pairs" {
		t.Errorf("Expected path field, got %v", first.Fields["path"])
	}
	if first.Fields["status"] != float64(502) {
		t.Errorf("Expected status field 502, got %v", first.Fields["status"])
	}
	if first.Timestamp.IsZero() {
		t.Error("Expected a timestamp")
	}

	warnings := buffer.GetByLevel(zapcore.WarnLevel, 0)
	if len(warnings) != 1 || warnings[0].Message != "GET failed" {
		t.Errorf("Expected only the warning, got %+v", warnings)
	}
}

func TestLogBufferWritePlainText(t *testing.T) {
	buffer := NewLogBuffer(5)
	n, err := buffer.Write([]byte("not json\n\n"))
	if err != nil || n != 10 {
		t.Fatalf("Write returned %d, %v", n, err)
	}
	logs := buffer.GetRecentLogs(0)
	if len(logs) != 1 || logs[0].Message != "not json" {
		t.Errorf("Unexpected entries: %+v", logs)
	}
}
