package id

import (
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	if id1.String() == id2.String() {
		t.Error("Generated IDs should be unique")
	}
}

func TestGenerateWithPrefix(t *testing.T) {
	gen := NewGenerator()

	for _, prefix := range []string{BlueprintPrefix, RequestPrefix, SpanPrefix} {
		id := gen.GenerateWithPrefix(prefix)

		if !strings.HasPrefix(id, prefix+"_") {
			t.Errorf("ID should start with '%s_', got: %s", prefix, id)
		}
		if !IsValidPrefixed(id, prefix) {
			t.Errorf("ID should be a valid prefixed ULID: %s", id)
		}
	}
}

func TestBlueprintIDsSortByCreation(t *testing.T) {
	base := time.Now()
	var ids []string
	for i := 0; i < 50; i++ {
		// Same millisecond for the first half exercises monotonic entropy
		ids = append(ids, NewBlueprintID(base.Add(time.Duration(i/25)*time.Millisecond)).String())
	}

	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	for i := range ids {
		if ids[i] != sorted[i] {
			t.Fatalf("IDs should sort in creation order, mismatch at %d", i)
		}
	}
}

func TestIsValid(t *testing.T) {
	valid := NewGenerator().Generate().String()
	if !IsValid(valid) {
		t.Error("Generated ULID should be valid")
	}

	for _, id := range []string{"", "invalid", "1234567890", "zzzzzzzzzzzzzzzzzzzzzzzzzzz"} {
		if IsValid(id) {
			t.Errorf("ID should be invalid: %s", id)
		}
	}

	if IsValidPrefixed("req_"+valid, BlueprintPrefix) {
		t.Error("Prefix mismatch should be invalid")
	}
}

func TestTimestamp(t *testing.T) {
	before := time.Now()
	id := NewBlueprintID(time.Now())
	after := time.Now()

	ts, err := Timestamp(id.String())
	if err != nil {
		t.Fatalf("Failed to extract timestamp: %v", err)
	}

	if ts.UnixMilli() < before.UnixMilli() || ts.UnixMilli() > after.UnixMilli() {
		t.Errorf("Timestamp should be between %d and %d ms, got %d ms",
			before.UnixMilli(), after.UnixMilli(), ts.UnixMilli())
	}
}

func TestConcurrentGeneration(t *testing.T) {
	const goroutines = 50
	const perGoroutine = 100

	var wg sync.WaitGroup
	ch := make(chan string, goroutines*perGoroutine)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				ch <- NewRequestID().String()
			}
		}()
	}
	wg.Wait()
	close(ch)

	seen := make(map[string]bool)
	for id := range ch {
		if seen[id] {
			t.Fatalf("Duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}
