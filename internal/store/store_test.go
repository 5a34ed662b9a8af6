package store

import (
	"context"
	"testing"
)

func TestStatsNilStore(t *testing.T) {
	var s *Store
	if got := s.Stats(); got != nil {
		t.Fatalf("Stats() on nil store = %v, want nil", got)
	}

	empty := &Store{}
	if got := empty.Stats(); got != nil {
		t.Fatalf("Stats() on store without pool = %v, want nil", got)
	}
}

func TestCloseNilStore(t *testing.T) {
	var s *Store
	s.Close()

	empty := &Store{}
	empty.Close()
}

func TestHealthCheckWithoutPool(t *testing.T) {
	var s *Store
	if err := s.HealthCheck(context.Background()); err == nil {
		t.Fatalf("HealthCheck() on nil store expected error")
	}

	empty := &Store{}
	if err := empty.HealthCheck(context.Background()); err == nil {
		t.Fatalf("HealthCheck() on store without pool expected error")
	}
}

func TestOpenRejectsBadURL(t *testing.T) {
	_, err := Open(context.Background(), "://not-a-url", Options{})
	if err == nil {
		t.Fatalf("Open() with malformed url expected error")
	}
}
