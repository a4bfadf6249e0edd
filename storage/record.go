// Package storage persists per-analysis compliance records using NATS KV.
// This is the workspace-persistence boundary: verdict history is stored for
// audit display, never read back by the decision engine itself.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
)

// BucketAnalyses is the KV bucket holding analysis records.
const BucketAnalyses = "COMPLIANCE_ANALYSES"

// recordIDPrefix namespaces analysis record IDs.
const recordIDPrefix = "analysis"

// Record captures the durable summary of one compliance analysis.
type Record struct {
	ID             string    `json:"id"`
	WorkspaceID    string    `json:"workspace_id"`
	UserID         string    `json:"user_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	Frameworks     []string  `json:"frameworks"`
	ViolationCount int       `json:"violation_count"`
	Blocking       bool      `json:"blocking"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewRecordID generates a unique analysis record ID.
func NewRecordID() string {
	return fmt.Sprintf("%s:%s", recordIDPrefix, uuid.New().String())
}

// ParseRecordID validates a record ID and returns its key component.
func ParseRecordID(s string) (string, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[0] != recordIDPrefix || parts[1] == "" {
		return "", fmt.Errorf("invalid analysis record ID: %s", s)
	}
	return parts[1], nil
}

// Store provides analysis-record storage backed by NATS KV.
type Store struct {
	analyses jetstream.KeyValue
}

// NewStore creates a Store, creating the backing bucket if needed.
func NewStore(ctx context.Context, js jetstream.JetStream) (*Store, error) {
	analyses, err := getOrCreateBucket(ctx, js, BucketAnalyses)
	if err != nil {
		return nil, fmt.Errorf("create analyses bucket: %w", err)
	}
	return &Store{analyses: analyses}, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	// Bucket doesn't exist, create it
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: "Compliance analysis records",
		History:     5,
	})
}

// CreateRecord stores a new analysis record and returns its ID.
func (s *Store) CreateRecord(ctx context.Context, r *Record) (string, error) {
	id := NewRecordID()
	key, _ := ParseRecordID(id)

	r.ID = id
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}

	if _, err := s.analyses.Create(ctx, key, data); err != nil {
		return "", fmt.Errorf("store record: %w", err)
	}

	return id, nil
}

// GetRecord retrieves an analysis record by ID.
func (s *Store) GetRecord(ctx context.Context, id string) (*Record, error) {
	key, err := ParseRecordID(id)
	if err != nil {
		return nil, err
	}

	entry, err := s.analyses.Get(ctx, key)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get record: %w", err)
	}

	var r Record
	if err := json.Unmarshal(entry.Value(), &r); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}

	return &r, nil
}

// ListRecords returns all analysis records for a workspace, most recent first.
func (s *Store) ListRecords(ctx context.Context, workspaceID string) ([]*Record, error) {
	lister, err := s.analyses.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list record keys: %w", err)
	}

	var records []*Record
	for key := range lister.Keys() {
		entry, err := s.analyses.Get(ctx, key)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("get record %s: %w", key, err)
		}

		var r Record
		if err := json.Unmarshal(entry.Value(), &r); err != nil {
			continue
		}
		if workspaceID == "" || r.WorkspaceID == workspaceID {
			records = append(records, &r)
		}
	}

	// Most recent first.
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records, nil
}

// isNotFound checks if an error indicates a key was not found.
func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "key not found")
}
