package state

import (
	"context"
	"fmt"

	"github.com/nareshsaladi2024/OICAgentOps/types"
)

// Document is the whole correlation record. Zero value means "no prior
// runs": every field is optional and absent fields stay absent in the
// persisted JSON.
type Document struct {
	LastFailedInstanceIDs []string               `json:"lastFailedInstanceIds,omitempty"`
	LastRecoveryJobIDs    []string               `json:"lastRecoveryJobIds,omitempty"`
	ActiveEnvironment     string                 `json:"activeEnvironment,omitempty"`
	LastResubmitSummary   *types.ResubmitSummary `json:"lastResubmitSummary,omitempty"`
}

// Clone returns a deep copy so callers can mutate freely.
func (d Document) Clone() Document {
	out := d
	if d.LastFailedInstanceIDs != nil {
		out.LastFailedInstanceIDs = append([]string(nil), d.LastFailedInstanceIDs...)
	}
	if d.LastRecoveryJobIDs != nil {
		out.LastRecoveryJobIDs = append([]string(nil), d.LastRecoveryJobIDs...)
	}
	if d.LastResubmitSummary != nil {
		s := *d.LastResubmitSummary
		out.LastResubmitSummary = &s
	}
	return out
}

// Patch describes a partial update. Nil fields leave the current value
// untouched; non-nil fields replace it wholesale. Slices are replaced,
// never appended, so stale job ids from a previous resubmission cannot
// leak into the next status check.
type Patch struct {
	LastFailedInstanceIDs *[]string
	LastRecoveryJobIDs    *[]string
	ActiveEnvironment     *string
	LastResubmitSummary   *types.ResubmitSummary
}

func (p Patch) apply(doc *Document) {
	if p.LastFailedInstanceIDs != nil {
		doc.LastFailedInstanceIDs = append([]string(nil), (*p.LastFailedInstanceIDs)...)
	}
	if p.LastRecoveryJobIDs != nil {
		doc.LastRecoveryJobIDs = append([]string(nil), (*p.LastRecoveryJobIDs)...)
	}
	if p.ActiveEnvironment != nil {
		doc.ActiveEnvironment = *p.ActiveEnvironment
	}
	if p.LastResubmitSummary != nil {
		s := *p.LastResubmitSummary
		doc.LastResubmitSummary = &s
	}
}

// Strings is a convenience for building slice patch fields inline.
func Strings(v []string) *[]string { return &v }

// String is a convenience for building string patch fields inline.
func String(v string) *string { return &v }

// Store is the correlation store contract. Read never fails on missing or
// corrupt state; it falls back to an empty document so a damaged file can
// not wedge the workflow.
type Store interface {
	// Read returns the current document, empty if none exists.
	Read(ctx context.Context) (Document, error)

	// Merge applies the patch to the current document and persists the
	// result atomically with respect to other Merge calls on this store.
	Merge(ctx context.Context, patch Patch) (Document, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// StoreType identifies a backend implementation.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeFile   StoreType = "file"
	StoreTypeRedis  StoreType = "redis"
)

// StoreConfig selects and configures a backend.
type StoreConfig struct {
	Type StoreType `yaml:"type" env:"TYPE"`

	// File backend
	FilePath string `yaml:"file_path" env:"FILE_PATH"`

	// Redis backend
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB"`
	RedisKey      string `yaml:"redis_key" env:"REDIS_KEY"`
}

// DefaultStoreConfig returns a file-backed configuration writing next to
// the working directory.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Type:     StoreTypeFile,
		FilePath: "oic_agent_state.json",
	}
}

// NewStore builds a store from configuration.
func NewStore(cfg StoreConfig) (Store, error) {
	switch cfg.Type {
	case StoreTypeMemory:
		return NewMemoryStore(), nil
	case StoreTypeFile, "":
		path := cfg.FilePath
		if path == "" {
			path = DefaultStoreConfig().FilePath
		}
		return NewFileStore(path)
	case StoreTypeRedis:
		return NewRedisStore(cfg)
	default:
		return nil, fmt.Errorf("unknown state store type: %s", cfg.Type)
	}
}
