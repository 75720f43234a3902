package storage

import (
	"fmt"
	"strings"
)

const (
	DefaultMaxResults = 25
	MaxResultsLimit   = 200

	// MaxPage keeps (page-1)*MaxResultsLimit well inside int64.
	MaxPage = 1 << 30
)

// Lookup is an equality filter keyed by stored field name.
type Lookup map[string]interface{}

var lookupFields = map[string]bool{
	"_id":              true,
	"blog":             true,
	"type":             true,
	"particular_type":  true,
	"original_creator": true,
	"_id_document":     true,
	"_current_version": true,
}

var sortFields = map[string]bool{
	"_updated":         true,
	"_created":         true,
	"versioncreated":   true,
	"_current_version": true,
}

type SortKey struct {
	Field      string
	Descending bool
}

// Request carries paging and ordering for list reads.
type Request struct {
	Page       int
	MaxResults int
	Sort       []SortKey
}

func NewRequest() *Request {
	return &Request{Page: 1, MaxResults: DefaultMaxResults}
}

func (r *Request) Skip() int64 {
	if r.Page < 1 {
		return 0
	}
	page := int64(r.Page)
	if page > MaxPage {
		page = MaxPage
	}
	return (page - 1) * int64(r.Limit())
}

func (r *Request) Limit() int {
	if r.MaxResults < 1 {
		return DefaultMaxResults
	}
	if r.MaxResults > MaxResultsLimit {
		return MaxResultsLimit
	}
	return r.MaxResults
}

// SortOr returns the requested sort, falling back to def when none was asked for.
func (r *Request) SortOr(def []SortKey) []SortKey {
	if len(r.Sort) == 0 {
		return def
	}
	return r.Sort
}

// ParseSort reads a comma separated list like "-_updated,_created".
func ParseSort(raw string) ([]SortKey, error) {
	var keys []SortKey
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key := SortKey{Field: part}
		if strings.HasPrefix(part, "-") {
			key = SortKey{Field: part[1:], Descending: true}
		}
		if !sortFields[key.Field] {
			return nil, fmt.Errorf("cannot sort by %q: %w", key.Field, ClientError)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Merge combines a resource's static filter with a caller lookup. Filter
// entries win over lookup entries with the same key.
func Merge(filter, lookup Lookup) (Lookup, error) {
	merged := make(Lookup, len(filter)+len(lookup))
	for k, v := range lookup {
		if !lookupFields[k] {
			return nil, fmt.Errorf("unsupported lookup field %q: %w", k, ClientError)
		}
		merged[k] = v
	}
	for k, v := range filter {
		merged[k] = v
	}
	return merged, nil
}
