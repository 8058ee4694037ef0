package requests

import (
	"encoding/json"
	"net/url"

	"github.com/wmsforge/stockroom/pkg/query"
	"github.com/wmsforge/stockroom/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "requests", "r").
	Project("id", "ID").
	Project("content_hash", "ContentHash").
	Project("segment_type", "SegmentType").
	Project("structured_data", "StructuredData").
	Project("raw_content", "RawContent").
	Project("archive_key", "ArchiveKey").
	Project("status", "Status").
	Project("attempt", "Attempt").
	Project("reason", "Reason").
	Project("warnings", "Warnings").
	Project("submitted_at", "SubmittedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "SubmittedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for request queries.
// Nil fields are ignored.
type Filters struct {
	Status      *string `json:"status,omitempty"`
	ContentHash *string `json:"content_hash,omitempty"`
	SegmentType *string `json:"segment_type,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("ContentHash", f.ContentHash).
		WhereEquals("SegmentType", f.SegmentType)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}
	if h := values.Get("content_hash"); h != "" {
		f.ContentHash = &h
	}
	if st := values.Get("segment_type"); st != "" {
		f.SegmentType = &st
	}

	return f
}

func scanRequest(s repository.Scanner) (Request, error) {
	var (
		r         Request
		dataJSON  []byte
		warnsJSON []byte
	)
	err := s.Scan(
		&r.ID,
		&r.ContentHash,
		&r.SegmentType,
		&dataJSON,
		&r.RawContent,
		&r.ArchiveKey,
		&r.Status,
		&r.Attempt,
		&r.Reason,
		&warnsJSON,
		&r.SubmittedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return r, err
	}

	if len(dataJSON) > 0 {
		if err := json.Unmarshal(dataJSON, &r.StructuredData); err != nil {
			return r, err
		}
	}
	if len(warnsJSON) > 0 {
		if err := json.Unmarshal(warnsJSON, &r.Warnings); err != nil {
			return r, err
		}
	}

	return r, nil
}

func scanAssignment(s repository.Scanner) (Assignment, error) {
	var a Assignment
	err := s.Scan(
		&a.ID,
		&a.RequestID,
		&a.CategoryID,
		&a.SubCategory,
		&a.Kind,
		&a.Confidence,
		&a.Method,
		&a.ValidationStatus,
		&a.CreatedAt,
	)
	return a, err
}

func scanValidationResult(s repository.Scanner) (ValidationResult, error) {
	var v ValidationResult
	var message *string
	err := s.Scan(&v.RequestID, &v.RuleID, &v.Passed, &message)
	if message != nil {
		v.Message = *message
	}
	return v, err
}
