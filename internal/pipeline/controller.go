package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wmsforge/stockroom/internal/catalog"
	"github.com/wmsforge/stockroom/internal/classify"
	"github.com/wmsforge/stockroom/internal/records"
	"github.com/wmsforge/stockroom/internal/requests"
	"github.com/wmsforge/stockroom/internal/resolve"
	"github.com/wmsforge/stockroom/internal/segments"
	"github.com/wmsforge/stockroom/internal/syncer"
	"github.com/wmsforge/stockroom/internal/validate"
	"github.com/wmsforge/stockroom/pkg/formatting"
)

// DefaultConcurrency bounds batch processing.
const DefaultConcurrency = 8

type controller struct {
	catalog      *catalog.Catalog
	classifier   *classify.Classifier
	validator    *validate.Validator
	resolver     *resolve.Resolver
	orchestrator *records.Orchestrator
	syncer       *syncer.Syncer
	requests     requests.System
	mappings     records.MappingStore
	review       ReviewQueue
	logger       *slog.Logger
	concurrency  int
}

// New creates the pipeline controller. A zero concurrency selects
// DefaultConcurrency.
func New(
	cat *catalog.Catalog,
	classifier *classify.Classifier,
	validator *validate.Validator,
	resolver *resolve.Resolver,
	orchestrator *records.Orchestrator,
	sync *syncer.Syncer,
	reqs requests.System,
	mappings records.MappingStore,
	review ReviewQueue,
	logger *slog.Logger,
	concurrency int,
) System {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &controller{
		catalog:      cat,
		classifier:   classifier,
		validator:    validator,
		resolver:     resolver,
		orchestrator: orchestrator,
		syncer:       sync,
		requests:     reqs,
		mappings:     mappings,
		review:       review,
		logger:       logger.With("system", "pipeline"),
		concurrency:  concurrency,
	}
}

func (c *controller) Handler() *Handler {
	return NewHandler(c, c.logger)
}

func (c *controller) Ingest(ctx context.Context, seg segments.Segment, raw []byte) (*Result, error) {
	// Export tools frequently wrap structured payloads as plain or fenced
	// JSON in the text body. Lift those into structured data so schema
	// matching can see the fields.
	if len(seg.StructuredData) == 0 && seg.RawContent != "" {
		if data, err := formatting.Parse[map[string]any](seg.RawContent); err == nil && len(data) > 0 {
			seg.StructuredData = data
		}
	}

	if seg.Empty() {
		return nil, classify.ErrInputEmpty
	}

	hash, err := seg.ContentHash()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", requests.ErrInvalidRequest, err)
	}

	if existing, err := c.requests.FindActiveByHash(ctx, hash); err == nil {
		return c.duplicateResult(ctx, existing)
	} else if !errors.Is(err, requests.ErrNotFound) {
		return nil, err
	}

	req, err := c.requests.Create(ctx, requests.CreateCommand{Segment: seg, Raw: raw})
	if err != nil {
		// A concurrent ingestion of identical content won the insert.
		if errors.Is(err, requests.ErrDuplicate) {
			if existing, findErr := c.requests.FindActiveByHash(ctx, hash); findErr == nil {
				return c.duplicateResult(ctx, existing)
			}
		}
		return nil, err
	}

	return c.process(ctx, req, seg, "")
}

func (c *controller) duplicateResult(ctx context.Context, existing *requests.Request) (*Result, error) {
	mappings, err := c.mappings.ListByRequest(ctx, existing.ID)
	if err != nil {
		return nil, err
	}
	c.logger.Info("duplicate segment, returning existing request",
		"request", existing.ID, "hash", existing.ContentHash)
	return &Result{Request: existing, Mappings: mappings, Duplicate: true}, nil
}

func (c *controller) IngestBatch(ctx context.Context, segs []segments.Segment) ([]BatchResult, error) {
	results := make([]BatchResult, len(segs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, seg := range segs {
		g.Go(func() error {
			if gctx.Err() != nil {
				results[i] = BatchResult{SegmentID: seg.ID, Error: gctx.Err().Error()}
				return nil
			}
			res, err := c.Ingest(gctx, seg, nil)
			if err != nil {
				results[i] = BatchResult{SegmentID: seg.ID, Error: err.Error()}
				return nil
			}
			results[i] = BatchResult{SegmentID: seg.ID, Result: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (c *controller) Resume(ctx context.Context, requestID uuid.UUID, category string) error {
	detail, err := c.requests.Find(ctx, requestID)
	if err != nil {
		return err
	}

	req := &detail.Request
	if req.Status != requests.StatusProcessing {
		if req, err = c.requests.Transition(ctx, requestID, requests.StatusProcessing, ""); err != nil {
			return err
		}
	}

	_, err = c.process(ctx, req, req.Segment(), category)
	return err
}

func (c *controller) Delete(ctx context.Context, requestID uuid.UUID) error {
	if err := c.syncer.Delete(ctx, requestID); err != nil {
		return err
	}
	return c.requests.Delete(ctx, requestID)
}

// process runs one full pass over a request: classify, validate, resolve,
// store, and land the terminal transition. seg carries the submitted
// segment, which holds classification hints the persisted snapshot does not.
// pinned, when non-empty, is a reviewer-chosen category code that replaces
// classification.
func (c *controller) process(
	ctx context.Context,
	req *requests.Request,
	seg segments.Segment,
	pinned string,
) (*Result, error) {
	if req.Status == requests.StatusPending {
		moved, err := c.requests.Transition(ctx, req.ID, requests.StatusProcessing, "")
		if err != nil {
			return nil, err
		}
		req = moved
	}

	primary, outcome, reason, err := c.selectPrimary(&seg, pinned)
	if err != nil {
		return nil, err
	}
	if primary == nil {
		return c.park(ctx, req, reason)
	}

	secondaries, warnings := c.resolver.Resolve(primary.Category, outcome.Confidence, &seg)
	if len(warnings) > 0 {
		if err := c.requests.AppendWarnings(ctx, req.ID, warnings); err != nil {
			c.logger.Error("warning persistence failed", "request", req.ID, "error", err)
		}
	}

	assignments, results, accepted := c.collect(req, primary, outcome, secondaries, &seg)
	if err := c.requests.ReplaceAssignments(ctx, req.ID, assignments, results); err != nil {
		return nil, err
	}

	mappings, err := c.orchestrator.Store(ctx, req, accepted)
	if err != nil {
		return c.landStorageFailure(ctx, req, err)
	}

	final, err := c.requests.Transition(ctx, req.ID, requests.StatusCompleted, "")
	if err != nil {
		return nil, err
	}

	c.logger.Info("request completed",
		"request", req.ID, "primary", primary.Category.Code, "mappings", len(mappings))
	return &Result{Request: final, Mappings: mappings}, nil
}

// selectPrimary returns the winning primary candidate and its validation
// outcome, or a nil candidate with the manual-review reason.
func (c *controller) selectPrimary(
	seg *segments.Segment,
	pinned string,
) (*classify.Candidate, *validate.Outcome, string, error) {
	if pinned != "" {
		cat, err := c.catalog.CategoryByCode(pinned)
		if err != nil {
			return nil, nil, "", err
		}
		cand := &classify.Candidate{
			Category:    cat,
			SubCategory: catalog.SubFunctional,
			Confidence:  1.0,
			Method:      classify.MethodManual,
		}
		out := c.validator.Validate(cat, cand.Confidence, seg)
		if !out.Passed {
			return nil, nil, fmt.Sprintf(
				"manual assignment to %s failed validation: rule %s", pinned, out.FailingRule()), nil
		}
		return cand, &out, "", nil
	}

	candidates, err := c.classifier.Classify(seg)
	if err != nil {
		if errors.Is(err, classify.ErrInputEmpty) {
			return nil, nil, "segment input is empty", nil
		}
		return nil, nil, "", err
	}
	if len(candidates) == 0 {
		return nil, nil, "no category match above threshold", nil
	}

	reason := "no category match above threshold"
	for i := range candidates {
		cand := &candidates[i]
		out := c.validator.Validate(cand.Category, cand.Confidence, seg)
		if out.Eligible {
			return cand, &out, "", nil
		}
		if i == 0 && !out.Passed {
			reason = fmt.Sprintf("validation failed: rule %s", out.FailingRule())
		}
	}

	return nil, nil, reason, nil
}

// park routes a request to manual review. Classification and validation
// failures never surface as errors to the ingestion caller.
func (c *controller) park(ctx context.Context, req *requests.Request, reason string) (*Result, error) {
	moved, err := c.requests.Transition(ctx, req.ID, requests.StatusManualReview, reason)
	if err != nil {
		return nil, err
	}
	if err := c.review.Enqueue(ctx, req.ID, reason); err != nil {
		c.logger.Error("review enqueue failed", "request", req.ID, "error", err)
	}

	c.logger.Info("request parked for review", "request", req.ID, "reason", reason)
	return &Result{Request: moved}, nil
}

// landStorageFailure maps orchestrator errors onto the state machine:
// retryable backend failures return the request to Pending, aborted dual
// writes and routing bugs fail it.
func (c *controller) landStorageFailure(
	ctx context.Context,
	req *requests.Request,
	cause error,
) (*Result, error) {
	var to requests.Status
	switch {
	case errors.Is(cause, records.ErrStorageUnavailable), errors.Is(cause, records.ErrTimeout):
		to = requests.StatusPending
	default:
		to = requests.StatusFailed
	}

	if _, err := c.requests.Transition(ctx, req.ID, to, cause.Error()); err != nil {
		c.logger.Error("storage failure transition failed",
			"request", req.ID, "target", to, "error", err)
	}

	return nil, cause
}

// collect builds the persisted assignment set and the orchestrator input
// from a validated primary and its secondaries.
func (c *controller) collect(
	req *requests.Request,
	primary *classify.Candidate,
	outcome *validate.Outcome,
	secondaries []resolve.Secondary,
	seg *segments.Segment,
) ([]requests.Assignment, []requests.ValidationResult, []records.AcceptedAssignment) {
	assignments := make([]requests.Assignment, 0, 1+len(secondaries))
	accepted := make([]records.AcceptedAssignment, 0, 1+len(secondaries))

	pa := requests.Assignment{
		ID:               uuid.New(),
		RequestID:        req.ID,
		CategoryID:       primary.Category.ID,
		SubCategory:      primary.SubCategory,
		Kind:             requests.KindPrimary,
		Confidence:       outcome.Confidence,
		Method:           primary.Method,
		ValidationStatus: requests.ValidationValid,
	}
	assignments = append(assignments, pa)
	accepted = append(accepted, records.AcceptedAssignment{
		Assignment: pa,
		Category:   primary.Category,
		Payload:    validate.ProposedRecord(primary.Category, seg),
	})

	results := make([]requests.ValidationResult, 0, len(outcome.Results))
	for _, res := range outcome.Results {
		results = append(results, requests.ValidationResult{
			RequestID: req.ID,
			RuleID:    res.RuleID,
			Passed:    res.Passed,
			Message:   res.Message,
		})
	}

	for _, s := range secondaries {
		sa := requests.Assignment{
			ID:               uuid.New(),
			RequestID:        req.ID,
			CategoryID:       s.Category.ID,
			SubCategory:      s.SubCategory,
			Kind:             requests.KindSecondary,
			Confidence:       s.Confidence,
			Method:           classify.MethodRelevanceRule,
			ValidationStatus: requests.ValidationValid,
		}
		assignments = append(assignments, sa)
		accepted = append(accepted, records.AcceptedAssignment{
			Assignment: sa,
			Category:   s.Category,
			Payload:    validate.ProposedRecord(s.Category, seg),
		})
	}

	return assignments, results, accepted
}
