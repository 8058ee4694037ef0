// Package semantic provides the vector-embedding store backing similarity
// search. Records are held in SQLite vec0 virtual tables, one per declared
// collection, and linked to their structured counterparts by a shared link id.
package semantic

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/wmsforge/stockroom/pkg/lifecycle"
)

// Document is a single semantic record: the embeddable text plus the link
// identifier shared with the structured record.
type Document struct {
	LinkID    uuid.UUID `json:"link_id"`
	RequestID uuid.UUID `json:"request_id"`
	Content   string    `json:"content"`
}

// Match is a similarity search hit. Similarity is 1 - cosine distance.
type Match struct {
	Document
	Similarity float64 `json:"similarity"`
	Rank       int     `json:"rank"`
}

// Store defines the semantic store contract used by the storage orchestrator,
// the sync manager, and the search surface.
type Store interface {
	// Start registers a startup hook that opens the database and creates the
	// declared collections.
	Start(lc *lifecycle.Coordinator) error
	// Insert embeds doc.Content and writes it to the collection.
	Insert(ctx context.Context, collection string, doc Document) error
	// Replace removes any existing document with doc.LinkID and inserts the
	// new content.
	Replace(ctx context.Context, collection string, doc Document) error
	// Delete removes the document with the given link id.
	// Returns ErrNotFound if no such document exists.
	Delete(ctx context.Context, collection string, linkID uuid.UUID) error
	// Search returns the k nearest documents to the query text.
	Search(ctx context.Context, collection string, query string, k int) ([]Match, error)
}

var collectionPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

type store struct {
	db          *sql.DB
	embedder    Embedder
	collections []string
	logger      *slog.Logger
}

// New creates a semantic store over the SQLite database at cfg.Path.
// Collections are the vec0 tables declared by the routing catalog; they are
// created during Start.
func New(cfg *Config, embedder Embedder, collections []string, logger *slog.Logger) (Store, error) {
	for _, c := range collections {
		if !collectionPattern.MatchString(c) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCollection, c)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open semantic store: %w", err)
	}

	return &store{
		db:          db,
		embedder:    embedder,
		collections: collections,
		logger:      logger.With("system", "semantic"),
	}, nil
}

func (s *store) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting semantic store")

	lc.OnStartup(func() {
		for _, c := range s.collections {
			q := fmt.Sprintf(
				`CREATE VIRTUAL TABLE IF NOT EXISTS %s USING vec0(
					embedding float[%d],
					link_id TEXT,
					request_id TEXT,
					content TEXT
				)`,
				c, s.embedder.Dimensions(),
			)
			if _, err := s.db.ExecContext(lc.Context(), q); err != nil {
				s.logger.Error("collection initialization failed", "collection", c, "error", err)
				return
			}
		}

		s.logger.Info("semantic collections ready", "count", len(s.collections))
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := s.db.Close(); err != nil {
			s.logger.Error("semantic store close failed", "error", err)
		}
	})

	return nil
}

func (s *store) Insert(ctx context.Context, collection string, doc Document) error {
	if err := s.checkCollection(collection); err != nil {
		return err
	}

	embedding, err := s.embedder.Embed(ctx, doc.Content)
	if err != nil {
		return fmt.Errorf("embed document %s: %w", doc.LinkID, err)
	}

	q := fmt.Sprintf(
		"INSERT INTO %s(embedding, link_id, request_id, content) VALUES (?, ?, ?, ?)",
		collection,
	)
	if _, err := s.db.ExecContext(
		ctx, q,
		encodeVector(embedding),
		doc.LinkID.String(),
		doc.RequestID.String(),
		doc.Content,
	); err != nil {
		return fmt.Errorf("insert semantic document %s: %w", doc.LinkID, err)
	}

	return nil
}

func (s *store) Replace(ctx context.Context, collection string, doc Document) error {
	if err := s.checkCollection(collection); err != nil {
		return err
	}

	q := fmt.Sprintf("DELETE FROM %s WHERE link_id = ?", collection)
	if _, err := s.db.ExecContext(ctx, q, doc.LinkID.String()); err != nil {
		return fmt.Errorf("replace semantic document %s: %w", doc.LinkID, err)
	}

	return s.Insert(ctx, collection, doc)
}

func (s *store) Delete(ctx context.Context, collection string, linkID uuid.UUID) error {
	if err := s.checkCollection(collection); err != nil {
		return err
	}

	q := fmt.Sprintf("DELETE FROM %s WHERE link_id = ?", collection)
	result, err := s.db.ExecContext(ctx, q, linkID.String())
	if err != nil {
		return fmt.Errorf("delete semantic document %s: %w", linkID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *store) Search(ctx context.Context, collection string, query string, k int) ([]Match, error) {
	if err := s.checkCollection(collection); err != nil {
		return nil, err
	}

	if k <= 0 {
		k = 10
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	q := fmt.Sprintf(
		`SELECT link_id, request_id, content,
			vec_distance_cosine(embedding, ?) AS distance
		FROM %s
		ORDER BY distance ASC
		LIMIT ?`,
		collection,
	)

	rows, err := s.db.QueryContext(ctx, q, encodeVector(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("search collection %s: %w", collection, err)
	}
	defer rows.Close()

	matches := make([]Match, 0, k)
	rank := 1
	for rows.Next() {
		var (
			linkID, requestID string
			m                 Match
			distance          float64
		)
		if err := rows.Scan(&linkID, &requestID, &m.Content, &distance); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}

		if m.LinkID, err = uuid.Parse(linkID); err != nil {
			return nil, fmt.Errorf("parse link id: %w", err)
		}
		if m.RequestID, err = uuid.Parse(requestID); err != nil {
			return nil, fmt.Errorf("parse request id: %w", err)
		}

		m.Similarity = 1.0 - distance
		m.Rank = rank
		rank++
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return matches, nil
}

func (s *store) checkCollection(collection string) error {
	for _, c := range s.collections {
		if c == collection {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
}
