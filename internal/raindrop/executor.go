package raindrop

import (
	"context"
	"fmt"

	"riptide/internal/domain"
	"riptide/internal/log"
)

// Executor applies finalized decisions against the raindrop API. KEEP is a
// no-op; ARCHIVE is a move into the configured archive collection.
type Executor struct {
	client            *Client
	archiveCollection string
}

// NewExecutor creates an executor that archives into archiveCollection.
func NewExecutor(client *Client, archiveCollection string) *Executor {
	return &Executor{client: client, archiveCollection: archiveCollection}
}

// Apply executes one decision. Target collections are resolved by name at
// apply time so a collection created mid-session is still found.
func (e *Executor) Apply(ctx context.Context, d domain.Decision) error {
	switch d.Action {
	case domain.ActionKeep:
		return nil

	case domain.ActionDelete:
		if err := e.client.DeleteBookmark(ctx, d.BookmarkID); err != nil {
			return err
		}
		e.client.InvalidateCollections()
		log.Info(log.CatRaindrop, "deleted bookmark", "id", d.BookmarkID)
		return nil

	case domain.ActionArchive:
		return e.move(ctx, d.BookmarkID, e.archiveCollection)

	case domain.ActionMove:
		return e.move(ctx, d.BookmarkID, d.TargetCollection)

	default:
		return fmt.Errorf("unknown action %q for bookmark %d", d.Action, d.BookmarkID)
	}
}

func (e *Executor) move(ctx context.Context, bookmarkID int64, collectionName string) error {
	collections, err := e.client.Collections(ctx)
	if err != nil {
		return fmt.Errorf("resolving collection %q: %w", collectionName, err)
	}

	targetID, ok := FindCollection(collections, collectionName)
	if !ok {
		return fmt.Errorf("no collection matching %q", collectionName)
	}

	if err := e.client.MoveBookmark(ctx, bookmarkID, targetID); err != nil {
		return err
	}
	e.client.InvalidateCollections()
	log.Info(log.CatRaindrop, "moved bookmark", "id", bookmarkID, "collection", collectionName)
	return nil
}
