package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore is an Updater backed by a Cloud Firestore database.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore connects to databaseID in projectID. An empty databaseID
// selects the default database.
func NewFirestore(ctx context.Context, projectID, databaseID string, opts ...option.ClientOption) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, fmt.Errorf("store: failed to create firestore client: %w", err)
	}
	return &Firestore{client: client}, nil
}

// UpdateField sets field to value. The record must already exist.
func (s *Firestore) UpdateField(ctx context.Context, ref DocumentRef, field string, value any) (time.Time, error) {
	if err := ref.Validate(); err != nil {
		return time.Time{}, err
	}
	res, err := s.client.
		Collection(ref.Collection).
		Doc(ref.Document).
		Update(ctx, []firestore.Update{{Path: field, Value: value}})
	if status.Code(err) == codes.NotFound {
		return time.Time{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	} else if err != nil {
		return time.Time{}, fmt.Errorf("store: update %s: %w", ref, err)
	}
	return res.UpdateTime, nil
}

// Close releases the client's connections.
func (s *Firestore) Close() error {
	return s.client.Close()
}
