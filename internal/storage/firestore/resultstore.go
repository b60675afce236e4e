// Package firestore keeps dispatch records in Google Cloud Firestore.
package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tinywideclouds/go-sns-push-service/pkg/dispatch"
	"github.com/tinywideclouds/go-sns-push-service/pkg/push"
)

const dispatchCollection = "dispatches"

// ResultStore implements dispatch.ResultStore using Google Cloud Firestore.
// Records live at dispatches/{requestID}.
type ResultStore struct {
	client *firestore.Client
}

var _ dispatch.ResultStore = (*ResultStore)(nil)

func NewResultStore(client *firestore.Client) *ResultStore {
	return &ResultStore{client: client}
}

// Save overwrites any record with the same request id, so a redelivered
// request replaces its earlier outcome.
func (s *ResultStore) Save(ctx context.Context, record *push.DispatchRecord) error {
	if record.RequestID == "" {
		return errors.New("dispatch record has no request id")
	}
	if _, err := s.client.Collection(dispatchCollection).Doc(record.RequestID).Set(ctx, record); err != nil {
		return fmt.Errorf("failed to save dispatch record %s: %w", record.RequestID, err)
	}
	return nil
}

func (s *ResultStore) Fetch(ctx context.Context, requestID string) (*push.DispatchRecord, error) {
	doc, err := s.client.Collection(dispatchCollection).Doc(requestID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%s: %w", requestID, dispatch.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch dispatch record %s: %w", requestID, err)
	}

	var record push.DispatchRecord
	if err := doc.DataTo(&record); err != nil {
		return nil, fmt.Errorf("failed to decode dispatch record %s: %w", requestID, err)
	}
	return &record, nil
}

func (s *ResultStore) Recent(ctx context.Context, limit int) ([]*push.DispatchRecord, error) {
	iter := s.client.Collection(dispatchCollection).
		OrderBy("created_at", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	records := make([]*push.DispatchRecord, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore iteration failed: %w", err)
		}

		var record push.DispatchRecord
		if err := doc.DataTo(&record); err != nil {
			// Skip corrupt rows.
			continue
		}
		records = append(records, &record)
	}
	return records, nil
}
