package donations

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/helporphan/donations-api/internal/aws"
)

// Store encapsulates the append-only donation log. Records are created once
// and never updated or deleted.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
	idFunc    func() string
}

// NewStore creates a new donation log Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
		idFunc:    uuid.NewString,
	}
}

// Create persists a new donation record. The id, default status and
// commitment timestamp are assigned here; the caller supplies the rest.
func (s *Store) Create(ctx context.Context, rec Record) (Record, error) {
	rec.DonationID = s.idFunc()
	if rec.Status == "" {
		rec.Status = StatusCommitted
	}
	if rec.CommitmentTimestamp.IsZero() {
		rec.CommitmentTimestamp = s.nowFunc()
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return Record{}, fmt.Errorf("marshal record: %w", err)
	}

	input := &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(donation_id)"),
	}
	if _, err := s.client.PutItem(ctx, input); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException" {
			return Record{}, fmt.Errorf("donation id collision: %w", err)
		}
		return Record{}, fmt.Errorf("put item: %w", err)
	}
	return rec, nil
}

// ListByRecency returns all donation records, newest commitment first.
func (s *Store) ListByRecency(ctx context.Context) ([]Record, error) {
	recs := []Record{}
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, &dyn.ScanInput{
			TableName:         &s.tableName,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var page []Record
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal records: %w", err)
		}
		recs = append(recs, page...)
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].CommitmentTimestamp.After(recs[j].CommitmentTimestamp)
	})
	return recs, nil
}

func awsString(s string) *string { return &s }
