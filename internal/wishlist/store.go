package wishlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/helporphan/donations-api/internal/aws"
)

// ErrNotFound indicates the referenced item id does not exist.
var ErrNotFound = errors.New("wishlist item not found")

// ErrAlreadyFulfilled indicates a guarded fulfillment patch lost the race:
// the item was already fulfilled when the conditional write ran.
var ErrAlreadyFulfilled = errors.New("wishlist item already fulfilled")

// Store encapsulates operations on the wishlist table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
	idFunc    func() string
}

// NewStore creates a new wishlist Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
		idFunc:    uuid.NewString,
	}
}

// Create assigns an id, stamps timestamps and persists the item.
// The conditional put guards against id collisions.
func (s *Store) Create(ctx context.Context, item Item) (Item, error) {
	now := s.nowFunc()
	item.ItemID = s.idFunc()
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.Urgency == "" {
		item.Urgency = UrgencyMedium
	}
	// new items start unfulfilled regardless of request payload
	item.Fulfilled = false
	item.CommittedBy = ""

	m, err := attributevalue.MarshalMap(item)
	if err != nil {
		return Item{}, fmt.Errorf("marshal item: %w", err)
	}

	input := &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                m,
		ConditionExpression: awsString("attribute_not_exists(item_id)"),
	}
	if _, err := s.client.PutItem(ctx, input); err != nil {
		return Item{}, fmt.Errorf("put item: %w", err)
	}
	return item, nil
}

// Get fetches an item by id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, itemID string) (*Item, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"item_id": &types.AttributeValueMemberS{Value: itemID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var it Item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &it, nil
}

// List returns the full collection, following scan pagination.
func (s *Store) List(ctx context.Context) ([]Item, error) {
	items := []Item{}
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, &dyn.ScanInput{
			TableName:         &s.tableName,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var page []Item
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal items: %w", err)
		}
		items = append(items, page...)
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return items, nil
}

// Replace persists a full document for an existing id. Fields absent from the
// incoming item are reset to their zero/default values (this is the admin edit
// path, not a sparse merge). Returns ErrNotFound when the id is absent.
func (s *Store) Replace(ctx context.Context, item Item) (Item, error) {
	if item.ItemID == "" {
		return Item{}, ErrNotFound
	}
	existing, err := s.Get(ctx, item.ItemID)
	if err != nil {
		return Item{}, err
	}
	if existing == nil {
		return Item{}, ErrNotFound
	}

	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = s.nowFunc()
	if item.Urgency == "" {
		item.Urgency = UrgencyMedium
	}
	// an item toggled back to pending carries no committed_by
	if !item.Fulfilled {
		item.CommittedBy = ""
	}

	m, err := attributevalue.MarshalMap(item)
	if err != nil {
		return Item{}, fmt.Errorf("marshal item: %w", err)
	}
	input := &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                m,
		ConditionExpression: awsString("attribute_exists(item_id)"),
	}
	if _, err := s.client.PutItem(ctx, input); err != nil {
		if isConditionalCheckFailed(err) {
			return Item{}, ErrNotFound
		}
		return Item{}, fmt.Errorf("put item: %w", err)
	}
	return item, nil
}

// Delete removes an item. A second delete of the same id returns ErrNotFound,
// not success.
func (s *Store) Delete(ctx context.Context, itemID string) error {
	input := &dyn.DeleteItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"item_id": &types.AttributeValueMemberS{Value: itemID},
		},
		ConditionExpression: awsString("attribute_exists(item_id)"),
	}
	if _, err := s.client.DeleteItem(ctx, input); err != nil {
		if isConditionalCheckFailed(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// ApplyFulfillment is the targeted update used by the commitment workflow and
// the public PATCH endpoint. It touches only fulfilled/committed_by/updated_at.
//
// When guard is true and fulfilled is being set, the update is conditional on
// the item not already being fulfilled (first writer wins); losers get
// ErrAlreadyFulfilled. When guard is false the last write lands, reproducing
// the legacy behavior.
func (s *Store) ApplyFulfillment(ctx context.Context, itemID string, fulfilled bool, committedBy string, guard bool) (*Item, error) {
	now := s.nowFunc()
	key := map[string]types.AttributeValue{
		"item_id": &types.AttributeValueMemberS{Value: itemID},
	}

	input := &dyn.UpdateItemInput{
		TableName:    &s.tableName,
		Key:          key,
		ReturnValues: types.ReturnValueAllNew,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":f":  &types.AttributeValueMemberBOOL{Value: fulfilled},
			":ua": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	}

	if fulfilled {
		input.UpdateExpression = awsString("SET fulfilled = :f, committed_by = :cb, updated_at = :ua")
		input.ExpressionAttributeValues[":cb"] = &types.AttributeValueMemberS{Value: committedBy}
	} else {
		// reopening clears the donor attribution
		input.UpdateExpression = awsString("SET fulfilled = :f, updated_at = :ua REMOVE committed_by")
	}

	if guard && fulfilled {
		input.ConditionExpression = awsString("attribute_exists(item_id) AND fulfilled = :prev")
		input.ExpressionAttributeValues[":prev"] = &types.AttributeValueMemberBOOL{Value: false}
	} else {
		input.ConditionExpression = awsString("attribute_exists(item_id)")
	}

	out, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		if isConditionalCheckFailed(err) {
			// the condition folds "absent" and "already fulfilled" together;
			// a follow-up read tells them apart
			existing, getErr := s.Get(ctx, itemID)
			if getErr != nil {
				return nil, fmt.Errorf("update item: %w", err)
			}
			if existing == nil {
				return nil, ErrNotFound
			}
			return nil, ErrAlreadyFulfilled
		}
		return nil, fmt.Errorf("update item: %w", err)
	}

	var it Item
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &it, nil
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func awsString(s string) *string { return &s }
