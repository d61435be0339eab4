package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/marcheligne/storefront/internal/aws"
)

// cartRecord is the single item persisted per cart: the ordered line list
// under the cart's fixed key.
type cartRecord struct {
	CartID    string    `dynamodbav:"cart_id"` // PK
	Lines     []Line    `dynamodbav:"lines"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

// DynamoStorage persists carts in DynamoDB, one item per cart.
type DynamoStorage struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewDynamoStorage creates cart storage over the carts table.
func NewDynamoStorage(client aws.DynamoDBAPI, tableName string) *DynamoStorage {
	return &DynamoStorage{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Load fetches the cart's lines. A missing item is an empty cart; so is a
// record that no longer unmarshals (corrupt data fails open rather than
// taking the page down). Only transport errors propagate.
func (d *DynamoStorage) Load(ctx context.Context, cartID string) ([]Line, error) {
	out, err := d.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &d.tableName,
		Key: map[string]types.AttributeValue{
			"cart_id": &types.AttributeValueMemberS{Value: cartID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec cartRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		// corrupt record: fail open
		return nil, nil
	}
	return sanitize(rec.Lines), nil
}

// Save persists the full line list synchronously.
func (d *DynamoStorage) Save(ctx context.Context, cartID string, lines []Line) error {
	rec := cartRecord{
		CartID:    cartID,
		Lines:     sanitize(lines),
		UpdatedAt: d.nowFunc(),
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if _, err := d.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &d.tableName,
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put cart: %w", err)
	}
	return nil
}

// Delete removes the cart item entirely.
func (d *DynamoStorage) Delete(ctx context.Context, cartID string) error {
	if _, err := d.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName: &d.tableName,
		Key: map[string]types.AttributeValue{
			"cart_id": &types.AttributeValueMemberS{Value: cartID},
		},
	}); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

// sanitize drops lines an older writer may have persisted with a
// non-positive quantity. Persisted carts never hold a zero line.
func sanitize(lines []Line) []Line {
	out := lines[:0]
	for _, l := range lines {
		if l.Quantity >= 1 {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
