package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/marcheligne/storefront/internal/aws"
)

// Store encapsulates read-only catalog queries. Nothing here ever writes;
// the catalog is maintained by a separate ingestion pipeline.
type Store struct {
	client          aws.DynamoDBAPI
	productsTable   string
	categoriesTable string
	countriesTable  string
}

// NewStore creates a catalog Store over the three read-only tables.
func NewStore(client aws.DynamoDBAPI, productsTable, categoriesTable, countriesTable string) *Store {
	return &Store{
		client:          client,
		productsTable:   productsTable,
		categoriesTable: categoriesTable,
		countriesTable:  countriesTable,
	}
}

// MainCategories returns every top-level category ordered by name.
func (s *Store) MainCategories(ctx context.Context) ([]Category, error) {
	items, err := s.scanAll(ctx, &dyn.ScanInput{TableName: &s.categoriesTable})
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}

	var cats []Category
	if err := attributevalue.UnmarshalListOfMaps(items, &cats); err != nil {
		return nil, fmt.Errorf("unmarshal categories: %w", err)
	}
	sortByName(cats, func(c Category) string { return c.Name })
	return cats, nil
}

// ProductsByCategory returns products whose category membership list contains
// categoryID, ordered by name.
func (s *Store) ProductsByCategory(ctx context.Context, categoryID string) ([]Product, error) {
	input := &dyn.ScanInput{
		TableName:        &s.productsTable,
		FilterExpression: awsString("contains(category_ids, :cid)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cid": &types.AttributeValueMemberS{Value: categoryID},
		},
	}
	return s.scanProducts(ctx, input)
}

// SearchProducts returns products whose name contains the query,
// case-insensitively, ordered by name.
func (s *Store) SearchProducts(ctx context.Context, query string) ([]Product, error) {
	input := &dyn.ScanInput{
		TableName:        &s.productsTable,
		FilterExpression: awsString("contains(name_lc, :q)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":q": &types.AttributeValueMemberS{Value: strings.ToLower(query)},
		},
	}
	return s.scanProducts(ctx, input)
}

// ProductByID fetches one product. Returns (nil, nil) if not found.
func (s *Store) ProductByID(ctx context.Context, id string) (*Product, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.productsTable,
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var p Product
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}
	return &p, nil
}

// OriginCountries returns the country lookup, ordered by name. Loaded once per
// session by callers; the store itself is stateless.
func (s *Store) OriginCountries(ctx context.Context) ([]OriginCountry, error) {
	items, err := s.scanAll(ctx, &dyn.ScanInput{TableName: &s.countriesTable})
	if err != nil {
		return nil, fmt.Errorf("scan countries: %w", err)
	}

	var countries []OriginCountry
	if err := attributevalue.UnmarshalListOfMaps(items, &countries); err != nil {
		return nil, fmt.Errorf("unmarshal countries: %w", err)
	}
	sortByName(countries, func(c OriginCountry) string { return c.Name })
	return countries, nil
}

func (s *Store) scanProducts(ctx context.Context, input *dyn.ScanInput) ([]Product, error) {
	items, err := s.scanAll(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("scan products: %w", err)
	}

	var products []Product
	if err := attributevalue.UnmarshalListOfMaps(items, &products); err != nil {
		return nil, fmt.Errorf("unmarshal products: %w", err)
	}
	sortByName(products, func(p Product) string { return p.Name })
	return products, nil
}

// scanAll follows LastEvaluatedKey until the scan is exhausted.
func (s *Store) scanAll(ctx context.Context, input *dyn.ScanInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, err
		}
		items = append(items, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// sortByName orders case-insensitively; DynamoDB scans return items unordered.
func sortByName[T any](items []T, name func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return strings.ToLower(name(items[i])) < strings.ToLower(name(items[j]))
	})
}

func awsString(s string) *string { return &s }
