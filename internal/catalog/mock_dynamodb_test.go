package catalog

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo is a small in-memory fake supporting the Scan/GetItem shapes the
// catalog store issues. Items are kept per table in insertion order so
// pagination is deterministic.
type mockDynamo struct {
	mu       sync.Mutex
	tables   map[string][]map[string]types.AttributeValue
	pageSize int // 0 = everything in one page
	scanErr  error
	scans    int
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{tables: map[string][]map[string]types.AttributeValue{}}
}

func (m *mockDynamo) add(table string, item map[string]types.AttributeValue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table] = append(m.tables[table], item)
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.add(*params.TableName, params.Item)
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want, ok := params.Key["product_id"]
	if !ok {
		return nil, errors.New("missing product_id key")
	}
	for _, item := range m.tables[*params.TableName] {
		if id, ok := item["product_id"]; ok && attrS(id) == attrS(want) {
			return &dyn.GetItemOutput{Item: item}, nil
		}
	}
	return &dyn.GetItemOutput{}, nil
}

func (m *mockDynamo) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	return &dyn.DeleteItemOutput{}, nil
}

func (m *mockDynamo) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans++
	if m.scanErr != nil {
		return nil, m.scanErr
	}

	var matched []map[string]types.AttributeValue
	for _, item := range m.tables[*params.TableName] {
		if m.matches(item, params) {
			matched = append(matched, item)
		}
	}

	start := 0
	if k, ok := params.ExclusiveStartKey["idx"]; ok {
		start, _ = strconv.Atoi(k.(*types.AttributeValueMemberN).Value)
	}
	end := len(matched)
	out := &dyn.ScanOutput{}
	if m.pageSize > 0 && start+m.pageSize < end {
		end = start + m.pageSize
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"idx": &types.AttributeValueMemberN{Value: strconv.Itoa(end)},
		}
	}
	out.Items = matched[start:end]
	return out, nil
}

// matches emulates the two filter expressions the store uses.
func (m *mockDynamo) matches(item map[string]types.AttributeValue, params *dyn.ScanInput) bool {
	if params.FilterExpression == nil {
		return true
	}
	switch *params.FilterExpression {
	case "contains(category_ids, :cid)":
		wanted := attrS(params.ExpressionAttributeValues[":cid"])
		list, ok := item["category_ids"].(*types.AttributeValueMemberL)
		if !ok {
			return false
		}
		for _, v := range list.Value {
			if attrS(v) == wanted {
				return true
			}
		}
		return false
	case "contains(name_lc, :q)":
		wanted := attrS(params.ExpressionAttributeValues[":q"])
		name, ok := item["name_lc"]
		if !ok {
			return false
		}
		return strings.Contains(attrS(name), wanted)
	default:
		return false
	}
}

func attrS(v types.AttributeValue) string {
	if s, ok := v.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}
