// Package awstest provides in-memory doubles for the narrow AWS client
// interfaces. They are intentionally minimal and not production-grade: they
// emulate only the condition and update expressions the stores actually use.
package awstest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type mockTable struct {
	pk    string
	items map[string]map[string]types.AttributeValue
}

// DynaMock is a multi-table in-memory DynamoDB.
type DynaMock struct {
	mu     sync.Mutex
	tables map[string]*mockTable

	// per-table failure injection
	FailPut    map[string]error
	FailUpdate map[string]error
	FailScan   map[string]error

	PutCalls    int
	GetCalls    int
	UpdateCalls int
	DeleteCalls int
	ScanCalls   int
}

// NewDynaMock returns an empty mock with no tables registered.
func NewDynaMock() *DynaMock {
	return &DynaMock{
		tables:     map[string]*mockTable{},
		FailPut:    map[string]error{},
		FailUpdate: map[string]error{},
		FailScan:   map[string]error{},
	}
}

// AddTable registers a table with its partition key attribute name.
func (m *DynaMock) AddTable(name, pk string) *DynaMock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[name] = &mockTable{pk: pk, items: map[string]map[string]types.AttributeValue{}}
	return m
}

// Seed marshals v and inserts it into the table, bypassing conditions.
func (m *DynaMock) Seed(tableName string, v interface{}) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[tableName]
	if !ok {
		return errors.New("unknown table: " + tableName)
	}
	k, err := keyValue(item, t.pk)
	if err != nil {
		return err
	}
	t.items[k] = item
	return nil
}

// Raw returns the stored attribute map for direct assertions, or nil.
func (m *DynaMock) Raw(tableName, key string) map[string]types.AttributeValue {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[tableName]
	if !ok {
		return nil
	}
	return t.items[key]
}

// Len reports how many items a table holds.
func (m *DynaMock) Len(tableName string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[tableName]
	if !ok {
		return 0
	}
	return len(t.items)
}

func (m *DynaMock) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalls++

	t, err := m.table(params.TableName)
	if err != nil {
		return nil, err
	}
	if err := m.FailPut[*params.TableName]; err != nil {
		return nil, err
	}
	k, err := keyValue(params.Item, t.pk)
	if err != nil {
		return nil, err
	}
	if params.ConditionExpression != nil {
		_, exists := t.items[k]
		if condErr := evalExistenceCondition(*params.ConditionExpression, exists); condErr != nil {
			return nil, condErr
		}
	}
	t.items[k] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *DynaMock) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++

	t, err := m.table(params.TableName)
	if err != nil {
		return nil, err
	}
	k, err := keyValue(params.Key, t.pk)
	if err != nil {
		return nil, err
	}
	item, ok := t.items[k]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *DynaMock) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++

	t, err := m.table(params.TableName)
	if err != nil {
		return nil, err
	}
	if err := m.FailUpdate[*params.TableName]; err != nil {
		return nil, err
	}
	k, err := keyValue(params.Key, t.pk)
	if err != nil {
		return nil, err
	}
	item, exists := t.items[k]

	if params.ConditionExpression != nil {
		cond := *params.ConditionExpression
		if condErr := evalExistenceCondition(cond, exists); condErr != nil {
			return nil, condErr
		}
		// emulate the fulfillment guard: "... AND fulfilled = :prev"
		if strings.Contains(cond, "fulfilled = :prev") {
			prev, ok := params.ExpressionAttributeValues[":prev"].(*types.AttributeValueMemberBOOL)
			if !ok {
				return nil, errors.New("missing :prev value")
			}
			cur := false
			if b, ok := item["fulfilled"].(*types.AttributeValueMemberBOOL); ok {
				cur = b.Value
			}
			if cur != prev.Value {
				return nil, &types.ConditionalCheckFailedException{}
			}
		}
	}
	if !exists {
		// unconditional updates upsert, matching DynamoDB semantics
		item = map[string]types.AttributeValue{t.pk: params.Key[t.pk]}
	}

	applyUpdateExpression(item, params)
	t.items[k] = item
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *DynaMock) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++

	t, err := m.table(params.TableName)
	if err != nil {
		return nil, err
	}
	k, err := keyValue(params.Key, t.pk)
	if err != nil {
		return nil, err
	}
	_, exists := t.items[k]
	if params.ConditionExpression != nil {
		if condErr := evalExistenceCondition(*params.ConditionExpression, exists); condErr != nil {
			return nil, condErr
		}
	}
	delete(t.items, k)
	return &dyn.DeleteItemOutput{}, nil
}

func (m *DynaMock) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ScanCalls++

	t, err := m.table(params.TableName)
	if err != nil {
		return nil, err
	}
	if err := m.FailScan[*params.TableName]; err != nil {
		return nil, err
	}
	items := make([]map[string]types.AttributeValue, 0, len(t.items))
	for _, it := range t.items {
		items = append(items, it)
	}
	return &dyn.ScanOutput{Items: items}, nil
}

func (m *DynaMock) table(name *string) (*mockTable, error) {
	if name == nil {
		return nil, errors.New("nil table name")
	}
	t, ok := m.tables[*name]
	if !ok {
		return nil, errors.New("unknown table: " + *name)
	}
	return t, nil
}

func keyValue(attrs map[string]types.AttributeValue, pk string) (string, error) {
	v, ok := attrs[pk].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("missing string partition key: " + pk)
	}
	return v.Value, nil
}

// evalExistenceCondition handles attribute_exists/attribute_not_exists on the
// partition key, the only existence checks the stores issue.
func evalExistenceCondition(cond string, exists bool) error {
	switch {
	case strings.Contains(cond, "attribute_not_exists("):
		if exists {
			return &types.ConditionalCheckFailedException{}
		}
	case strings.Contains(cond, "attribute_exists("):
		if !exists {
			return &types.ConditionalCheckFailedException{}
		}
	}
	return nil
}

// applyUpdateExpression supports "SET a = :x, b = :y[ REMOVE c]" shapes.
func applyUpdateExpression(item map[string]types.AttributeValue, params *dyn.UpdateItemInput) {
	if params.UpdateExpression == nil {
		return
	}
	expr := *params.UpdateExpression

	removePart := ""
	if i := strings.Index(expr, " REMOVE "); i >= 0 {
		removePart = expr[i+len(" REMOVE "):]
		expr = expr[:i]
	}
	expr = strings.TrimPrefix(strings.TrimSpace(expr), "SET ")

	for _, clause := range strings.Split(expr, ",") {
		parts := strings.SplitN(clause, "=", 2)
		if len(parts) != 2 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		ref := strings.TrimSpace(parts[1])
		if strings.HasPrefix(name, "#") {
			name = params.ExpressionAttributeNames[name]
		}
		if v, ok := params.ExpressionAttributeValues[ref]; ok {
			item[name] = v
		}
	}
	for _, name := range strings.FieldsFunc(removePart, func(r rune) bool { return r == ',' || r == ' ' }) {
		delete(item, name)
	}
}
