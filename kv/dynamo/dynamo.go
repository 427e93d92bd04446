// Package dynamo is a kv.Store implementation on Amazon DynamoDB.
//
// Each karst table is one DynamoDB table: a string hash key attribute, a
// numeric range key attribute for ranged tables, and one string-set attribute
// holding the ids. Conditions map to condition expressions, so the engine's
// optimistic concurrency rides on DynamoDB's conditional writes.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/ridge/karst/kv"
)

const (
	attrKey   = "key"
	attrRange = "range"
	attrIDs   = "ids"
)

// This is the subset of the DynamoDB API that we use, defined as mockable API

type dynamoAPI interface {
	GetItemWithContext(ctx aws.Context, input *dynamodb.GetItemInput, opts ...request.Option) (*dynamodb.GetItemOutput, error)
	PutItemWithContext(ctx aws.Context, input *dynamodb.PutItemInput, opts ...request.Option) (*dynamodb.PutItemOutput, error)
	DeleteItemWithContext(ctx aws.Context, input *dynamodb.DeleteItemInput, opts ...request.Option) (*dynamodb.DeleteItemOutput, error)
	ScanPagesWithContext(ctx aws.Context, input *dynamodb.ScanInput, fn func(*dynamodb.ScanOutput, bool) bool, opts ...request.Option) error
	CreateTableWithContext(ctx aws.Context, input *dynamodb.CreateTableInput, opts ...request.Option) (*dynamodb.CreateTableOutput, error)
}

// Store is a kv.Store and kv.Lister on DynamoDB.
type Store struct {
	api dynamoAPI
}

// New returns a store using DynamoDB through the given session.
func New(sess *session.Session) *Store {
	return newStore(dynamodb.New(sess))
}

func newStore(api dynamoAPI) *Store {
	return &Store{api: api}
}

// Read implements kv.Store. Reads are strongly consistent: the engine's
// read-check-write cycle breaks on stale reads.
func (s *Store) Read(ctx context.Context, table string, key kv.Key) (kv.Entry, bool, error) {
	out, err := s.api.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table),
		Key:            keyAttrs(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return kv.Entry{}, false, fmt.Errorf("failed to read from table %s: %w", table, err)
	}
	if out.Item == nil {
		return kv.Entry{}, false, nil
	}
	entry, err := decodeItem(out.Item)
	if err != nil {
		return kv.Entry{}, false, fmt.Errorf("failed to read from table %s: %w", table, err)
	}
	return entry, true, nil
}

// Write implements kv.Store
func (s *Store) Write(ctx context.Context, table string, entry kv.Entry, cond kv.Condition) error {
	input := &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      itemAttrs(entry),
	}
	applyCondition(cond, &input.ConditionExpression, &input.ExpressionAttributeNames, &input.ExpressionAttributeValues)
	if _, err := s.api.PutItemWithContext(ctx, input); err != nil {
		return fmt.Errorf("failed to write to table %s: %w", table, translate(err))
	}
	return nil
}

// Delete implements kv.Store
func (s *Store) Delete(ctx context.Context, table string, key kv.Key, cond kv.Condition) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(table),
		Key:       keyAttrs(key),
	}
	applyCondition(cond, &input.ConditionExpression, &input.ExpressionAttributeNames, &input.ExpressionAttributeValues)
	if _, err := s.api.DeleteItemWithContext(ctx, input); err != nil {
		return fmt.Errorf("failed to delete from table %s: %w", table, translate(err))
	}
	return nil
}

// List implements kv.Lister via a paginated scan.
func (s *Store) List(ctx context.Context, table string, fn func(kv.Entry) error) error {
	var inner error
	err := s.api.ScanPagesWithContext(ctx, &dynamodb.ScanInput{
		TableName:      aws.String(table),
		ConsistentRead: aws.Bool(true),
	}, func(out *dynamodb.ScanOutput, last bool) bool {
		for _, item := range out.Items {
			entry, err := decodeItem(item)
			if err == nil {
				err = fn(entry)
			}
			if err != nil {
				inner = err
				return false
			}
		}
		return true
	})
	if inner != nil {
		return inner
	}
	if err != nil {
		return fmt.Errorf("failed to list table %s: %w", table, err)
	}
	return nil
}

// CreateTable provisions the DynamoDB table behind one index table. Creating
// a table that already exists is not an error.
func (s *Store) CreateTable(ctx context.Context, table string, ranged bool) error {
	input := &dynamodb.CreateTableInput{
		TableName:   aws.String(table),
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{AttributeName: aws.String(attrKey), AttributeType: aws.String(dynamodb.ScalarAttributeTypeS)},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{AttributeName: aws.String(attrKey), KeyType: aws.String(dynamodb.KeyTypeHash)},
		},
	}
	if ranged {
		input.AttributeDefinitions = append(input.AttributeDefinitions, &dynamodb.AttributeDefinition{
			AttributeName: aws.String(attrRange),
			AttributeType: aws.String(dynamodb.ScalarAttributeTypeN),
		})
		input.KeySchema = append(input.KeySchema, &dynamodb.KeySchemaElement{
			AttributeName: aws.String(attrRange),
			KeyType:       aws.String(dynamodb.KeyTypeRange),
		})
	}
	if _, err := s.api.CreateTableWithContext(ctx, input); err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == dynamodb.ErrCodeResourceInUseException {
			return nil
		}
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}

func formatRange(rng float64) string {
	return strconv.FormatFloat(rng, 'g', -1, 64)
}

func keyAttrs(key kv.Key) map[string]*dynamodb.AttributeValue {
	attrs := map[string]*dynamodb.AttributeValue{
		attrKey: {S: aws.String(key.Hash)},
	}
	if key.Ranged() {
		attrs[attrRange] = &dynamodb.AttributeValue{N: aws.String(formatRange(*key.Range))}
	}
	return attrs
}

func itemAttrs(entry kv.Entry) map[string]*dynamodb.AttributeValue {
	attrs := keyAttrs(entry.Key)
	attrs[attrIDs] = &dynamodb.AttributeValue{SS: aws.StringSlice(entry.IDs.Sorted())}
	return attrs
}

func decodeItem(item map[string]*dynamodb.AttributeValue) (kv.Entry, error) {
	kattr := item[attrKey]
	if kattr == nil || kattr.S == nil {
		return kv.Entry{}, errors.New("malformed item: no key attribute")
	}
	key := kv.HashKey(*kattr.S)
	if rattr := item[attrRange]; rattr != nil && rattr.N != nil {
		rng, err := strconv.ParseFloat(*rattr.N, 64)
		if err != nil {
			return kv.Entry{}, fmt.Errorf("malformed item: bad range value: %w", err)
		}
		key = kv.RangedKey(key.Hash, rng)
	}
	idsAttr := item[attrIDs]
	if idsAttr == nil {
		return kv.Entry{}, errors.New("malformed item: no ids attribute")
	}
	return kv.Entry{Key: key, IDs: kv.NewIDSet(aws.StringValueSlice(idsAttr.SS)...)}, nil
}

// applyCondition renders a kv.Condition as a DynamoDB condition expression.
func applyCondition(cond kv.Condition, expr **string, names *map[string]*string, values *map[string]*dynamodb.AttributeValue) {
	switch {
	case cond.RequiresAbsence():
		*expr = aws.String("attribute_not_exists(#key)")
		*names = map[string]*string{"#key": aws.String(attrKey)}
	case !cond.Unconditional():
		*expr = aws.String("#ids = :ids")
		*names = map[string]*string{"#ids": aws.String(attrIDs)}
		*values = map[string]*dynamodb.AttributeValue{
			":ids": {SS: aws.StringSlice(cond.ExpectedIDs().Sorted())},
		}
	}
}

// translate maps a DynamoDB conditional check failure to kv.ErrConditionFailed.
func translate(err error) error {
	var aerr awserr.Error
	if errors.As(err, &aerr) && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException {
		return kv.ErrConditionFailed
	}
	return err
}
