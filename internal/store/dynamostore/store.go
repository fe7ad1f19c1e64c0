// Package dynamostore is a DynamoDB-backed store.Store.
//
// Each record is one item. The configured key field is written as a string
// partition key; the remaining fields are marshalled with attributevalue.
// Numbers come back as json.Number, matching the SQLite backend.
package dynamostore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/roach88/schemata/internal/canonical"
	"github.com/roach88/schemata/internal/store"
)

// Client is the subset of *dynamodb.Client the store uses.
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store keeps records in one DynamoDB table.
type Store struct {
	store.Base

	client Client
	config Config
}

// New creates a Store over client.
func New(client Client, cfg Config) *Store {
	cfg.validate()
	return &Store{
		client: client,
		config: cfg,
	}
}

// NewFromConfig creates a Store with a client built from the shared AWS
// configuration (environment, profile, instance role).
func NewFromConfig(ctx context.Context, cfg Config) (*Store, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("dynamostore: load aws config: %w", err)
	}
	return New(dynamodb.NewFromConfig(awsCfg), cfg), nil
}

// Save puts d, assigning an identifier when it has none.
func (s *Store) Save(ctx context.Context, d store.Data) (store.Data, error) {
	rec, err := normalize(d)
	if err != nil {
		return nil, fmt.Errorf("save: %w", err)
	}

	id, ok, err := store.KeyOf(rec, s.config.Key)
	if err != nil {
		return nil, fmt.Errorf("save: %w", err)
	}
	if !ok {
		id = s.config.Generator.Generate()
	}
	rec[s.config.Key] = id

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return nil, fmt.Errorf("save %s: marshal: %w", id, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.config.TableName),
		Item:      item,
	})
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", id, err)
	}

	slog.Debug("dynamostore save", "table", s.config.TableName, "id", id)
	return unmarshal(item)
}

// Destroy deletes the item d identifies. The delete is conditional on the
// item existing, so a missing item reports store.ErrNotFound.
func (s *Store) Destroy(ctx context.Context, d store.Data) error {
	id, ok := store.Identifier(d[s.config.Key])
	if !ok {
		return fmt.Errorf("destroy: no %s: %w", s.config.Key, store.ErrNotFound)
	}

	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(s.config.TableName),
		Key:                      s.key(id),
		ConditionExpression:      aws.String("attribute_exists(#k)"),
		ExpressionAttributeNames: map[string]string{"#k": s.config.Key},
	})

	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return fmt.Errorf("destroy %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("destroy %s: %w", id, err)
	}

	slog.Debug("dynamostore destroy", "table", s.config.TableName, "id", id)
	return nil
}

// Find gets an item by identifier, or scans for the first match of a
// subset query.
func (s *Store) Find(ctx context.Context, query any) (store.Data, error) {
	if id, ok := store.Identifier(query); ok {
		result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName:      aws.String(s.config.TableName),
			Key:            s.key(id),
			ConsistentRead: aws.Bool(true),
		})
		if err != nil {
			return nil, fmt.Errorf("find %s: %w", id, err)
		}
		if result.Item == nil {
			return nil, fmt.Errorf("find %s: %w", id, store.ErrNotFound)
		}
		return unmarshal(result.Item)
	}

	all, err := s.FindAll(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("find: %w", store.ErrNotFound)
	}
	return all[0], nil
}

// FindAll scans the table and returns the matching records ordered by
// identifier. DynamoDB scans have no inherent order.
func (s *Store) FindAll(ctx context.Context, query any) ([]store.Data, error) {
	type keyed struct {
		id  string
		rec store.Data
	}
	var found []keyed

	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:      aws.String(s.config.TableName),
		ConsistentRead: aws.Bool(true),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.config.TableName, err)
		}
		for _, item := range page.Items {
			rec, err := unmarshal(item)
			if err != nil {
				return nil, err
			}
			ok, err := store.Match(rec, s.config.Key, query)
			if err != nil {
				return nil, err
			}
			if ok {
				id, _ := store.Identifier(rec[s.config.Key])
				found = append(found, keyed{id: id, rec: rec})
			}
		}
	}

	slices.SortFunc(found, func(a, b keyed) int { return canonical.CompareKeys(a.id, b.id) })
	out := make([]store.Data, len(found))
	for i, f := range found {
		out[i] = f.rec
	}
	return out, nil
}

func (s *Store) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		s.config.Key: &types.AttributeValueMemberS{Value: id},
	}
}

// normalize reduces d to plain JSON values (via canonical JSON) so every
// field marshals to a DynamoDB type. Numbers become float64.
func normalize(d store.Data) (store.Data, error) {
	data, err := canonical.Marshal(d)
	if err != nil {
		return nil, err
	}
	var rec store.Data
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	if rec == nil {
		rec = store.Data{}
	}
	return rec, nil
}

func unmarshal(item map[string]types.AttributeValue) (store.Data, error) {
	var rec store.Data
	err := attributevalue.UnmarshalMapWithOptions(item, &rec, func(o *attributevalue.DecoderOptions) {
		o.UseNumber = true
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return fromDynamo(rec).(store.Data), nil
}

// fromDynamo converts attributevalue.Number to json.Number throughout.
func fromDynamo(v any) any {
	switch val := v.(type) {
	case attributevalue.Number:
		return json.Number(val)
	case map[string]any:
		for k, elem := range val {
			val[k] = fromDynamo(elem)
		}
		return val
	case []any:
		for i, elem := range val {
			val[i] = fromDynamo(elem)
		}
		return val
	}
	return v
}
