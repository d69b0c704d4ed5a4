package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"inventoryapi/internal/config"
	"inventoryapi/internal/inventory"
	"inventoryapi/internal/platform/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// Attribute names in the inventory table.
const (
	attrSKUID = "sku_id" // numeric partition key
	attrSKU   = "sku"
	attrTitle = "title"
)

// numericKey is the plain decimal form written to the N-typed sku_id key.
var numericKey = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// DynamoAPI is the subset of *dynamodb.Client the store uses.
type DynamoAPI interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DynamoTable names the table and its two secondary indexes.
type DynamoTable struct {
	Name       string
	SKUIndex   string
	TitleIndex string
	// PingURL is fetched by Ping; any 2xx answer counts as reachable.
	PingURL string
}

// DynamoStore implements inventory.Store on DynamoDB.
type DynamoStore struct {
	client     DynamoAPI
	table      DynamoTable
	httpClient *http.Client
	logger     observability.Logger
}

func NewDynamoStore(client DynamoAPI, table DynamoTable, httpClient *http.Client, logger observability.Logger) *DynamoStore {
	return &DynamoStore{
		client:     client,
		table:      table,
		httpClient: httpClient,
		logger:     logger,
	}
}

// NewDynamoClient builds a DynamoDB client for the configured region. The
// local region targets DynamoDB Local with dummy static credentials.
func NewDynamoClient(ctx context.Context, cfg *config.Config) (*dynamodb.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	local := cfg.Region == config.RegionLocal

	if local {
		opts = append(opts,
			awsconfig.WithRegion("us-east-1"),
			awsconfig.WithCredentialsProvider(aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
				return aws.Credentials{AccessKeyID: "local", SecretAccessKey: "local"}, nil
			})),
		)
	} else {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if local {
			o.BaseEndpoint = aws.String(cfg.DynamoDBLocalURL)
		}
	}), nil
}

// DynamoPingURL is the readiness probe target for cfg.
func DynamoPingURL(cfg *config.Config) string {
	if cfg.Region == config.RegionLocal {
		return cfg.DynamoDBLocalURL + "/shell"
	}
	return cfg.DynamoDBEndpoint()
}

// GetBySKU queries the sku index. The table is keyed on sku so the index
// should hold one item; if it holds several the one with the latest expiry
// wins, ties going to the last item scanned.
func (s *DynamoStore) GetBySKU(ctx context.Context, sku string) (inventory.Record, error) {
	records, err := s.queryIndex(ctx, s.table.SKUIndex, attrSKU, sku)
	if err != nil {
		return inventory.Record{}, s.storeErr("query by sku", err)
	}
	if len(records) == 0 {
		return inventory.Record{}, inventory.ErrNotFound
	}
	if len(records) > 1 {
		s.logger.Warn("Ambiguous sku lookup, picking latest expiry",
			zap.String("sku", sku),
			zap.Int("matches", len(records)),
		)
	}
	return latestExpiry(records), nil
}

func (s *DynamoStore) FindByTitle(ctx context.Context, title string) ([]inventory.Record, error) {
	records, err := s.queryIndex(ctx, s.table.TitleIndex, attrTitle, title)
	if err != nil {
		return nil, s.storeErr("query by title", err)
	}
	return records, nil
}

func (s *DynamoStore) Put(ctx context.Context, rec inventory.Record) error {
	if err := checkKey(rec.SKU); err != nil {
		return err
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return s.storeErr("marshal inventory", err)
	}
	item[attrSKUID] = &types.AttributeValueMemberN{Value: rec.SKU}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table.Name),
		Item:      item,
	})
	if err != nil {
		return s.storeErr("put inventory", err)
	}
	return nil
}

// Delete removes the item at key. It does not read the item first, so the
// echo carries the key only.
func (s *DynamoStore) Delete(ctx context.Context, key string) (inventory.Record, error) {
	if err := checkKey(key); err != nil {
		return inventory.Record{}, err
	}
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table.Name),
		Key: map[string]types.AttributeValue{
			attrSKUID: &types.AttributeValueMemberN{Value: key},
		},
	})
	if err != nil {
		return inventory.Record{}, s.storeErr("delete inventory", err)
	}
	return inventory.Record{SKU: key}, nil
}

func (s *DynamoStore) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.table.PingURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("dynamodb endpoint answered %s", resp.Status)
	}
	return nil
}

func (s *DynamoStore) queryIndex(ctx context.Context, index, attr, value string) ([]inventory.Record, error) {
	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:              aws.String(s.table.Name),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String(fmt.Sprintf("#%s = :%s", attr, attr)),
		ExpressionAttributeNames: map[string]string{
			"#" + attr: attr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":" + attr: &types.AttributeValueMemberS{Value: value},
		},
	})

	records := []inventory.Record{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []inventory.Record
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal inventory: %w", err)
		}
		records = append(records, batch...)
	}
	return records, nil
}

func (s *DynamoStore) storeErr(op string, err error) error {
	fields := []zap.Field{zap.String("operation", op), zap.Error(err)}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		fields = append(fields,
			zap.String("error_code", apiErr.ErrorCode()),
			zap.String("fault", apiErr.ErrorFault().String()),
		)
	}
	s.logger.Error("❌ DynamoDB request failed", fields...)

	return fmt.Errorf("%w: %s: %w", inventory.ErrStoreUnavailable, op, err)
}

// checkKey rejects a non-numeric key before any request is made.
func checkKey(key string) error {
	if !numericKey.MatchString(key) {
		return fmt.Errorf("%w: sku %q is not numeric", inventory.ErrMissingField, key)
	}
	return nil
}

func latestExpiry(records []inventory.Record) inventory.Record {
	best := records[0]
	for _, r := range records[1:] {
		if r.Expiry >= best.Expiry {
			best = r
		}
	}
	return best
}
