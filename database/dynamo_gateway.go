package database

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"stoic-notes/notes/config"
	"stoic-notes/notes/models"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoGateway.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// NewDynamoClient builds a client for cfg.Region. A non-empty DynamoDBHost
// points the client at a local endpoint such as DynamoDB Local.
func NewDynamoClient(ctx context.Context, cfg config.Config) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDBHost != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBHost)
		}
	}), nil
}

type DynamoGateway struct {
	client  DynamoAPI
	table   string
	specs   []IndexSpec
	indexes indexRegistry
}

func NewDynamoGateway(client DynamoAPI, cfg config.Config) *DynamoGateway {
	specs := Indexes(cfg)
	return &DynamoGateway{
		client:  client,
		table:   cfg.Table,
		specs:   specs,
		indexes: newIndexRegistry(specs),
	}
}

func noteKey(noteID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		models.AttrNoteID: &types.AttributeValueMemberS{Value: noteID},
	}
}

func (g *DynamoGateway) PutItem(ctx context.Context, note models.Note) error {
	item, err := attributevalue.MarshalMap(note)
	if err != nil {
		return fmt.Errorf("failed to marshal note %s: %w", note.NoteID, err)
	}
	_, err = g.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(g.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put note %s: %w", note.NoteID, err)
	}
	return nil
}

func (g *DynamoGateway) GetItem(ctx context.Context, noteID string) (models.Note, bool, error) {
	out, err := g.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(g.table),
		Key:            noteKey(noteID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return models.Note{}, false, fmt.Errorf("failed to get note %s: %w", noteID, err)
	}
	if len(out.Item) == 0 {
		return models.Note{}, false, nil
	}
	var note models.Note
	if err := attributevalue.UnmarshalMap(out.Item, &note); err != nil {
		return models.Note{}, false, fmt.Errorf("failed to unmarshal note %s: %w", noteID, err)
	}
	return note, true, nil
}

func (g *DynamoGateway) UpdateItem(ctx context.Context, noteID string, assignments map[string]any, condition Condition) (ConditionalWriteResult, error) {
	if err := condition.validate(); err != nil {
		return PreconditionFailed, err
	}
	if err := checkAssignments(assignments); err != nil {
		return PreconditionFailed, err
	}

	names := make([]string, 0, len(assignments))
	for name := range assignments {
		names = append(names, name)
	}
	sort.Strings(names)

	var update expression.UpdateBuilder
	for _, name := range names {
		update = update.Set(expression.Name(name), expression.Value(assignments[name]))
	}
	cond := expression.AttributeExists(expression.Name(condition.AttributeExists))
	if condition.UpdatedAt != nil {
		cond = cond.And(expression.Name(models.AttrUpdatedAt).Equal(expression.Value(*condition.UpdatedAt)))
	}
	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(cond).
		Build()
	if err != nil {
		return PreconditionFailed, fmt.Errorf("failed to build update expression: %w", err)
	}

	out, err := g.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(g.table),
		Key:                       noteKey(noteID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return PreconditionFailed, nil
		}
		return PreconditionFailed, fmt.Errorf("failed to update note %s: %w", noteID, err)
	}

	var note models.Note
	if err := attributevalue.UnmarshalMap(out.Attributes, &note); err != nil {
		return PreconditionFailed, fmt.Errorf("failed to unmarshal note %s: %w", noteID, err)
	}
	return Updated(note), nil
}

func (g *DynamoGateway) DeleteItem(ctx context.Context, noteID string) (models.Note, bool, error) {
	out, err := g.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(g.table),
		Key:          noteKey(noteID),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return models.Note{}, false, fmt.Errorf("failed to delete note %s: %w", noteID, err)
	}
	if len(out.Attributes) == 0 {
		return models.Note{}, false, nil
	}
	var prior models.Note
	if err := attributevalue.UnmarshalMap(out.Attributes, &prior); err != nil {
		return models.Note{}, false, fmt.Errorf("failed to unmarshal note %s: %w", noteID, err)
	}
	return prior, true, nil
}

func (g *DynamoGateway) QueryIndex(ctx context.Context, index string, key KeyCondition, projection []string) ([]models.Note, error) {
	if _, err := g.indexes.lookup(index, key); err != nil {
		return nil, err
	}

	builder := expression.NewBuilder().
		WithKeyCondition(expression.Key(key.Attribute).Equal(expression.Value(key.Value)))
	if len(projection) > 0 {
		names := make([]expression.NameBuilder, 0, len(projection)-1)
		for _, name := range projection[1:] {
			names = append(names, expression.Name(name))
		}
		builder = builder.WithProjection(expression.NamesList(expression.Name(projection[0]), names...))
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(g.table),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    expr.KeyCondition(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(true),
	}

	notes := make([]models.Note, 0)
	paginator := dynamodb.NewQueryPaginator(g.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query index %s: %w", index, err)
		}
		var items []models.Note
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal query results: %w", err)
		}
		for _, item := range items {
			notes = append(notes, item.Project(projection))
		}
	}
	return notes, nil
}

// Migrate creates the table and both secondary indexes. An existing table is
// left untouched.
func (g *DynamoGateway) Migrate(ctx context.Context) error {
	gsis := make([]types.GlobalSecondaryIndex, 0, len(g.specs))
	for _, spec := range g.specs {
		gsis = append(gsis, types.GlobalSecondaryIndex{
			IndexName: aws.String(spec.Name),
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(spec.HashKey), KeyType: types.KeyTypeHash},
				{AttributeName: aws.String(models.AttrNoteID), KeyType: types.KeyTypeRange},
			},
			Projection: &types.Projection{
				ProjectionType:   types.ProjectionTypeInclude,
				NonKeyAttributes: spec.Projection,
			},
		})
	}

	_, err := g.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(g.table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(models.AttrNoteID), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(models.AttrUserID), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(models.AttrNotebook), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(models.AttrNoteID), KeyType: types.KeyTypeHash},
		},
		BillingMode:            types.BillingModePayPerRequest,
		GlobalSecondaryIndexes: gsis,
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			return nil
		}
		return fmt.Errorf("failed to create table %s: %w", g.table, err)
	}
	return nil
}

func (g *DynamoGateway) Close() error {
	return nil
}
