package services

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"platewise_server/logger"
	"platewise_server/models"
	"platewise_server/utils"
)

const (
	userIDAttr  = "user_id"
	sortKeyAttr = "sk"
	// Fixed width so sort keys order the same way timestamps do
	sortKeyTimeLayout = "2006-01-02T15:04:05.000000000Z"
)

// historyItem is the stored shape of a history record
type historyItem struct {
	models.MealHistoryRecord
	SortKey string `dynamodbav:"sk"`
}

func historySortKey(record models.MealHistoryRecord) string {
	return record.Timestamp.UTC().Format(sortKeyTimeLayout) + "#" + record.RecordID
}

// DynamoStore persists profiles and history in two DynamoDB tables:
// users (PK user_id) and history (PK user_id, SK sk).
type DynamoStore struct {
	Dynamo       *DynamoService
	UsersTable   string
	HistoryTable string
}

func NewDynamoStore(client DynamoAPI, usersTable, historyTable string, log *logger.Logger) *DynamoStore {
	if log == nil {
		log = logger.NewNop()
	}
	return &DynamoStore{
		Dynamo:       &DynamoService{Client: client, Log: log},
		UsersTable:   usersTable,
		HistoryTable: historyTable,
	}
}

func (s *DynamoStore) userCondition(userID string) (string, map[string]types.AttributeValue, map[string]string) {
	return "#uid = :uid",
		map[string]types.AttributeValue{":uid": &types.AttributeValueMemberS{Value: userID}},
		map[string]string{"#uid": userIDAttr}
}

func (s *DynamoStore) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	item, err := s.Dynamo.GetItem(ctx, s.UsersTable, utils.StringKey(userIDAttr, userID))
	if err != nil {
		return nil, storeErr("get profile", err)
	}
	if item == nil {
		return nil, nil
	}
	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, storeErr("get profile", fmt.Errorf("failed to unmarshal profile: %w", err))
	}
	return &profile, nil
}

func (s *DynamoStore) PutProfile(ctx context.Context, profile models.UserProfile) error {
	return storeErr("put profile", s.Dynamo.PutItem(ctx, s.UsersTable, profile))
}

func (s *DynamoStore) AppendHistory(ctx context.Context, record models.MealHistoryRecord) error {
	item := historyItem{MealHistoryRecord: record, SortKey: historySortKey(record)}
	return storeErr("append history", s.Dynamo.PutItem(ctx, s.HistoryTable, item))
}

// SaveAnalysis writes the profile and the new history record in one transaction
func (s *DynamoStore) SaveAnalysis(ctx context.Context, profile models.UserProfile, record models.MealHistoryRecord) error {
	profileItem, err := attributevalue.MarshalMap(profile)
	if err != nil {
		return storeErr("save analysis", fmt.Errorf("failed to marshal profile: %w", err))
	}
	historyAttrs, err := attributevalue.MarshalMap(historyItem{MealHistoryRecord: record, SortKey: historySortKey(record)})
	if err != nil {
		return storeErr("save analysis", fmt.Errorf("failed to marshal history record: %w", err))
	}

	items := []types.TransactWriteItem{
		{Put: &types.Put{TableName: aws.String(s.UsersTable), Item: profileItem}},
		{Put: &types.Put{
			TableName:                aws.String(s.HistoryTable),
			Item:                     historyAttrs,
			ConditionExpression:      aws.String("attribute_not_exists(#sk)"),
			ExpressionAttributeNames: map[string]string{"#sk": sortKeyAttr},
		}},
	}
	return storeErr("save analysis", s.Dynamo.TransactWrite(ctx, items))
}

func (s *DynamoStore) ListHistory(ctx context.Context, userID string, limit int) ([]models.MealHistoryRecord, error) {
	cond, values, names := s.userCondition(userID)
	items, err := s.Dynamo.QueryItemsWithOptions(ctx, s.HistoryTable, cond, values, names, int32(limit), true)
	if err != nil {
		return nil, storeErr("list history", err)
	}

	var stored []historyItem
	if err := attributevalue.UnmarshalListOfMaps(items, &stored); err != nil {
		return nil, storeErr("list history", fmt.Errorf("failed to parse history: %w", err))
	}
	records := make([]models.MealHistoryRecord, 0, len(stored))
	for _, h := range stored {
		records = append(records, h.MealHistoryRecord)
	}
	return records, nil
}

func (s *DynamoStore) CountHistory(ctx context.Context, userID string) (int, error) {
	cond, values, names := s.userCondition(userID)
	n, err := s.Dynamo.CountItems(ctx, s.HistoryTable, cond, values, names)
	if err != nil {
		return 0, storeErr("count history", err)
	}
	return n, nil
}

// DeleteUser removes history before the profile, so a failed run can be retried
func (s *DynamoStore) DeleteUser(ctx context.Context, userID string) error {
	key := utils.StringKey(userIDAttr, userID)
	item, err := s.Dynamo.GetItem(ctx, s.UsersTable, key)
	if err != nil {
		return storeErr("delete user", err)
	}
	if item == nil {
		return ErrNotFound
	}

	cond, values, names := s.userCondition(userID)
	keys, err := s.Dynamo.QueryAllKeys(ctx, s.HistoryTable, cond, values, names, []string{userIDAttr, sortKeyAttr})
	if err != nil {
		return storeErr("delete user", err)
	}
	requests := make([]types.WriteRequest, 0, len(keys))
	for _, k := range keys {
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{Key: utils.KeyFromItem(k, userIDAttr, sortKeyAttr)},
		})
	}
	if err := s.Dynamo.BatchWriteItems(ctx, s.HistoryTable, requests); err != nil {
		return storeErr("delete user", err)
	}

	if err := s.Dynamo.DeleteItem(ctx, s.UsersTable, key); err != nil {
		return storeErr("delete user", err)
	}
	s.Dynamo.Log.Info("Deleted user", "user_id", userID, "history_records", len(keys))
	return nil
}
