package utils

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ExtractString safely extracts a string from a DynamoDB attribute map
func ExtractString(item map[string]types.AttributeValue, field string) string {
	if attr, ok := item[field]; ok {
		if v, ok := attr.(*types.AttributeValueMemberS); ok {
			return v.Value
		}
	}
	return ""
}

// StringKey builds a single-attribute string key
func StringKey(field, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		field: &types.AttributeValueMemberS{Value: value},
	}
}

// KeyFromItem copies the named key attributes out of a full item.
// Attributes that are missing or not strings are skipped.
func KeyFromItem(item map[string]types.AttributeValue, fields ...string) map[string]types.AttributeValue {
	key := make(map[string]types.AttributeValue, len(fields))
	for _, field := range fields {
		if v := ExtractString(item, field); v != "" {
			key[field] = &types.AttributeValueMemberS{Value: v}
		}
	}
	return key
}
