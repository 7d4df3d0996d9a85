package services

import (
	"strings"

	"checkout-service/models"
)

var sensitiveKeys = map[string]struct{}{
	"card":     {},
	"cvv":      {},
	"cvc":      {},
	"password": {},
	"secret":   {},
}

// IsSensitiveKey matches on the whole key, case-insensitively.
func IsSensitiveKey(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}

// RedactSensitive returns a copy of v in which the value of every sensitive
// key is replaced with models.RedactedValue, at any depth.
func RedactSensitive(v interface{}) interface{} {
	switch val := v.(type) {
	case models.NormalizedPayload:
		return models.NormalizedPayload(redactMap(val))
	case map[string]interface{}:
		return redactMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = RedactSensitive(item)
		}
		return out
	default:
		return v
	}
}

func redactMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		if IsSensitiveKey(k) {
			out[k] = models.RedactedValue
			continue
		}
		out[k] = RedactSensitive(v)
	}
	return out
}
