package services

import (
	"testing"

	"checkout-service/models"

	"github.com/stretchr/testify/assert"
)

func TestRedactSensitive_NestedDepthThree(t *testing.T) {
	payload := models.NormalizedPayload{
		"event_type": "invoice_paid",
		"a": map[string]interface{}{
			"b": map[string]interface{}{
				"password": "hunter2",
				"keep":     "me",
			},
		},
	}

	got := RedactSensitive(payload).(models.NormalizedPayload)

	inner := got["a"].(map[string]interface{})["b"].(map[string]interface{})
	assert.Equal(t, models.RedactedValue, inner["password"])
	assert.Equal(t, "me", inner["keep"])
	assert.Equal(t, "invoice_paid", got["event_type"])

	// input is left untouched
	orig := payload["a"].(map[string]interface{})["b"].(map[string]interface{})
	assert.Equal(t, "hunter2", orig["password"])
}

func TestRedactSensitive_ArraysAndCase(t *testing.T) {
	in := map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"CVC": "123", "id": "si_1"},
			map[string]interface{}{"card": map[string]interface{}{"last4": "4242"}},
			"plain",
		},
		"Secret": "s",
	}

	got := RedactSensitive(in).(map[string]interface{})

	items := got["items"].([]interface{})
	assert.Equal(t, models.RedactedValue, items[0].(map[string]interface{})["CVC"])
	assert.Equal(t, "si_1", items[0].(map[string]interface{})["id"])
	assert.Equal(t, models.RedactedValue, items[1].(map[string]interface{})["card"])
	assert.Equal(t, "plain", items[2])
	assert.Equal(t, models.RedactedValue, got["Secret"])
}

func TestIsSensitiveKey_ExactMatchOnly(t *testing.T) {
	assert.True(t, IsSensitiveKey("PASSWORD"))
	assert.False(t, IsSensitiveKey("card_brand"))
	assert.False(t, IsSensitiveKey("client_secret"))
	assert.False(t, IsSensitiveKey("cardholder"))
}
