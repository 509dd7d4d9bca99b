package otel

import (
	"go.opentelemetry.io/otel/attribute"
)

const instrumentationName = "github.com/neverliie/ai-sdk-go"

type KeyValue = attribute.KeyValue

func String(key string, val string) KeyValue {
	return attribute.String(key, val)
}

func KeyValues(attrs ...[]KeyValue) []KeyValue {
	var result []KeyValue

	for _, a := range attrs {
		result = append(result, a...)
	}

	return result
}
