package tracing

import (
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

var redactedKeyFragments = []string{
	"password",
	"secret",
	"token",
	"api_key",
	"credential",
	"authorization",
}

// SafeAttributes filters out attributes whose key looks like a
// credential before they reach a span.
func SafeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	safe := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if redactedKey(string(attr.Key)) {
			continue
		}
		safe = append(safe, attr)
	}
	return safe
}

// SafeError reduces an error to its type so span events never carry
// message payloads such as feed URLs or SQL fragments.
func SafeError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%T", err)
}

func redactedKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, fragment := range redactedKeyFragments {
		if strings.Contains(key, fragment) {
			return true
		}
	}
	return false
}
