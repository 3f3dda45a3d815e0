package assertions

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// EnvelopeSchema describes the wrapper every API response uses
const EnvelopeSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["success", "errorKey"],
  "properties": {
    "success": {"type": "boolean"},
    "errorKey": {"type": "string"},
    "errorProperties": {"type": ["array", "null"]},
    "data": {}
  }
}`

// Schema validates value against a JSON Schema document. value may be raw JSON
// bytes, a json.RawMessage, a gjson result or any marshalable value.
func (c *Checker) Schema(subject string, value any, schema string) bool {
	passed, msg := validateSchema(value, schema)
	return c.record(&Result{
		Passed:   passed,
		Message:  msg,
		Subject:  subject,
		Operator: "schema",
	}).Passed
}

func validateSchema(value any, schema string) (bool, string) {
	var doc []byte
	switch v := value.(type) {
	case []byte:
		doc = v
	case json.RawMessage:
		doc = v
	default:
		data, err := json.Marshal(normalize(value))
		if err != nil {
			return false, fmt.Sprintf("failed to marshal actual value: %v", err)
		}
		doc = data
	}

	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(schema), gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return false, fmt.Sprintf("schema validation error: %v", err)
	}

	if result.Valid() {
		return true, ""
	}

	var errors []string
	for _, desc := range result.Errors() {
		errors = append(errors, desc.String())
	}
	return false, fmt.Sprintf("schema validation failed: %s", strings.Join(errors, "; "))
}
