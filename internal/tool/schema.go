// SPDX-License-Identifier: AGPL-3.0

package tool

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema derives a JSON-schema-shaped InputSchema from a Go
// parameter struct, so an adapter's Descriptor can publish the exact
// shape the Workflow Planner's LLM prompt describes instead of an
// adapter author hand-writing one.
//
// Example:
//
//	type searchParams struct {
//	    Query string `json:"query" jsonschema:"required,description=Search query"`
//	}
//	desc := Descriptor{Name: "web_search_tool", InputSchema: tool.GenerateSchema[searchParams]()}
func GenerateSchema[T any]() map[string]any {
	reflector := &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		DoNotReference:             true,
	}
	schema := reflector.Reflect(new(T))

	data, err := json.Marshal(schema)
	if err != nil {
		return map[string]any{}
	}
	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return map[string]any{}
	}
	delete(result, "$schema")
	delete(result, "$id")
	return result
}
