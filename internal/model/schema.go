// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"reflect"

	"github.com/invopop/jsonschema"
)

// PayloadSchema returns the JSON Schema of the response payload the client
// accepts. The lenient field types are described by the shapes the backend
// is expected to send, not every shape the decoder tolerates.
func PayloadSchema() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
		ExpandedStruct:            true,
		Mapper:                    mapLenientTypes,
	}

	schema := reflector.Reflect(&Payload{})
	schema.Title = "GuideWeave response payload"
	schema.Description = "Body returned by POST /api/chat"
	return schema
}

func mapLenientTypes(t reflect.Type) *jsonschema.Schema {
	switch t {
	case reflect.TypeOf(StepLabel("")):
		return &jsonschema.Schema{
			Type:        "number",
			Description: "Step number, shown as sent",
		}
	case reflect.TypeOf(Chunks(nil)):
		return &jsonschema.Schema{
			Type:        "array",
			Items:       &jsonschema.Schema{Type: "integer"},
			Description: "Ids of the manual chunks the step cites",
		}
	case reflect.TypeOf(Images(nil)):
		return &jsonschema.Schema{
			Description: `Image path, list of image paths, or the string "null"`,
			OneOf: []*jsonschema.Schema{
				{Type: "string"},
				{Type: "array", Items: &jsonschema.Schema{Type: "string"}},
			},
		}
	}
	return nil
}
