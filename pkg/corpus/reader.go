// Copyright 2026 The Sloop Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
)

// functionWrapper matches the OpenAI-style {"type":"function","function":{...}} shape.
type functionWrapper struct {
	Type     string           `json:"type"`
	Function *functionPayload `json:"function"`
}

type functionPayload struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// multiToolRecord matches a record whose "tools" field is either an
// array of bare/wrapper tool objects, or a JSON-encoded string of the same.
type multiToolRecord struct {
	Tools json.RawMessage `json:"tools"`
}

// Read parses newline-delimited JSON from r, accepting, per line, any of:
//   - a bare function object {"name":..., "description":..., "parameters":...}
//   - an OpenAI tool wrapper {"type":"function","function":{...}}
//   - a record {"tools": [...]} or {"tools": "<json-encoded array>"}
//
// Individual malformed records are logged and skipped. Read only returns
// an error (MalformedRecordError) when a line's outermost JSON fails to
// parse at all.
func Read(r io.Reader, logger *slog.Logger) ([]*Tool, error) {
	if logger == nil {
		logger = slog.Default()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var tools []*Tool
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		trimmed := make([]byte, len(line))
		copy(trimmed, line)
		if len(trimmed) == 0 {
			continue
		}
		isBlank := true
		for _, b := range trimmed {
			if b != ' ' && b != '\t' && b != '\r' {
				isBlank = false
				break
			}
		}
		if isBlank {
			continue
		}

		var raw map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return tools, &MalformedRecordError{Line: lineNo, Err: err}
		}

		payloads := extractPayloads(raw, logger, lineNo)
		for _, fp := range payloads {
			if fp.Name == "" {
				logger.Warn("corpus: skipping tool record with no name", "line", lineNo)
				continue
			}
			tools = append(tools, toTool(fp))
		}
	}
	if err := scanner.Err(); err != nil {
		return tools, &MalformedRecordError{Line: lineNo, Err: err}
	}

	return tools, nil
}

// extractPayloads normalizes the three accepted record shapes into a flat
// list of functionPayload. It never errors: anything it cannot make sense
// of is logged and dropped.
func extractPayloads(raw map[string]json.RawMessage, logger *slog.Logger, lineNo int) []*functionPayload {
	if toolsField, ok := raw["tools"]; ok {
		return extractToolsField(toolsField, logger, lineNo)
	}

	if funcField, ok := raw["function"]; ok {
		var fp functionPayload
		if err := json.Unmarshal(funcField, &fp); err != nil {
			logger.Warn("corpus: skipping malformed function wrapper", "line", lineNo, "error", err)
			return nil
		}
		return []*functionPayload{&fp}
	}

	// Bare function object.
	var fp functionPayload
	if err := json.Unmarshal(rawToBytes(raw), &fp); err != nil {
		logger.Warn("corpus: skipping unrecognized record", "line", lineNo, "error", err)
		return nil
	}
	return []*functionPayload{&fp}
}

func extractToolsField(field json.RawMessage, logger *slog.Logger, lineNo int) []*functionPayload {
	// Either a JSON array, or a JSON-encoded string containing an array.
	var arr []json.RawMessage
	if err := json.Unmarshal(field, &arr); err == nil {
		return decodeToolArray(arr, logger, lineNo)
	}

	var encoded string
	if err := json.Unmarshal(field, &encoded); err != nil {
		logger.Warn("corpus: skipping record with unparseable tools field", "line", lineNo, "error", err)
		return nil
	}
	if err := json.Unmarshal([]byte(encoded), &arr); err != nil {
		logger.Warn("corpus: skipping record with unparseable tools string", "line", lineNo, "error", err)
		return nil
	}
	return decodeToolArray(arr, logger, lineNo)
}

func decodeToolArray(arr []json.RawMessage, logger *slog.Logger, lineNo int) []*functionPayload {
	var out []*functionPayload
	for _, item := range arr {
		var wrapper functionWrapper
		if err := json.Unmarshal(item, &wrapper); err == nil && wrapper.Function != nil {
			out = append(out, wrapper.Function)
			continue
		}
		var fp functionPayload
		if err := json.Unmarshal(item, &fp); err != nil {
			logger.Warn("corpus: skipping malformed tool entry", "line", lineNo, "error", err)
			continue
		}
		out = append(out, &fp)
	}
	return out
}

func rawToBytes(raw map[string]json.RawMessage) []byte {
	b, _ := json.Marshal(raw)
	return b
}

func toTool(fp *functionPayload) *Tool {
	return &Tool{
		Name:        fp.Name,
		Description: fp.Description,
		Parameters:  toSchema(fp.Parameters),
		Category:    DefaultCategory,
	}
}

func toSchema(params map[string]any) ParameterSchema {
	schema := ParameterSchema{}
	if params == nil {
		return schema
	}

	if props, ok := params["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]ParameterProperty, len(props))
		names := make([]string, 0, len(props))
		for name, raw := range props {
			names = append(names, name)
			schema.Properties[name] = toProperty(raw)
		}
		sort.Strings(names)
		schema.Names = names
	}

	if req, ok := params["required"].([]any); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}

	return schema
}

func toProperty(raw any) ParameterProperty {
	m, ok := raw.(map[string]any)
	if !ok {
		return ParameterProperty{}
	}

	prop := ParameterProperty{}
	if t, ok := m["type"].(string); ok {
		prop.Type = t
	}
	if d, ok := m["description"].(string); ok {
		prop.Description = d
	}
	if items, ok := m["items"]; ok {
		prop.Items = items
	}
	if enumRaw, ok := m["enum"].([]any); ok {
		for _, e := range enumRaw {
			prop.Enum = append(prop.Enum, fmt.Sprintf("%v", e))
		}
	}
	return prop
}
