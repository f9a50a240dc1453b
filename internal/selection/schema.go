package selection

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/taskbase/internal/utils"
)

const schemaURL = "selection.schema.json"

// SchemaSource is the JSON Schema every selection document must satisfy.
// The version field is checked separately so that its absence is reported
// as MissingOrInvalidVersion rather than a generic root error.
const SchemaSource = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "version": {"type": "integer", "minimum": 1},
    "source": {
      "type": "object",
      "properties": {
        "folder": {"type": "string"},
        "filters": {"type": "array", "items": {"$ref": "#/$defs/filter"}}
      }
    },
    "view": {
      "type": "object",
      "properties": {
        "showCompleted": {"type": "boolean"},
        "sortBy": {"type": "string"},
        "sortDirection": {"enum": ["asc", "desc"]}
      }
    }
  },
  "$defs": {
    "filter": {
      "type": "object",
      "required": ["property", "operator", "value"],
      "properties": {
        "property": {"type": "string", "minLength": 1},
        "operator": {"enum": ["=", "!=", "<", "<=", ">", ">=", "contains"]},
        "value": {"type": "string"}
      }
    }
  }
}`

var schema = jsonschema.MustCompileString(schemaURL, SchemaSource)

type violation struct {
	path    string
	message string
}

// checkSchema validates doc and converts violations into a single *Error
// for the highest-priority section (version, then source, then view).
func checkSchema(doc any) error {
	err := schema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &Error{Kind: MalformedJSON, Err: err}
	}

	var leaves []violation
	collectViolations(ve, &leaves)
	byKind := map[Kind][]violation{}
	for _, v := range leaves {
		k := kindForPath(v.path)
		byKind[k] = append(byKind[k], v)
	}
	for _, k := range []Kind{MissingOrInvalidVersion, InvalidSource, InvalidView, MalformedJSON} {
		vs := byKind[k]
		if len(vs) == 0 {
			continue
		}
		sort.SliceStable(vs, func(i, j int) bool { return vs[i].path < vs[j].path })
		out := &Error{Kind: k, Path: vs[0].path}
		for _, v := range vs {
			if v.path != "" {
				out.Details = append(out.Details, fmt.Sprintf("%s: %s", v.path, v.message))
			} else {
				out.Details = append(out.Details, v.message)
			}
		}
		return out
	}
	return &Error{Kind: MalformedJSON, Err: err}
}

func collectViolations(err *jsonschema.ValidationError, out *[]violation) {
	if len(err.Causes) == 0 {
		*out = append(*out, violation{
			path:    utils.JSONPointerToPath(err.InstanceLocation),
			message: err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		collectViolations(cause, out)
	}
}

func kindForPath(path string) Kind {
	head, _, _ := strings.Cut(path, ".")
	head, _, _ = strings.Cut(head, "[")
	switch head {
	case "version":
		return MissingOrInvalidVersion
	case "source":
		return InvalidSource
	case "view":
		return InvalidView
	}
	return MalformedJSON
}
