// Package selection parses, validates, and serializes selection definitions.
//
// A selection definition is a small JSON document describing which checklist
// items to show and how to order them:
//
//	{
//	  "version": 1,
//	  "source": {
//	    "folder": "Projects",
//	    "filters": [
//	      {"property": "status", "operator": "=", "value": "active"}
//	    ]
//	  },
//	  "view": {
//	    "showCompleted": false,
//	    "sortBy": "file",
//	    "sortDirection": "desc"
//	  }
//	}
//
// # Validation
//
// Parsing is all-or-nothing. The untrusted document is first standardized
// (comments and trailing commas are tolerated), then checked against an
// embedded JSON Schema, and only then decoded into typed values. Any
// violation rejects the whole document with an *Error whose Kind names the
// offending section:
//
//   - MalformedJSON: not a JSON object
//   - MissingOrInvalidVersion: version absent or not a positive integer
//   - InvalidSource: bad folder, filters, or filter entry
//   - InvalidView: bad showCompleted, sortBy, or sortDirection
//
// Absent sections and fields take fixed defaults (see MergeWithDefaults).
// Unknown fields are ignored on read and never written back.
//
// # File Format
//
// Serialize writes canonical JSON: fixed key order, 2-space indentation,
// no HTML escaping, trailing newline.
package selection
