package bridge

import "encoding/json"

// Tool input schemas are written by hand rather than generated from
// the input structs: the generated ones use union types like
// "type": ["null", "object"] that strict MCP client validators reject.

var listHostsSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"search": {
			"type": "string",
			"description": "Foreman search expression, e.g. os = RedHat"
		},
		"organization_id": {
			"type": "integer",
			"description": "Scope the listing to one organization"
		},
		"location_id": {
			"type": "integer",
			"description": "Scope the listing to one location"
		},
		"page": {
			"type": "integer",
			"description": "Page number, starting at 1"
		},
		"per_page": {
			"type": "integer",
			"description": "Results per page"
		}
	},
	"additionalProperties": false
}`)

var getHostSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"id": {
			"type": "string",
			"description": "Host id or FQDN"
		}
	},
	"required": ["id"],
	"additionalProperties": false
}`)

var createHostSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"host": {
			"type": "object",
			"description": "Host attributes, passed to Foreman unmodified",
			"additionalProperties": true
		}
	},
	"required": ["host"],
	"additionalProperties": false
}`)

var updateHostSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"id": {
			"type": "string",
			"description": "Host id or FQDN"
		},
		"host": {
			"type": "object",
			"description": "Host attributes to change, passed to Foreman unmodified",
			"additionalProperties": true
		}
	},
	"required": ["id", "host"],
	"additionalProperties": false
}`)

var deleteHostSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"id": {
			"type": "string",
			"description": "Host id or FQDN"
		}
	},
	"required": ["id"],
	"additionalProperties": false
}`)

var powerHostSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"id": {
			"type": "string",
			"description": "Host id or FQDN"
		},
		"action": {
			"type": "string",
			"description": "Power action: on, off, soft, cycle or state"
		}
	},
	"required": ["id", "action"],
	"additionalProperties": false
}`)

// listingSchema covers the plain collection listings (hostgroups,
// organizations, locations): same search and paging surface.
var listingSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"search": {
			"type": "string",
			"description": "Foreman search expression"
		},
		"page": {
			"type": "integer",
			"description": "Page number, starting at 1"
		},
		"per_page": {
			"type": "integer",
			"description": "Results per page"
		}
	},
	"additionalProperties": false
}`)

var callAPISchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"method": {
			"type": "string",
			"description": "HTTP method: GET, POST, PUT or DELETE"
		},
		"path": {
			"type": "string",
			"description": "API path under /api, e.g. /api/smart_proxies"
		},
		"params": {
			"type": "object",
			"description": "Query parameters",
			"additionalProperties": true
		},
		"body": {
			"type": "object",
			"description": "JSON request body, passed to Foreman unmodified",
			"additionalProperties": true
		}
	},
	"required": ["method", "path"],
	"additionalProperties": false
}`)
