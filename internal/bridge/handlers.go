package bridge

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/theforeman/foreman-mcp/internal/foreman"
)

// Handlers compose Foreman Client calls. Successful Foreman payloads
// are returned verbatim; the dispatcher owns error classification.

func handleListHosts(ctx context.Context, fc foreman.Caller, args map[string]any) (any, error) {
	query := listingQuery(args)
	if id, ok := intArg(args, "organization_id"); ok {
		query.Set("organization_id", fmt.Sprintf("%d", id))
	}
	if id, ok := intArg(args, "location_id"); ok {
		query.Set("location_id", fmt.Sprintf("%d", id))
	}
	_, payload, err := fc.Call(ctx, http.MethodGet, "/api/hosts", query, nil)
	return payload, err
}

func handleGetHost(ctx context.Context, fc foreman.Caller, args map[string]any) (any, error) {
	id, _ := stringArg(args, "id")
	_, payload, err := fc.Call(ctx, http.MethodGet, "/api/hosts/"+url.PathEscape(id), nil, nil)
	return payload, err
}

func handleCreateHost(ctx context.Context, fc foreman.Caller, args map[string]any) (any, error) {
	host, _ := mapArg(args, "host")
	_, payload, err := fc.Call(ctx, http.MethodPost, "/api/hosts", nil, map[string]any{"host": host})
	return payload, err
}

func handleUpdateHost(ctx context.Context, fc foreman.Caller, args map[string]any) (any, error) {
	id, _ := stringArg(args, "id")
	host, _ := mapArg(args, "host")
	_, payload, err := fc.Call(ctx, http.MethodPut, "/api/hosts/"+url.PathEscape(id), nil, map[string]any{"host": host})
	return payload, err
}

func handleDeleteHost(ctx context.Context, fc foreman.Caller, args map[string]any) (any, error) {
	id, _ := stringArg(args, "id")
	_, payload, err := fc.Call(ctx, http.MethodDelete, "/api/hosts/"+url.PathEscape(id), nil, nil)
	return payload, err
}

var powerActions = map[string]bool{
	"on":    true,
	"off":   true,
	"soft":  true,
	"cycle": true,
	"state": true,
}

func handlePowerHost(ctx context.Context, fc foreman.Caller, args map[string]any) (any, error) {
	id, _ := stringArg(args, "id")
	action, _ := stringArg(args, "action")
	if !powerActions[action] {
		return nil, &ArgumentError{Field: "action", Reason: "expected one of on, off, soft, cycle, state"}
	}
	_, payload, err := fc.Call(ctx, http.MethodPut, "/api/hosts/"+url.PathEscape(id)+"/power", nil, map[string]any{"power_action": action})
	return payload, err
}

func handleListHostgroups(ctx context.Context, fc foreman.Caller, args map[string]any) (any, error) {
	_, payload, err := fc.Call(ctx, http.MethodGet, "/api/hostgroups", listingQuery(args), nil)
	return payload, err
}

func handleListOrganizations(ctx context.Context, fc foreman.Caller, args map[string]any) (any, error) {
	_, payload, err := fc.Call(ctx, http.MethodGet, "/api/organizations", listingQuery(args), nil)
	return payload, err
}

func handleListLocations(ctx context.Context, fc foreman.Caller, args map[string]any) (any, error) {
	_, payload, err := fc.Call(ctx, http.MethodGet, "/api/locations", listingQuery(args), nil)
	return payload, err
}

// handleCallAPI is the generic passthrough for resources without a
// dedicated tool. Paths are confined to the /api namespace.
func handleCallAPI(ctx context.Context, fc foreman.Caller, args map[string]any) (any, error) {
	method, _ := stringArg(args, "method")
	method = strings.ToUpper(method)
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return nil, &ArgumentError{Field: "method", Reason: "expected GET, POST, PUT or DELETE"}
	}

	apiPath, _ := stringArg(args, "path")
	if !strings.HasPrefix(apiPath, "/api/") && apiPath != "/api" {
		return nil, &ArgumentError{Field: "path", Reason: "must be under /api"}
	}
	if strings.Contains(apiPath, "..") {
		return nil, &ArgumentError{Field: "path", Reason: "must not contain .."}
	}

	var query url.Values
	if params, ok := mapArg(args, "params"); ok {
		query = url.Values{}
		for k, v := range params {
			query.Set(k, fmt.Sprintf("%v", v))
		}
	}

	var body any
	if b, ok := mapArg(args, "body"); ok {
		body = b
	}

	_, payload, err := fc.Call(ctx, method, apiPath, query, body)
	return payload, err
}

// listingQuery extracts the shared search/paging arguments.
func listingQuery(args map[string]any) url.Values {
	query := url.Values{}
	if search, ok := stringArg(args, "search"); ok && search != "" {
		query.Set("search", search)
	}
	if page, ok := intArg(args, "page"); ok {
		query.Set("page", fmt.Sprintf("%d", page))
	}
	if perPage, ok := intArg(args, "per_page"); ok {
		query.Set("per_page", fmt.Sprintf("%d", perPage))
	}
	return query
}

// Argument accessors. Arguments arrive schema-validated, so these only
// shape already-typed values.

func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func intArg(args map[string]any, key string) (int, bool) {
	v, ok := args[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

func mapArg(args map[string]any, key string) (map[string]any, bool) {
	v, ok := args[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}
