// ABOUTME: CRUD operations on named backend resources
// ABOUTME: Encodes list parameters in the simple-REST convention and decodes results

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Record is a backend record. Its shape is defined by the backend.
type Record map[string]any

// ID returns the record's id field as a string
func (r Record) ID() string {
	switch v := r["id"].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Pagination selects a 1-based page
type Pagination struct {
	Page    int
	PerPage int
}

// Sort orders a list by one field
type Sort struct {
	Field string
	Order string // ASC or DESC
}

// ListParams are passed through to the backend
type ListParams struct {
	Filter     map[string]any
	Pagination Pagination
	Sort       Sort
}

// Result is a single-record response
type Result struct {
	Data Record `json:"data"`
}

// ListResult is a list response
type ListResult struct {
	Data  []Record `json:"data"`
	Total int      `json:"total"`
}

// GetList calls GET /{resource}
func (c *Client) GetList(ctx context.Context, resource string, params ListParams) (*ListResult, error) {
	query, err := encodeListParams(params)
	if err != nil {
		return nil, err
	}

	resp, err := c.doAuthorized(ctx, http.MethodGet, resource, query, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return decodeList(resp)
}

// GetMany calls GET /{resource} filtered by ids
func (c *Client) GetMany(ctx context.Context, resource string, ids []string) (*ListResult, error) {
	return c.GetList(ctx, resource, ListParams{Filter: map[string]any{"id": ids}})
}

// GetOne calls GET /{resource}/{id}
func (c *Client) GetOne(ctx context.Context, resource, id string) (*Result, error) {
	resp, err := c.doAuthorized(ctx, http.MethodGet, recordPath(resource, id), nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	rec, err := decodeRecord(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Result{Data: rec}, nil
}

// Create calls POST /{resource}. Fields returned by the backend override the submitted data.
func (c *Client) Create(ctx context.Context, resource string, data Record) (*Result, error) {
	resp, err := c.doAuthorized(ctx, http.MethodPost, resource, nil, data)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	rec, err := decodeRecord(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Result{Data: merge(data, rec)}, nil
}

// Update calls PUT /{resource}/{id}
func (c *Client) Update(ctx context.Context, resource, id string, data Record) (*Result, error) {
	resp, err := c.doAuthorized(ctx, http.MethodPut, recordPath(resource, id), nil, data)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	rec, err := decodeRecord(resp.Body)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = merge(data, Record{"id": id})
	}
	return &Result{Data: rec}, nil
}

// Delete calls DELETE /{resource}/{id}
func (c *Client) Delete(ctx context.Context, resource, id string) (*Result, error) {
	resp, err := c.doAuthorized(ctx, http.MethodDelete, recordPath(resource, id), nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	rec, err := decodeRecord(resp.Body)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = Record{"id": id}
	}
	return &Result{Data: rec}, nil
}

// DeleteMany deletes ids one request at a time, stopping at the first failure.
// It returns the ids deleted before any failure.
func (c *Client) DeleteMany(ctx context.Context, resource string, ids []string) ([]string, error) {
	deleted := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := c.Delete(ctx, resource, id); err != nil {
			return deleted, fmt.Errorf("delete %s/%s: %w", resource, id, err)
		}
		deleted = append(deleted, id)
	}
	return deleted, nil
}

func recordPath(resource, id string) string {
	return strings.TrimRight(resource, "/") + "/" + url.PathEscape(id)
}

// encodeListParams encodes sort=["f","ASC"], range=[start,end] and filter={...}
func encodeListParams(p ListParams) (url.Values, error) {
	query := url.Values{}

	if p.Sort.Field != "" {
		order := strings.ToUpper(p.Sort.Order)
		if order != "DESC" {
			order = "ASC"
		}
		sortJSON, err := json.Marshal([]string{p.Sort.Field, order})
		if err != nil {
			return nil, fmt.Errorf("failed to encode sort: %w", err)
		}
		query.Set("sort", string(sortJSON))
	}

	if p.Pagination.PerPage > 0 {
		page := p.Pagination.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * p.Pagination.PerPage
		end := page*p.Pagination.PerPage - 1
		query.Set("range", fmt.Sprintf("[%d,%d]", start, end))
	}

	if len(p.Filter) > 0 {
		filterJSON, err := json.Marshal(p.Filter)
		if err != nil {
			return nil, fmt.Errorf("failed to encode filter: %w", err)
		}
		query.Set("filter", string(filterJSON))
	}

	return query, nil
}

// decodeList accepts a bare array or a {"data": [...], "total": n} envelope.
// total comes from Content-Range or X-Total-Count, then the envelope, then len(data).
func decodeList(resp *http.Response) (*ListResult, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	result := &ListResult{}
	envelopeTotal := -1

	trimmed := strings.TrimSpace(string(body))
	switch {
	case trimmed == "":
		result.Data = []Record{}
	case strings.HasPrefix(trimmed, "["):
		if err := json.Unmarshal(body, &result.Data); err != nil {
			return nil, fmt.Errorf("invalid response from backend: %w", err)
		}
	default:
		var env struct {
			Data  []Record `json:"data"`
			Total *int     `json:"total"`
		}
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("invalid response from backend: %w", err)
		}
		result.Data = env.Data
		if env.Total != nil {
			envelopeTotal = *env.Total
		}
	}
	if result.Data == nil {
		result.Data = []Record{}
	}

	if total, ok := totalFromHeaders(resp.Header); ok {
		result.Total = total
	} else if envelopeTotal >= 0 {
		result.Total = envelopeTotal
	} else {
		result.Total = len(result.Data)
	}
	return result, nil
}

// totalFromHeaders parses "Content-Range: items 0-24/319" or "X-Total-Count: 319"
func totalFromHeaders(h http.Header) (int, bool) {
	if cr := h.Get("Content-Range"); cr != "" {
		if idx := strings.LastIndex(cr, "/"); idx >= 0 {
			if n, err := strconv.Atoi(strings.TrimSpace(cr[idx+1:])); err == nil && n >= 0 {
				return n, true
			}
		}
	}
	if tc := h.Get("X-Total-Count"); tc != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(tc)); err == nil && n >= 0 {
			return n, true
		}
	}
	return 0, false
}

// decodeRecord accepts a bare record or a {"data": {...}} envelope.
// An empty body yields a nil record.
func decodeRecord(r io.Reader) (Record, error) {
	var rec Record
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid response from backend: %w", err)
	}
	if inner, ok := rec["data"].(map[string]any); ok {
		if _, hasID := rec["id"]; !hasID {
			return Record(inner), nil
		}
	}
	return rec, nil
}

// merge returns base overlaid with over
func merge(base, over Record) Record {
	out := make(Record, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}
