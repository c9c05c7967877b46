// Package salesforce is a thin authenticated wrapper over the
// Salesforce REST API's sObject CRUD and SOQL query surface. The
// client adds no retry, no partial-failure recovery and no caching:
// platform failures propagate to the caller.
package salesforce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// SalesforceAPIVersionNumber sets out the currently supported
// Salesforce API used for this client.
const SalesforceAPIVersionNumber = "v65.0"

// maxCollectionsBatchCount is the maximum number of Salesforce records
// that the sObject Collections API accepts in one operation.
const maxCollectionsBatchCount = 200

// Client is a wrapper for making authenticated calls to the Salesforce API.
type Client struct {
	httpClient  *http.Client
	instanceURL string
	apiVersion  string
	log         *slog.Logger
}

// Query runs a SOQL query and returns the raw records across all
// result pages. Salesforce serves at most 2000 records per page;
// subsequent pages are fetched via the response's nextRecordsUrl until
// the response reports done.
// See https://developer.salesforce.com/docs/atlas.en-us.api_rest.meta/api_rest/dome_query.htm
func (c *Client) Query(ctx context.Context, soql string) ([]json.RawMessage, error) {

	requestURL := fmt.Sprintf("%s/services/data/%s/query?q=%s", c.instanceURL, c.apiVersion, url.QueryEscape(soql))
	var records []json.RawMessage
	var pageNo int
	for {
		pageNo++
		c.log.Debug(fmt.Sprintf("Query: page %d: url %s", pageNo, requestURL))

		req, err := c.newRequest(ctx, "GET", requestURL, nil)
		if err != nil {
			return nil, fmt.Errorf("newRequest error pageNo %d: %w", pageNo, err)
		}

		var response QueryResponse
		if _, err := c.do(req, &response); err != nil {
			return nil, fmt.Errorf("soql do error pageNo %d: %w", pageNo, err)
		}
		records = append(records, response.Records...)
		if response.Done || response.NextRecordsURL == "" {
			break
		}
		requestURL, err = url.JoinPath(c.instanceURL, response.NextRecordsURL)
		if err != nil {
			return nil, fmt.Errorf("url construction error for page %d: (%s) %w", pageNo+1, response.NextRecordsURL, err)
		}
	}
	return records, nil
}

// CreateRecord inserts a single record of the given sObject type and
// returns the platform-assigned identifier.
func (c *Client) CreateRecord(ctx context.Context, objectType string, record any) (string, error) {

	body, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s record: %w", objectType, err)
	}

	requestURL := fmt.Sprintf("%s/services/data/%s/sobjects/%s", c.instanceURL, c.apiVersion, objectType)
	req, err := c.newRequest(ctx, "POST", requestURL, body)
	if err != nil {
		return "", fmt.Errorf("new create request error: %w", err)
	}

	var result sObjectResult
	if _, err := c.do(req, &result); err != nil {
		return "", err
	}
	c.log.Info(fmt.Sprintf("CreateRecord: created %s %s", objectType, result.ID))
	return result.ID, nil
}

// UpdateRecord updates a single record of the given sObject type by
// identifier.
func (c *Client) UpdateRecord(ctx context.Context, objectType, id string, record any) error {

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal %s record: %w", objectType, err)
	}

	requestURL := fmt.Sprintf("%s/services/data/%s/sobjects/%s/%s", c.instanceURL, c.apiVersion, objectType, id)
	req, err := c.newRequest(ctx, "PATCH", requestURL, body)
	if err != nil {
		return fmt.Errorf("new update request error: %w", err)
	}

	if _, err := c.do(req, nil); err != nil {
		return err
	}
	c.log.Info(fmt.Sprintf("UpdateRecord: updated %s %s", objectType, id))
	return nil
}

// UpsertRecord performs an upsert keyed by an external ID field. The
// platform inserts a new record when no record carries the external ID
// value, otherwise it updates the existing record. The returned
// created flag reports which occurred.
// See https://developer.salesforce.com/docs/atlas.en-us.api_rest.meta/api_rest/dome_upsert.htm
func (c *Client) UpsertRecord(ctx context.Context, objectType, externalIDField, externalID string, record any) (id string, created bool, err error) {

	body, err := json.Marshal(record)
	if err != nil {
		return "", false, fmt.Errorf("failed to marshal %s record: %w", objectType, err)
	}

	requestURL := fmt.Sprintf("%s/services/data/%s/sobjects/%s/%s/%s",
		c.instanceURL, c.apiVersion, objectType, externalIDField, url.PathEscape(externalID))
	req, err := c.newRequest(ctx, "PATCH", requestURL, body)
	if err != nil {
		return "", false, fmt.Errorf("new upsert request error: %w", err)
	}

	var result sObjectResult
	resp, err := c.do(req, &result)
	if err != nil {
		return "", false, err
	}
	created = resp.StatusCode == http.StatusCreated
	c.log.Info(fmt.Sprintf("UpsertRecord: %s %s=%s resolved to %s (created: %t)",
		objectType, externalIDField, externalID, result.ID, created))
	return result.ID, created, nil
}

// DeleteRecord deletes a single record of the given sObject type by
// identifier.
func (c *Client) DeleteRecord(ctx context.Context, objectType, id string) error {

	requestURL := fmt.Sprintf("%s/services/data/%s/sobjects/%s/%s", c.instanceURL, c.apiVersion, objectType, id)
	req, err := c.newRequest(ctx, "DELETE", requestURL, nil)
	if err != nil {
		return fmt.Errorf("new delete request error: %w", err)
	}

	if _, err := c.do(req, nil); err != nil {
		return err
	}
	c.log.Info(fmt.Sprintf("DeleteRecord: deleted %s %s", objectType, id))
	return nil
}

// CollectionsInsert inserts up to 200 records in one synchronous call
// using the sObject Collections API. Each record map must carry an
// "attributes" entry stating its sObject type. Setting allOrNone makes
// the operation atomic: any single failure rolls back the whole batch.
// See https://developer.salesforce.com/docs/atlas.en-us.api_rest.meta/api_rest/resources_composite_sobjects_collections_create.htm
func (c *Client) CollectionsInsert(ctx context.Context, records []map[string]any, allOrNone bool) (CollectionsResponse, error) {
	return c.collectionsWrite(ctx, "POST", records, allOrNone)
}

// CollectionsUpdate updates up to 200 records in one synchronous call
// using the sObject Collections API. Each record map must carry an
// "attributes" entry and its record identifier.
func (c *Client) CollectionsUpdate(ctx context.Context, records []map[string]any, allOrNone bool) (CollectionsResponse, error) {
	return c.collectionsWrite(ctx, "PATCH", records, allOrNone)
}

// collectionsWrite submits an insert (POST) or update (PATCH) batch to
// the sObject Collections endpoint. A response error is returned,
// alongside the response, if any record in the batch failed.
func (c *Client) collectionsWrite(ctx context.Context, method string, records []map[string]any, allOrNone bool) (CollectionsResponse, error) {

	if len(records) > maxCollectionsBatchCount {
		return nil, fmt.Errorf("cannot submit more than %d records in a single batch", maxCollectionsBatchCount)
	}

	payload := CollectionsRequest{
		AllOrNone: allOrNone,
		Records:   records,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch request: %w", err)
	}

	requestURL := fmt.Sprintf("%s/services/data/%s/composite/sobjects", c.instanceURL, c.apiVersion)
	c.log.Debug(fmt.Sprintf("collectionsWrite: %s %d records to %s", method, len(records), requestURL))

	req, err := c.newRequest(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("new %s request error: %w", method, err)
	}

	var response CollectionsResponse
	if _, err := c.do(req, &response); err != nil {
		return nil, err
	}
	if err := response.Err(); err != nil {
		return response, err
	}
	return response, nil
}

// CollectionsDelete deletes up to 200 records by identifier in one
// synchronous call using the sObject Collections API.
func (c *Client) CollectionsDelete(ctx context.Context, ids []string, allOrNone bool) (CollectionsResponse, error) {

	if len(ids) > maxCollectionsBatchCount {
		return nil, fmt.Errorf("cannot delete more than %d records in a single batch", maxCollectionsBatchCount)
	}

	requestURL := fmt.Sprintf("%s/services/data/%s/composite/sobjects?ids=%s&allOrNone=%t",
		c.instanceURL, c.apiVersion, url.QueryEscape(strings.Join(ids, ",")), allOrNone)
	req, err := c.newRequest(ctx, "DELETE", requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new batch delete request error: %w", err)
	}

	var response CollectionsResponse
	if _, err := c.do(req, &response); err != nil {
		return nil, err
	}
	if err := response.Err(); err != nil {
		return response, err
	}
	c.log.Info(fmt.Sprintf("CollectionsDelete: deleted %d records", len(ids)))
	return response, nil
}

// newRequest is a helper to create a new HTTP request with common headers.
func (c *Client) newRequest(ctx context.Context, method, url string, body []byte) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	} else {
		bodyReader = bytes.NewReader([]byte{})
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do is a helper to execute an HTTP request and decode the JSON response.
func (c *Client) do(req *http.Request, v any) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	// Some endpoints (single-record update and delete) respond 204
	// with no content.
	if v != nil && len(body) > 0 {
		if err := json.Unmarshal(body, v); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp, nil
}
