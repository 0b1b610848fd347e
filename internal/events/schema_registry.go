package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SubjectVisits is the Schema Registry subject the visit event schema lives
// under, following the topic-name-value convention.
const SubjectVisits = TopicVisits + "-value"

// SchemaRegistry resolves the registry ID of the visit event schema against
// a Confluent-compatible Schema Registry.
type SchemaRegistry struct {
	baseURL    string
	httpClient *http.Client
}

// NewSchemaRegistry constructs a registry client with a default timeout.
func NewSchemaRegistry(baseURL string) *SchemaRegistry {
	return &SchemaRegistry{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// EnsureVisitSchema returns the registry ID for VisitRecordedSchema,
// registering it under SubjectVisits when no version exists yet.
func (r *SchemaRegistry) EnsureVisitSchema(ctx context.Context) (int, error) {
	if id, err := r.latestVersion(ctx); err == nil {
		return id, nil
	}
	return r.registerVisitSchema(ctx)
}

func (r *SchemaRegistry) latestVersion(ctx context.Context) (int, error) {
	url := fmt.Sprintf("%s/subjects/%s/versions/latest", r.baseURL, SubjectVisits)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, fmt.Errorf("subject %s not registered", SubjectVisits)
	}
	return decodeSchemaID(resp)
}

func (r *SchemaRegistry) registerVisitSchema(ctx context.Context) (int, error) {
	body, err := json.Marshal(map[string]any{
		"schemaType": "JSON",
		"schema":     VisitRecordedSchema,
	})
	if err != nil {
		return 0, err
	}

	url := fmt.Sprintf("%s/subjects/%s/versions", r.baseURL, SubjectVisits)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/vnd.schemaregistry.v1+json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return decodeSchemaID(resp)
}

func decodeSchemaID(resp *http.Response) (int, error) {
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("schema registry: status %d: %s", resp.StatusCode, data)
	}

	var payload struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, err
	}
	return payload.ID, nil
}
