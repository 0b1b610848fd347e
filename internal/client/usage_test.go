package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/litterbox/internal/domain"
)

func staticToken(token string) TokenProvider {
	return func(context.Context) (string, error) { return token, nil }
}

func testWindow() domain.QueryWindow {
	return domain.QueryWindow{
		SubjectID: "cat-42",
		Start:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
	}
}

func TestFetchUsageBuildsExpandedDateRange(t *testing.T) {
	var gotPath, gotAuth string
	var gotQuery map[string][]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"usage_data": []}`))
	}))
	defer server.Close()

	c := NewUsageClient(server.URL, staticToken("tok-abc"))
	records, err := c.FetchUsage(context.Background(), testWindow(), 1000)
	require.NoError(t, err)
	require.Empty(t, records)

	require.Equal(t, "/v1/cats/cat-42/litterbox-usage", gotPath)
	require.Equal(t, "Bearer tok-abc", gotAuth)
	require.Equal(t, []string{"2024-03-01T00:00:00"}, gotQuery["start_date"])
	require.Equal(t, []string{"2024-03-03T23:59:59"}, gotQuery["end_date"])
	require.Equal(t, []string{"1000"}, gotQuery["limit"])
}

func TestFetchUsageDecodesRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"usage_data": [
			{"id":"visit-1","enter_time":"2024-03-01T08:15:00Z","exit_time":"2024-03-01T08:19:00Z",
			 "duration_minutes":4.0,"cat_weight":9.8,"device_name":"box-a","litterbox_name":"Hallway"}
		]}`))
	}))
	defer server.Close()

	c := NewUsageClient(server.URL, staticToken("tok"))
	records, err := c.FetchUsage(context.Background(), testWindow(), 1000)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "visit-1", records[0].ID)
	require.Equal(t, 4.0, records[0].DurationMinutes)
	require.Equal(t, 9.8, records[0].CatWeight)
	require.Equal(t, "Hallway", records[0].LitterboxName)
}

func TestFetchUsageServerErrorUsesBodyMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "cat not found"}`))
	}))
	defer server.Close()

	c := NewUsageClient(server.URL, staticToken("tok"))
	_, err := c.FetchUsage(context.Background(), testWindow(), 1000)
	require.ErrorIs(t, err, ErrServer)
	require.Contains(t, err.Error(), "cat not found")
}

func TestFetchUsageServerErrorWithoutBodyFallsBackToStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewUsageClient(server.URL, staticToken("tok"))
	_, err := c.FetchUsage(context.Background(), testWindow(), 1000)
	require.ErrorIs(t, err, ErrServer)
	require.Contains(t, err.Error(), "502")
}

func TestFetchUsageTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	c := NewUsageClient(server.URL, staticToken("tok"))
	_, err := c.FetchUsage(context.Background(), testWindow(), 1000)
	require.ErrorIs(t, err, ErrTransport)
}

func TestFetchUsageRecordMissingFieldIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"usage_data": [{"id":"visit-1","enter_time":"2024-03-01T08:15:00Z"}]}`))
	}))
	defer server.Close()

	c := NewUsageClient(server.URL, staticToken("tok"))
	_, err := c.FetchUsage(context.Background(), testWindow(), 1000)
	require.ErrorIs(t, err, ErrMalformedPayload)
	require.Contains(t, err.Error(), "exit_time")
}

func TestFetchUsageNonJSONBodyIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	}))
	defer server.Close()

	c := NewUsageClient(server.URL, staticToken("tok"))
	_, err := c.FetchUsage(context.Background(), testWindow(), 1000)
	require.ErrorIs(t, err, ErrMalformedPayload)
}

func TestFetchUsageTokenProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent without a credential")
	}))
	defer server.Close()

	c := NewUsageClient(server.URL, func(context.Context) (string, error) {
		return "", context.DeadlineExceeded
	})
	_, err := c.FetchUsage(context.Background(), testWindow(), 1000)
	require.ErrorIs(t, err, ErrTransport)
}
