package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeService(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunPrintsDecodedData(t *testing.T) {
	srv := fakeService(t, `<tns:success>true</tns:success><tns:data>[{&#34;id&#34;:1}]</tns:data><tns:message>Users retrieved successfully</tns:message>`)
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-url", srv.URL, "list"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var out struct {
		Success bool             `json:"success"`
		Data    []map[string]any `json:"data"`
		Message string           `json:"message"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.True(t, out.Success)
	assert.Len(t, out.Data, 1)
	assert.Equal(t, "Users retrieved successfully", out.Message)
}

func TestRunExitsNonZeroOnFailure(t *testing.T) {
	srv := fakeService(t, `<success>false</success><message>User not found</message>`)
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-url", srv.URL, "get", "-id", "9"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), `"message": "User not found"`)
	assert.Contains(t, stdout.String(), `"data": null`)
}

func TestRunValidatesBeforeSending(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-url", "http://127.0.0.1:1/soap", "create", "-name", strings.Repeat("x", 51), "-email", "nope"}, &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.Equal(t, "email: Please enter a valid email address\nname: Name must be at most 50 characters\n", stderr.String())
	assert.Empty(t, stdout.String())
}

func TestRunUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), nil, &stdout, &stderr))
	assert.Equal(t, 2, run(context.Background(), []string{"frobnicate"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), `unknown command "frobnicate"`)
}
