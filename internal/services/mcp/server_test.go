package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/temirov/fsmcp/internal/services/mcp"
)

// startServer runs server until the test ends and returns its base URL.
func startServer(t *testing.T, config mcp.Config) string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	server := mcp.NewServer(config)
	addressCh := make(chan string, 1)
	errorCh := make(chan error, 1)

	go func() {
		errorCh <- server.Run(ctx, func(address string) {
			addressCh <- address
		})
	}()

	t.Cleanup(func() {
		cancel()
		if err := <-errorCh; err != nil {
			t.Errorf("server error: %v", err)
		}
	})

	select {
	case address := <-addressCh:
		return "http://" + address
	case <-time.After(2 * time.Second):
		t.Fatalf("server did not start")
		return ""
	}
}

func TestServerRunExposesCapabilities(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		config       mcp.Config
		expectedCaps []mcp.Capability
	}{
		{
			name: "single capability",
			config: mcp.Config{
				Capabilities: []mcp.Capability{
					{Name: "get_folder_structure", Description: "List directories"},
				},
				Address: "127.0.0.1:0",
			},
			expectedCaps: []mcp.Capability{{Name: "get_folder_structure", Description: "List directories"}},
		},
		{
			name:         "no capabilities",
			config:       mcp.Config{},
			expectedCaps: []mcp.Capability{},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			baseURL := startServer(t, testCase.config)
			client := http.Client{Timeout: 2 * time.Second}
			response, err := client.Get(baseURL + "/capabilities")
			if err != nil {
				t.Fatalf("perform request: %v", err)
			}
			defer response.Body.Close()

			if response.StatusCode != http.StatusOK {
				t.Fatalf("unexpected status: %d", response.StatusCode)
			}

			var body struct {
				Capabilities []mcp.Capability `json:"capabilities"`
			}
			if err := json.NewDecoder(response.Body).Decode(&body); err != nil {
				t.Fatalf("decode response: %v", err)
			}

			if len(body.Capabilities) != len(testCase.expectedCaps) {
				t.Fatalf("expected %d capabilities, got %d", len(testCase.expectedCaps), len(body.Capabilities))
			}
			for index, capability := range body.Capabilities {
				expected := testCase.expectedCaps[index]
				if capability != expected {
					t.Fatalf("capability %d mismatch: got %+v, want %+v", index, capability, expected)
				}
			}
		})
	}
}

func TestServerExecutesTools(t *testing.T) {
	t.Parallel()

	echoExecutor := mcp.ToolExecutorFunc(func(ctx context.Context, request mcp.ToolRequest) (mcp.ToolResponse, error) {
		var arguments struct {
			FullPath string `json:"fullPath"`
		}
		if err := json.Unmarshal(request.Payload, &arguments); err != nil {
			return mcp.ToolResponse{}, mcp.NewToolExecutionError(http.StatusBadRequest, err)
		}
		if arguments.FullPath == "/forbidden" {
			return mcp.ToolResponse{}, mcp.NewToolExecutionError(http.StatusForbidden, errors.New("denied"))
		}
		return mcp.ToolResponse{Output: arguments.FullPath + ":\n", Format: "yaml"}, nil
	})
	failingExecutor := mcp.ToolExecutorFunc(func(context.Context, mcp.ToolRequest) (mcp.ToolResponse, error) {
		return mcp.ToolResponse{}, errors.New("boom")
	})
	baseURL := startServer(t, mcp.Config{Executors: map[string]mcp.ToolExecutor{
		"echo": echoExecutor,
		"fail": failingExecutor,
	}})

	testCases := []struct {
		name           string
		path           string
		body           string
		expectedStatus int
		expectedOutput string
	}{
		{name: "success", path: "/tools/echo", body: `{"fullPath":"proj"}`, expectedStatus: http.StatusOK, expectedOutput: "proj:\n"},
		{name: "bad payload", path: "/tools/echo", body: `{`, expectedStatus: http.StatusBadRequest},
		{name: "forbidden", path: "/tools/echo", body: `{"fullPath":"/forbidden"}`, expectedStatus: http.StatusForbidden},
		{name: "unmapped failure", path: "/tools/fail", body: `{}`, expectedStatus: http.StatusInternalServerError},
		{name: "unknown tool", path: "/tools/missing", body: `{}`, expectedStatus: http.StatusNotFound},
		{name: "nested tool path", path: "/tools/echo/extra", body: `{}`, expectedStatus: http.StatusNotFound},
	}

	client := http.Client{Timeout: 2 * time.Second}
	for _, testCase := range testCases {
		response, err := client.Post(baseURL+testCase.path, "application/json", strings.NewReader(testCase.body))
		if err != nil {
			t.Fatalf("%s: perform request: %v", testCase.name, err)
		}
		var decoded mcp.ToolResponse
		decodeErr := json.NewDecoder(response.Body).Decode(&decoded)
		response.Body.Close()
		if response.StatusCode != testCase.expectedStatus {
			t.Fatalf("%s: expected status %d, got %d", testCase.name, testCase.expectedStatus, response.StatusCode)
		}
		if testCase.expectedStatus == http.StatusOK {
			if decodeErr != nil {
				t.Fatalf("%s: decode response: %v", testCase.name, decodeErr)
			}
			if decoded.Output != testCase.expectedOutput {
				t.Fatalf("%s: unexpected output %q", testCase.name, decoded.Output)
			}
		}
	}
}

func TestServerRejectsWrongMethods(t *testing.T) {
	t.Parallel()

	baseURL := startServer(t, mcp.Config{})
	client := http.Client{Timeout: 2 * time.Second}

	response, err := client.Get(baseURL + "/tools/echo")
	if err != nil {
		t.Fatalf("perform request: %v", err)
	}
	response.Body.Close()
	if response.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET tool call, got %d", response.StatusCode)
	}

	response, err = client.Post(baseURL+"/capabilities", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("perform request: %v", err)
	}
	response.Body.Close()
	if response.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for POST capabilities, got %d", response.StatusCode)
	}
}
