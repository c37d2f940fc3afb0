// ABOUTME: Tests for the JSON-RPC stream transport.
// ABOUTME: Drives scripted sessions through Serve and asserts on the written frames.

package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/soundctl/spotify-mcp/internal/dispatch"
	"github.com/soundctl/spotify-mcp/internal/registry"
	"github.com/soundctl/spotify-mcp/internal/schema"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	reg := registry.New(nil)

	echo := registry.Tool{
		Name:        "echo",
		Description: "Echo validated arguments",
		Schema: schema.Definition{Fields: []schema.Field{
			{Name: "message", Kind: schema.String, Required: true},
		}},
	}
	if err := reg.Register(echo, func(_ context.Context, args map[string]any) (any, error) {
		return args, nil
	}); err != nil {
		t.Fatal(err)
	}

	srv, err := New(Config{
		Dispatcher: dispatch.New(reg, nil),
		Registry:   reg,
		Name:       "test-server",
		Version:    "0.0.1",
	})
	if err != nil {
		t.Fatal(err)
	}
	return srv
}

// run serves the scripted input lines and returns the decoded response frames.
func run(t *testing.T, srv *Server, lines ...string) ([]map[string]any, error) {
	t.Helper()
	in := strings.NewReader(strings.Join(lines, "\n"))
	var out bytes.Buffer

	err := srv.Serve(context.Background(), in, &out)

	var frames []map[string]any
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		var frame map[string]any
		if jerr := json.Unmarshal(sc.Bytes(), &frame); jerr != nil {
			t.Fatalf("bad frame %q: %v", sc.Text(), jerr)
		}
		frames = append(frames, frame)
	}
	return frames, err
}

func rpcErrorCode(t *testing.T, frame map[string]any) float64 {
	t.Helper()
	errObj, ok := frame["error"].(map[string]any)
	if !ok {
		t.Fatalf("frame has no error: %v", frame)
	}
	return errObj["code"].(float64)
}

func TestInitializeHandshake(t *testing.T) {
	frames, err := run(t, newTestServer(t),
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
	)
	if err != nil {
		t.Fatalf("Serve() = %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}

	result := frames[0]["result"].(map[string]any)
	if result["protocolVersion"] != protocolVersion {
		t.Errorf("protocolVersion = %v", result["protocolVersion"])
	}
	info := result["serverInfo"].(map[string]any)
	if info["name"] != "test-server" || info["version"] != "0.0.1" {
		t.Errorf("serverInfo = %v", info)
	}
	caps := result["capabilities"].(map[string]any)
	if _, ok := caps["tools"]; !ok {
		t.Error("capabilities missing tools")
	}
}

func TestRequestsBeforeInitializeRejected(t *testing.T) {
	frames, err := run(t, newTestServer(t),
		`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"echo"}}`,
	)
	if err != nil {
		t.Fatalf("Serve() = %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	for i, frame := range frames {
		if code := rpcErrorCode(t, frame); code != codeInvalidRequest {
			t.Errorf("frame %d error code = %v, want %d", i, code, codeInvalidRequest)
		}
	}
}

func TestDoubleInitializeRejected(t *testing.T) {
	frames, err := run(t, newTestServer(t),
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","id":2,"method":"initialize","params":{}}`,
	)
	if err != nil {
		t.Fatalf("Serve() = %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if code := rpcErrorCode(t, frames[1]); code != codeInvalidRequest {
		t.Errorf("second initialize error code = %v", code)
	}
}

func TestToolsListAfterInitialize(t *testing.T) {
	frames, err := run(t, newTestServer(t),
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
	)
	if err != nil {
		t.Fatalf("Serve() = %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}

	result := frames[1]["result"].(map[string]any)
	tools := result["tools"].([]any)
	if len(tools) != 1 {
		t.Fatalf("got %d tools, want 1", len(tools))
	}
	tool := tools[0].(map[string]any)
	if tool["name"] != "echo" {
		t.Errorf("tool name = %v", tool["name"])
	}
	if _, ok := tool["inputSchema"].(map[string]any); !ok {
		t.Errorf("inputSchema = %v", tool["inputSchema"])
	}
}

func TestToolsCallSuccess(t *testing.T) {
	frames, err := run(t, newTestServer(t),
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"echo","arguments":{"message":"hi"}}}`,
	)
	if err != nil {
		t.Fatalf("Serve() = %v", err)
	}

	result := frames[1]["result"].(map[string]any)
	if result["isError"] != nil {
		t.Errorf("isError = %v on success", result["isError"])
	}
	content := result["content"].([]any)
	block := content[0].(map[string]any)
	if block["type"] != "text" {
		t.Errorf("content type = %v", block["type"])
	}

	var echoed map[string]any
	if err := json.Unmarshal([]byte(block["text"].(string)), &echoed); err != nil {
		t.Fatalf("content text is not JSON: %v", err)
	}
	if echoed["message"] != "hi" {
		t.Errorf("echoed args = %v", echoed)
	}
}

func TestToolsCallFailureIsNotProtocolError(t *testing.T) {
	frames, err := run(t, newTestServer(t),
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"nonexistent_tool"}}`,
	)
	if err != nil {
		t.Fatalf("Serve() = %v", err)
	}

	frame := frames[1]
	if frame["error"] != nil {
		t.Fatalf("tool failure surfaced as JSON-RPC error: %v", frame["error"])
	}
	result := frame["result"].(map[string]any)
	if result["isError"] != true {
		t.Errorf("isError = %v, want true", result["isError"])
	}
	content := result["content"].([]any)
	text := content[0].(map[string]any)["text"].(string)
	if text != "unknown tool: nonexistent_tool" {
		t.Errorf("text = %q", text)
	}
}

func TestToolsCallMissingName(t *testing.T) {
	frames, err := run(t, newTestServer(t),
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{}}`,
	)
	if err != nil {
		t.Fatalf("Serve() = %v", err)
	}
	if code := rpcErrorCode(t, frames[1]); code != codeInvalidParams {
		t.Errorf("error code = %v, want %d", code, codeInvalidParams)
	}
}

func TestUnknownMethod(t *testing.T) {
	frames, err := run(t, newTestServer(t),
		`{"jsonrpc":"2.0","id":1,"method":"resources/list"}`,
	)
	if err != nil {
		t.Fatalf("Serve() = %v", err)
	}
	if code := rpcErrorCode(t, frames[0]); code != codeMethodNotFound {
		t.Errorf("error code = %v, want %d", code, codeMethodNotFound)
	}
}

func TestPing(t *testing.T) {
	frames, err := run(t, newTestServer(t),
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`,
	)
	if err != nil {
		t.Fatalf("Serve() = %v", err)
	}
	if result, ok := frames[0]["result"].(map[string]any); !ok || len(result) != 0 {
		t.Errorf("ping result = %v", frames[0]["result"])
	}
}

func TestParseErrorTerminatesConnection(t *testing.T) {
	frames, err := run(t, newTestServer(t),
		`this is not json`,
	)
	if err == nil {
		t.Error("Serve() = nil on parse error")
	}
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if code := rpcErrorCode(t, frames[0]); code != codeParseError {
		t.Errorf("error code = %v, want %d", code, codeParseError)
	}
}

func TestInvalidVersionRejected(t *testing.T) {
	frames, err := run(t, newTestServer(t),
		`{"jsonrpc":"1.0","id":1,"method":"initialize"}`,
	)
	if err != nil {
		t.Fatalf("Serve() = %v", err)
	}
	if code := rpcErrorCode(t, frames[0]); code != codeInvalidRequest {
		t.Errorf("error code = %v, want %d", code, codeInvalidRequest)
	}
}

func TestResponseIDsMatchRequests(t *testing.T) {
	frames, err := run(t, newTestServer(t),
		`{"jsonrpc":"2.0","id":"init-1","method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","id":42,"method":"tools/list"}`,
	)
	if err != nil {
		t.Fatalf("Serve() = %v", err)
	}
	if frames[0]["id"] != "init-1" {
		t.Errorf("first id = %v", frames[0]["id"])
	}
	if frames[1]["id"] != float64(42) {
		t.Errorf("second id = %v", frames[1]["id"])
	}
}
