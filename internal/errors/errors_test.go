package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/anchor/pkg/anchor"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "runtime error",
			code:    "A001",
			wantMsg: "Handler panicked",
			wantCat: CategoryRuntime,
		},
		{
			name:    "config error",
			code:    "A102",
			wantMsg: "Invalid configuration",
			wantCat: CategoryConfig,
		},
		{
			name:    "server error",
			code:    "A201",
			wantMsg: "Unknown container",
			wantCat: CategoryServer,
		},
		{
			name:    "unknown error code",
			code:    "A999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "flag %q must be positive", "writes")
	if err.Message != `flag "writes" must be positive` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestAnchorError_Error(t *testing.T) {
	err := New("A201").WithSubject("container %q", "sky")
	want := `A201: Unknown container (container "sky")`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err2 := &AnchorError{Message: "test error"}
	if err2.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", err2.Error(), "test error")
	}
}

func TestAnchorError_WithLocation(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "anchor.json")
	content := "{\n  \"engine\": {\n    \"maxPassDepth\": 16,\n    \"orphanPolicy\": \"ignore\"\n  }\n}\n"
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := New("A102").WithLocation(tmpFile, 4, 21)

	if err.Location == nil {
		t.Fatal("Location is nil")
	}
	if err.Location.String() != fmt.Sprintf("%s:4:21", tmpFile) {
		t.Errorf("Location = %q", err.Location.String())
	}
	if len(err.Context) != 5 {
		t.Fatalf("expected 5 context lines, got %d: %q", len(err.Context), err.Context)
	}
	if !strings.Contains(err.Context[2], "orphanPolicy") {
		t.Errorf("target line should be centered, got %q", err.Context[2])
	}
}

func TestAnchorError_WithLocationMissingFile(t *testing.T) {
	err := New("A101").WithLocation("does-not-exist.json", 3, 1)
	if len(err.Context) != 0 {
		t.Errorf("expected no context, got %v", err.Context)
	}
}

func TestAnchorError_Builders(t *testing.T) {
	cause := stderrors.New("disk full")
	err := New("A203").
		WithSuggestion("Free some space").
		WithExample("anchor serve --addr :9000").
		WithDetail("custom detail").
		Wrap(cause)

	if err.Suggestion != "Free some space" || err.Example != "anchor serve --addr :9000" || err.Detail != "custom detail" {
		t.Errorf("builders not applied: %+v", err)
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "A203") != nil {
		t.Error("FromError(nil) should return nil")
	}

	original := New("A102")
	if FromError(fmt.Errorf("loading: %w", original), "A203") != original {
		t.Error("FromError should return a wrapped AnchorError as is")
	}

	plain := stderrors.New("listen tcp: address in use")
	got := FromError(plain, "A203")
	if got.Code != "A203" || got.Wrapped != plain {
		t.Errorf("FromError(plain) = %+v", got)
	}
}

func TestFromEngineErrors(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{fmt.Errorf("%w (container 3)", anchor.ErrOrphanSubscription), "A002"},
		{anchor.ErrContextDisposed, "A003"},
		{anchor.ErrPassDepthExceeded, "A004"},
		{anchor.ErrCaptureCollected, "A005"},
		{&anchor.HandlerError{SubscriptionID: 7, ContainerID: 2, Value: "boom"}, "A001"},
	}
	for _, tt := range tests {
		got := FromError(tt.err, "A203")
		if got.Code != tt.code {
			t.Errorf("FromError(%v).Code = %q, want %q", tt.err, got.Code, tt.code)
		}
	}

	herr := FromError(&anchor.HandlerError{SubscriptionID: 7, ContainerID: 2, Value: "boom"}, "")
	if herr.Subject != "subscription 7 on container 2" {
		t.Errorf("Subject = %q", herr.Subject)
	}
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		loc  *Location
		want string
	}{
		{nil, ""},
		{&Location{File: "anchor.json"}, "anchor.json"},
		{&Location{File: "anchor.json", Line: 3}, "anchor.json:3"},
		{&Location{File: "anchor.json", Line: 3, Column: 9}, "anchor.json:3:9"},
	}
	for _, tt := range tests {
		if got := tt.loc.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	tmpFile := filepath.Join(t.TempDir(), "anchor.json")
	content := "{\n  \"server\": {\n    \"port\": -1\n  }\n}\n"
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := New("A102").
		WithLocation(tmpFile, 3, 13).
		WithSubject("server.port").
		WithSuggestion("Use a port between 1 and 65535").
		WithExample(`"port": 8080`).
		Wrap(stderrors.New("port out of range"))

	formatted := err.Format()

	for _, want := range []string{
		"ERROR A102: Invalid configuration",
		"at server.port",
		tmpFile + ":3:13",
		`→    3 │     "port": -1`,
		"^",
		"Cause: port out of range",
		"Hint: Use a port between 1 and 65535",
		"Example:",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format should contain %q, got:\n%s", want, formatted)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("A102").WithLocation("anchor.json", 0, 0).WithSubject("engine.orphanPolicy")
	want := "anchor.json: A102: Invalid configuration (engine.orphanPolicy)"
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("A102").WithLocation("anchor.json", 10, 5).Wrap(stderrors.New("bad port"))

	var got map[string]any
	if e := json.Unmarshal([]byte(err.FormatJSON()), &got); e != nil {
		t.Fatalf("FormatJSON is not valid JSON: %v", e)
	}
	if got["code"] != "A102" || got["category"] != "config" || got["message"] != "Invalid configuration" {
		t.Errorf("unexpected fields: %v", got)
	}
	if got["cause"] != "bad port" {
		t.Errorf("cause = %v", got["cause"])
	}
	loc, ok := got["location"].(map[string]any)
	if !ok || loc["file"] != "anchor.json" || loc["line"] != float64(10) {
		t.Errorf("location = %v", got["location"])
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, fmt.Errorf("serve: %w", New("A203")))
	if !strings.Contains(buf.String(), "ERROR A203: Server failed") {
		t.Errorf("expected wrapped AnchorError to be formatted, got %q", buf.String())
	}

	buf.Reset()
	Fprint(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("expected plain error, got %q", buf.String())
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Fatal("GetAllCodes() should return codes")
	}
	if codes[0] != "A001" {
		t.Errorf("codes should be sorted, first = %q", codes[0])
	}
	for _, code := range codes {
		tmpl, _ := GetTemplate(code)
		if tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("code %s has an incomplete template", code)
		}
	}
}

func TestRegister(t *testing.T) {
	Register("A999", ErrorTemplate{Category: CategoryCLI, Message: "Custom"})
	defer delete(registry, "A999")

	if _, ok := GetTemplate("A999"); !ok {
		t.Error("registered template not found")
	}
	if New("A999").Message != "Custom" {
		t.Error("New should use the registered template")
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("short text", 100)
	if len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}

	got = wrapText("this is a longer text that should be wrapped", 20)
	if len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}

	if got = wrapText("", 10); len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}

func TestColorFunctions(t *testing.T) {
	EnableColors()
	if !strings.Contains(red("test"), "\033[31m") {
		t.Error("red should contain ANSI code when colors enabled")
	}

	DisableColors()
	if strings.Contains(red("test"), "\033[") {
		t.Error("red should not contain ANSI code when colors disabled")
	}
	EnableColors()
}
