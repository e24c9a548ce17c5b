package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "render not implemented",
			code:    "E101",
			wantMsg: "Render not implemented",
			wantCat: CategoryRuntime,
		},
		{
			name:    "host range error",
			code:    "E202",
			wantMsg: "Invalid range bounds",
			wantCat: CategoryHost,
		},
		{
			name:    "config error",
			code:    "E301",
			wantMsg: "Configuration invalid",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "E999",
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

func TestIsComparesCodes(t *testing.T) {
	err := New("E101").WithComponent("Page")
	wrapped := fmt.Errorf("mount: %w", err)

	if !stderrors.Is(wrapped, New("E101")) {
		t.Error("errors.Is should match on code through a wrap")
	}
	if stderrors.Is(wrapped, New("E102")) {
		t.Error("errors.Is should not match a different code")
	}
	if got := Code(wrapped); got != "E101" {
		t.Errorf("Code() = %q, want E101", got)
	}
	if got := Code(stderrors.New("plain")); got != "" {
		t.Errorf("Code() = %q, want empty", got)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E201") != nil {
		t.Error("FromError(nil) should be nil")
	}

	cause := stderrors.New("disk full")
	err := FromError(cause, "E401")
	if Code(err) != "E401" {
		t.Errorf("Code = %q, want E401", Code(err))
	}
	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause should be reachable")
	}

	coded := New("E202")
	if got := FromError(coded, "E201"); got != error(coded) {
		t.Error("coded errors should be returned unchanged")
	}
}

func TestErrorString(t *testing.T) {
	err := New("E201").Wrap(stderrors.New("boom"))
	if got, want := err.Error(), "E201: Host operation failed: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got := Newf(CategoryRuntime, "bad %s", "thing").Error(); got != "bad thing" {
		t.Errorf("Error() = %q, want %q", got, "bad thing")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E101").
		WithComponent("Page > Counter").
		WithSuggestion("Define Render on the component type")
	out := err.Format()

	for _, want := range []string{
		"ERROR E101: Render not implemented",
		"in Page > Counter",
		"Hint: Define Render on the component type",
		"Learn more: https://rangeui.dev/docs/errors/E101",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}

	if got, want := err.FormatCompact(), "Page > Counter: E101: Render not implemented"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
	if js := err.FormatJSON(); !strings.Contains(js, `"code":"E101"`) {
		t.Errorf("FormatJSON() = %s", js)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five", 9)
	want := []string{"one two", "three", "four five"}
	if len(lines) != len(want) {
		t.Fatalf("wrapText lines = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRegistryCodesHaveTemplates(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok {
			t.Fatalf("GetTemplate(%s) missing", code)
		}
		if tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("%s has empty message or category", code)
		}
	}
}
