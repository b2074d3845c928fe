package errors

import (
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "manifest error",
			code:    "KR100",
			wantMsg: "Registry manifest not found",
			wantCat: CategoryManifest,
		},
		{
			name:    "collapse error",
			code:    "KR112",
			wantMsg: "Category collapse map is not an object",
			wantCat: CategoryCollapse,
		},
		{
			name:    "source error",
			code:    "KR121",
			wantMsg: "Source files missing",
			wantCat: CategorySource,
		},
		{
			name:    "unknown error code",
			code:    "KR999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			assert.Equal(t, tt.wantMsg, err.Message)
			assert.Equal(t, tt.wantCat, err.Category)
			assert.Equal(t, tt.code, err.Code)
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategorySource, "file %q not found", "hero1.tsx")
	assert.Equal(t, `file "hero1.tsx" not found`, err.Message)
	assert.Equal(t, CategorySource, err.Category)
}

func TestKataError_Error(t *testing.T) {
	assert.Equal(t, "KR100: Registry manifest not found", New("KR100").Error())

	wrapped := New("KR120").Wrap(os.ErrPermission)
	assert.Equal(t, "KR120: Source file unreadable: permission denied", wrapped.Error())

	plain := &KataError{Message: "test error"}
	assert.Equal(t, "test error", plain.Error())
}

func TestKataError_Unwrap(t *testing.T) {
	err := New("KR104").Wrap(os.ErrPermission)
	assert.True(t, stderrors.Is(err, os.ErrPermission))
}

func TestKataError_WithLocationFromJSON(t *testing.T) {
	data := []byte("{\n  \"name\": \"kata\",\n  \"items\": [,]\n}\n")

	var v any
	jsonErr := json.Unmarshal(data, &v)
	require.Error(t, jsonErr)

	err := New("KR101").WithLocationFromJSON("registry.json", data, jsonErr)
	require.NotNil(t, err.Location)
	assert.Equal(t, "registry.json", err.Location.File)
	assert.Equal(t, 3, err.Location.Line)
	assert.Greater(t, err.Location.Column, 1)
	assert.NotEmpty(t, err.Context)
}

func TestKataError_WithLocationFromJSON_OtherError(t *testing.T) {
	err := New("KR101").WithLocationFromJSON("registry.json", nil, os.ErrClosed)
	require.NotNil(t, err.Location)
	assert.Equal(t, "registry.json", err.Location.String())
}

func TestKataError_WithLocation(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "category-collapse.json")
	content := "{\n  \"hero\": \"Hero\",\n  \"feature\": 3,\n  \"cta\": \"Call to Action\"\n}\n"
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	err := New("KR113").WithLocation(tmpFile, 3, 14)
	require.NotNil(t, err.Location)
	assert.Equal(t, 3, err.Location.Line)
	assert.Equal(t, 14, err.Location.Column)
	assert.Contains(t, strings.Join(err.Context, "\n"), `"feature": 3`)
}

func TestKataError_Builders(t *testing.T) {
	err := New("KR130").
		WithDetailf("could not write %s", "public/r/hero1.json").
		WithSuggestion("Check directory permissions")

	assert.Equal(t, "could not write public/r/hero1.json", err.Detail)
	assert.Equal(t, "Check directory permissions", err.Suggestion)
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		name string
		loc  *Location
		want string
	}{
		{name: "nil location", loc: nil, want: ""},
		{name: "file only", loc: &Location{File: "registry.json"}, want: "registry.json"},
		{name: "with column", loc: &Location{File: "registry.json", Line: 10, Column: 5}, want: "registry.json:10:5"},
		{name: "without column", loc: &Location{File: "registry.json", Line: 10}, want: "registry.json:10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.loc.String())
		})
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("KR111").
		WithFile("lib/category-collapse.json").
		WithSuggestion("Run the file through a JSON linter").
		Wrap(os.ErrInvalid)

	formatted := err.Format()
	assert.Contains(t, formatted, "KR111")
	assert.Contains(t, formatted, "Invalid category collapse map")
	assert.Contains(t, formatted, "lib/category-collapse.json")
	assert.Contains(t, formatted, "Hint:")
	assert.Contains(t, formatted, "Cause:")
	assert.Contains(t, formatted, "Learn more:")
	assert.NotContains(t, formatted, "\033[")
}

func TestFormatCompact(t *testing.T) {
	err := New("KR101").WithLocation("registry.json", 10, 5)
	assert.Equal(t, "registry.json:10:5: KR101: Invalid registry manifest", err.FormatCompact())
}

func TestFormatJSON(t *testing.T) {
	err := New("KR101").WithLocation("registry.json", 10, 5)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(err.FormatJSON()), &decoded))
	assert.Equal(t, "KR101", decoded["code"])
	assert.Equal(t, "manifest", decoded["category"])
	assert.Equal(t, "Invalid registry manifest", decoded["message"])
	assert.Contains(t, decoded, "location")
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil, "KR120"))

	original := New("KR121")
	assert.Same(t, original, FromError(original, "KR120"))

	wrapped := FromError(os.ErrNotExist, "KR120")
	assert.Equal(t, "KR120", wrapped.Code)
	assert.ErrorIs(t, wrapped, os.ErrNotExist)
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(New("KR110"), "KR110"))
	assert.False(t, HasCode(New("KR110"), "KR111"))
	assert.False(t, HasCode(os.ErrNotExist, "KR110"))
}

func TestGetTemplate(t *testing.T) {
	template, ok := GetTemplate("KR110")
	require.True(t, ok)
	assert.Equal(t, "Category collapse map not found", template.Message)

	_, ok = GetTemplate("KR999")
	assert.False(t, ok)
	assert.Contains(t, GetAllCodes(), "KR121")
}

func TestRegister(t *testing.T) {
	Register("KR999", ErrorTemplate{
		Category: CategoryCLI,
		Message:  "Custom test error",
	})
	defer delete(registry, "KR999")

	assert.Equal(t, "Custom test error", New("KR999").Message)
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{"short text"}, wrapText("short text", 100))
	assert.Len(t, wrapText("this is a longer text that should be wrapped", 20), 3)
	assert.Empty(t, wrapText("", 10))
}

func TestColorToggle(t *testing.T) {
	EnableColors()
	assert.Contains(t, red("test"), "\033[31m")

	DisableColors()
	assert.NotContains(t, red("test"), "\033[")
	EnableColors()
}
