package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestParseGitDescribe(t *testing.T) {
	tests := []struct {
		input       string
		wantVersion string
		wantCommit  string
	}{
		{"v0.1", "0.1", ""},
		{"v0.1.0", "0.1.0", ""},
		{"v1.2.3", "1.2.3", ""},
		{"1.2.3", "1.2.3", ""},

		// Commits past a tag
		{"v0.1-4-gf9e7962", "0.1.dev+f9e7962", "f9e7962"},
		{"v1.0.0-12-gabc1234", "1.0.0.dev+abc1234", "abc1234"},
		{"1.0.0-1-gabc1234", "1.0.0.dev+abc1234", "abc1234"},

		// Dirty trees
		{"v0.1-dirty", "0.1.dev", ""},
		{"v0.1-4-gf9e7962-dirty", "0.1.dev+f9e7962", "f9e7962"},

		// Pre-releases
		{"v1.0.0-rc1", "1.0.0-rc1", ""},
		{"v1.0.0-rc1-3-gabc1234", "1.0.0-rc1.dev+abc1234", "abc1234"},

		// No tags at all
		{"f9e7962", "dev+f9e7962", "f9e7962"},
		{"dev", "dev", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			gotVersion, gotCommit := parseGitDescribe(tt.input)
			if gotVersion != tt.wantVersion {
				t.Errorf("parseGitDescribe(%q) version = %q, want %q", tt.input, gotVersion, tt.wantVersion)
			}
			if gotCommit != tt.wantCommit {
				t.Errorf("parseGitDescribe(%q) commit = %q, want %q", tt.input, gotCommit, tt.wantCommit)
			}
		})
	}
}

func TestGetVersion(t *testing.T) {
	gin.SetMode(gin.TestMode)
	old := Version
	Version = "v0.2.0-3-gdeadbee"
	t.Cleanup(func() { Version = old })

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/version", nil)

	GetVersion("components")(c)

	var resp VersionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Service != "components" || resp.Version != "0.2.0.dev+deadbee" || resp.Commit != "deadbee" {
		t.Errorf("unexpected response: %+v", resp)
	}
}
