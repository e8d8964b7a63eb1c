package handlers

import (
	"net/http"
	"regexp"
	"runtime"
	"strings"

	"github.com/gin-gonic/gin"
)

// Version is set via ldflags at build time, usually from `git describe --tags --dirty`.
var Version = "dev"

var (
	describeRe = regexp.MustCompile(`^(.+)-(\d+)-g([0-9a-f]+)$`)
	commitRe   = regexp.MustCompile(`^[0-9a-f]{7,40}$`)
)

// parseGitDescribe turns git describe output into a PEP 440 style version
// and the commit it was built from, if the build is past a tag.
func parseGitDescribe(s string) (version, commit string) {
	s = strings.TrimSpace(s)
	dirty := strings.HasSuffix(s, "-dirty")
	s = strings.TrimSuffix(s, "-dirty")

	if commitRe.MatchString(s) {
		return "dev+" + s, s
	}

	s = strings.TrimPrefix(s, "v")
	if m := describeRe.FindStringSubmatch(s); m != nil {
		return m[1] + ".dev+" + m[3], m[3]
	}
	if dirty {
		return s + ".dev", ""
	}
	return s, ""
}

// VersionResponse is returned by GET /version.
type VersionResponse struct {
	Service   string `json:"service" example:"components"`
	Version   string `json:"version" example:"0.1.0"`
	Commit    string `json:"commit,omitempty"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

func versionInfo(service string) VersionResponse {
	version, commit := parseGitDescribe(Version)
	return VersionResponse{
		Service:   service,
		Version:   version,
		Commit:    commit,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// GetVersion godoc
// @Summary Get version information
// @Description Returns version information about the running service
// @Tags system
// @Produce json
// @Success 200 {object} VersionResponse
// @Router /version [get]
func GetVersion(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, versionInfo(service))
	}
}
