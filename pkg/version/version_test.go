package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get()

	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.OS+"/"+info.Arch)
}

func TestInfo_Strings(t *testing.T) {
	info := Info{Version: "1.2.3", Commit: "abc123", Date: "2024-01-02", GoVersion: "go1.24.0", OS: "linux", Arch: "amd64"}

	assert.Equal(t, "s3sb 1.2.3 (commit: abc123, built: 2024-01-02, go1.24.0, linux/amd64)", info.String())
	assert.Equal(t, "s3sb/1.2.3", info.UserAgent())
}
