package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0B"},
		{1, "0.0KB"},
		{1000, "1.0KB"},
		{1024, "1.0KB"},
		{1536, "1.5KB"},
		{1048575, "1024.0KB"},
		{1048576, "1.0MB"},
		{5 * 1024 * 1024 * 1024, "5.0GB"},
		{math.MaxInt64, "8.0EB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Size(tt.bytes))
		})
	}
}

func TestSize_BeyondYottabytes(t *testing.T) {
	assert.Equal(t, "1.0YB", size(math.Pow(1024, 8)))
	assert.Equal(t, "N/A", size(math.Pow(1024, 9)))
}

func TestSeconds(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "0 sec"},
		{45, "45 sec"},
		{59, "59 sec"},
		{60, "1 min"},
		{90, "1 min 30 sec"},
		{3600, "60 min"},
		{3661, "61 min 1 sec"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Seconds(tt.secs))
		})
	}
}
