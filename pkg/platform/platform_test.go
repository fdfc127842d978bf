package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		goos   string
		kernel string
		want   Tag
	}{
		{
			name: "darwin",
			goos: "darwin",
			want: Darwin,
		},
		{
			name:   "plain linux",
			goos:   "linux",
			kernel: "Linux version 6.8.0-45-generic (buildd@lcy02)",
			want:   Linux,
		},
		{
			name:   "wsl kernel marker",
			goos:   "linux",
			kernel: "Linux version 5.15.153.1-microsoft-standard-WSL2",
			want:   WSL,
		},
		{
			name:   "wsl marker is case insensitive",
			goos:   "linux",
			kernel: "Linux version 4.4.0-19041-Microsoft",
			want:   WSL,
		},
		{
			name: "unsupported os",
			goos: "windows",
			want: Unknown,
		},
		{
			name: "linux with unreadable kernel version",
			goos: "linux",
			want: Linux,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.goos, tt.kernel))
		})
	}
}

func TestResolveIsStable(t *testing.T) {
	first := Resolve()
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, Resolve())
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name        string
		current     Tag
		restriction []Tag
		want        bool
	}{
		{"no restriction applies everywhere", Linux, nil, true},
		{"empty restriction applies everywhere", Darwin, []Tag{}, true},
		{"member", WSL, []Tag{Linux, WSL}, true},
		{"non-member", Darwin, []Tag{Linux, WSL}, false},
		{"unknown platform skips restricted sources", Unknown, []Tag{Linux}, false},
		{"unknown platform keeps unrestricted sources", Unknown, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.current, tt.restriction))
		})
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("linux"))
	assert.True(t, IsValid("darwin"))
	assert.True(t, IsValid("wsl"))
	assert.False(t, IsValid("unknown"))
	assert.False(t, IsValid("windows"))
	assert.False(t, IsValid(""))
}
