package utils

import (
	"runtime/debug"
	"testing"
)

func TestVersionFromBuildInfo(testingHandle *testing.T) {
	testCases := []struct {
		name      string
		buildInfo debug.BuildInfo
		expected  string
	}{
		{
			name:      "module version",
			buildInfo: debug.BuildInfo{Main: debug.Module{Version: "v0.4.0"}},
			expected:  "v0.4.0",
		},
		{
			name: "clean revision",
			buildInfo: debug.BuildInfo{
				Main:     debug.Module{Version: developmentVersion},
				Settings: []debug.BuildSetting{{Key: revisionSettingKey, Value: "0123456789abcdef0123"}},
			},
			expected: "0123456789ab",
		},
		{
			name: "modified revision",
			buildInfo: debug.BuildInfo{
				Main: debug.Module{Version: developmentVersion},
				Settings: []debug.BuildSetting{
					{Key: revisionSettingKey, Value: "abc123"},
					{Key: modifiedSettingKey, Value: "true"},
				},
			},
			expected: "abc123-dirty",
		},
		{
			name:      "nothing known",
			buildInfo: debug.BuildInfo{Main: debug.Module{Version: developmentVersion}},
			expected:  unknownVersion,
		},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(testingHandle *testing.T) {
			if actual := versionFromBuildInfo(&testCase.buildInfo); actual != testCase.expected {
				testingHandle.Fatalf("versionFromBuildInfo() = %q, want %q", actual, testCase.expected)
			}
		})
	}
}
