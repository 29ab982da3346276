package util

import "testing"

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"", true, true},
		{"", false, false},
		{"true", false, true},
		{"YES", false, true},
		{"1", false, true},
		{"off", true, false},
		{"0", true, false},
		{"banana", true, true},
	}
	for _, tt := range tests {
		t.Setenv("UTIL_TEST_BOOL", tt.value)
		if got := ParseBoolEnv("UTIL_TEST_BOOL", tt.def); got != tt.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
		}
	}
}

func TestParseIntEnv(t *testing.T) {
	tests := []struct {
		value string
		def   int
		want  int
	}{
		{"", 8080, 8080},
		{"3000", 8080, 3000},
		{" 9090 ", 8080, 9090},
		{"not-a-number", 8080, 8080},
	}
	for _, tt := range tests {
		t.Setenv("UTIL_TEST_INT", tt.value)
		if got := ParseIntEnv("UTIL_TEST_INT", tt.def); got != tt.want {
			t.Errorf("ParseIntEnv(%q, %d) = %d, want %d", tt.value, tt.def, got, tt.want)
		}
	}
}
