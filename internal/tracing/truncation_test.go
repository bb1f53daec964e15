package tracing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskPII(t *testing.T) {
	assert.Equal(t, "", MaskPII(""))
	assert.Equal(t, "*", MaskPII("a"))
	assert.Equal(t, "J*", MaskPII("Jo"))
	assert.Equal(t, "J**e", MaskPII("Jane"))
	assert.Equal(t, "ja************om", MaskPII("jane@example.com"))
}

func TestSafeAttributeValue(t *testing.T) {
	assert.Equal(t, "Be**in", SafeAttributeValue("cv.contact.location", "Berlin", 100))
	assert.Equal(t, "Backend Engineer", SafeAttributeValue("cv.job_title", "Backend Engineer", 100))
	assert.Equal(t, "abc...xyz", SafeAttributeValue("cv.raw", "abcdefghijklmnopqrstuvwxyz", 9))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "abc", TruncateString("abcdef", 3))
	assert.Equal(t, "a...f", TruncateString("abcdef", 5))
}

func TestSafeRedisKey(t *testing.T) {
	short := "cvtailor:ratelimit:gemini-2.0-flash:1740823200"
	assert.Equal(t, short, SafeRedisKey(short))

	long := "cvtailor:ratelimit:" + strings.Repeat("m", 200) + ":1740823200"
	got := SafeRedisKey(long)
	assert.Len(t, []rune(got), MaxRedisLength-1)
	assert.True(t, strings.HasPrefix(got, "cvtailor:ratelimit:"))
	assert.Contains(t, got, "...")
}
