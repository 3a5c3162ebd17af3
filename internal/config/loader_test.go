package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnvWithDefaults(t *testing.T) {
	t.Setenv("MOTIF_TEST_HOST", "db.internal")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"set variable wins", "host: ${MOTIF_TEST_HOST:localhost}", "host: db.internal"},
		{"unset falls back to default", "port: ${MOTIF_TEST_PORT:5432}", "port: 5432"},
		{"empty default", "pass: ${MOTIF_TEST_PASS:}", "pass: "},
		{"no default kept verbatim", "key: ${MOTIF_TEST_MISSING}", "key: ${MOTIF_TEST_MISSING}"},
		{"multiple placeholders", "${MOTIF_TEST_HOST:x}:${MOTIF_TEST_PORT:5432}", "db.internal:5432"},
		{"plain text untouched", "name: rpg-motif-api", "name: rpg-motif-api"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expandEnv(tt.input))
		})
	}
}

func TestExpandEnvSetButEmpty(t *testing.T) {
	t.Setenv("MOTIF_TEST_EMPTY", "")
	// 已设置但为空的变量优先于默认值
	assert.Equal(t, "v: ", expandEnv("v: ${MOTIF_TEST_EMPTY:fallback}"))
}
