package dto

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpg-motif-api/pkg/errors"
)

func bindQuery(t *testing.T, rawQuery string, obj any) error {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
	return c.ShouldBindQuery(obj)
}

func TestPositionQueryBindsZeroCoordinates(t *testing.T) {
	// 原点 (0,0) 是合法坐标，绑定不得拒绝零值
	var q PositionQuery
	require.NoError(t, bindQuery(t, "x=0&y=0", &q))
	require.NotNil(t, q.X)
	require.NotNil(t, q.Y)
	assert.Zero(t, *q.X)
	assert.Zero(t, *q.Y)
	require.NoError(t, q.Validate())

	sq := q.ToSpatialQuery()
	require.NotNil(t, sq.Point)
	assert.Zero(t, sq.Point.X)
	assert.Zero(t, sq.Point.Y)
}

func TestPositionQueryRequiresBothCoordinates(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"missing y", "x=3"},
		{"missing x", "y=7"},
		{"missing both", "radius=10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q PositionQuery
			require.NoError(t, bindQuery(t, tt.query, &q))

			err := q.Validate()
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidQuery, errors.AsAppError(err).Code)
			assert.Nil(t, q.ToSpatialQuery().Point)
		})
	}
}

func TestCreateMotifRequestBindsZeroIntensity(t *testing.T) {
	// 零强度由实体校验报 422，绑定层不拦截
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	body := `{"name":"Flat","category":"FEAR","scope":"GLOBAL","intensity":0}`
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req CreateMotifRequest
	require.NoError(t, c.ShouldBindJSON(&req))

	m := req.ToEntity()
	assert.Zero(t, m.Intensity)
	require.Error(t, m.Validate())
}
