package common

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAcceptRequestID(t *testing.T) {
	assert.Equal(t, "rid-1", AcceptRequestID("rid-1"))

	for _, bad := range []string{"", strings.Repeat("a", 65), "has space", "new\nline", "中文"} {
		got := AcceptRequestID(bad)
		assert.NotEqual(t, bad, got)
		_, err := uuid.Parse(got)
		assert.NoError(t, err, "fallback should be a uuid")
	}
}

func TestRequestID_FromGin(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, RequestID(c))

	SetRequestID(c, "rid-2")
	assert.Equal(t, "rid-2", RequestID(c))
}
