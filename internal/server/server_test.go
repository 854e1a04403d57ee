package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequestTimeoutCoversRenderTimeout(t *testing.T) {
	assert.Equal(t, 60*time.Second, requestTimeout(30*time.Second))
	assert.Equal(t, 100*time.Second, requestTimeout(90*time.Second))
	assert.Greater(t, requestTimeout(5*time.Minute), 5*time.Minute)
}
