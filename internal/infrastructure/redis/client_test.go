package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fastygo/tasktracker/internal/config"
)

func TestNewClient_RejectsBadURL(t *testing.T) {
	client, err := NewClient(config.RedisConfig{URL: "http://localhost:6379"})
	assert.Error(t, err)
	assert.Nil(t, client)
}
