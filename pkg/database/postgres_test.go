package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/capacity-api/pkg/config"
)

func TestDSNIncludesStatementTimeout(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", Name: "field_capacity",
		SSLMode: "disable", QueryTimeout: 30 * time.Second,
	})

	assert.Equal(t, "host=db port=5432 user=u password=p dbname=field_capacity sslmode=disable statement_timeout=30000", dsn)
}

func TestDSNWithoutTimeout(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, SSLMode: "disable"})
	assert.NotContains(t, dsn, "statement_timeout")
}
