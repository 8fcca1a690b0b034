package postgres

import (
	"testing"

	"comply-rag/pkg/config"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	dsn := DSN(&config.DatabaseConfig{
		Host: "db", Port: "5432", User: "u", Password: "p", DBName: "comply", SSLMode: "disable",
	})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=comply sslmode=disable", dsn)
}
