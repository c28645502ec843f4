package pg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsForeignKeyViolation(t *testing.T) {
	fk := &pq.Error{Code: "23503", Message: "insert or update on table violates foreign key constraint"}

	assert.True(t, IsForeignKeyViolation(fk))
	assert.True(t, IsForeignKeyViolation(fmt.Errorf("insert: %w", fk)))
	assert.False(t, IsForeignKeyViolation(&pq.Error{Code: "23505"}))
	assert.False(t, IsForeignKeyViolation(errors.New("plain")))
	assert.False(t, IsForeignKeyViolation(nil))
}

func TestConnectionConfigs(t *testing.T) {
	def := DefaultConnectionConfig()
	light := LightweightConnectionConfig()

	assert.Greater(t, def.MaxOpenConns, light.MaxOpenConns)
	assert.LessOrEqual(t, def.MaxIdleConns, def.MaxOpenConns)
	assert.LessOrEqual(t, light.MaxIdleConns, light.MaxOpenConns)
}
