package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithParseTime(t *testing.T) {
	assert.Equal(t, "u:p@tcp(db:3306)/idle?parseTime=true", withParseTime("u:p@tcp(db:3306)/idle"))
	assert.Equal(t, "u@/idle?charset=utf8mb4&parseTime=true", withParseTime("u@/idle?charset=utf8mb4"))
	assert.Equal(t, "u@/idle?parseTime=false", withParseTime("u@/idle?parseTime=false"))
}
