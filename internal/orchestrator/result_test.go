package orchestrator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_FormatsWithFile(t *testing.T) {
	err := Error{File: "app.go", Phase: PhaseParse, Err: errors.New("unexpected token")}
	assert.Equal(t, "parse[app.go]: unexpected token", err.Error())
}

func TestError_FormatsWithoutFile(t *testing.T) {
	err := Error{Phase: PhaseStatistics, Err: errors.New("db unreachable")}
	assert.Equal(t, "statistics: db unreachable", err.Error())
}

func TestError_UnwrapsUnderlying(t *testing.T) {
	wrapped := errors.New("boom")
	err := Error{Phase: PhaseResolve, Err: wrapped}
	assert.ErrorIs(t, err, wrapped)
}
