package grug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	grug "github.com/left-curve/grug-go"
)

func TestVersion(t *testing.T) {
	defer func(prev string) { grug.GitCommit = prev }(grug.GitCommit)

	grug.GitCommit = ""
	assert.Equal(t, "v0.1.0-dev", grug.Version())

	grug.GitCommit = "12345678"
	assert.Equal(t, "v0.1.0-dev 12345678", grug.Version())
}
