package util

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type testJanitor struct {
	suite.Suite
}

func (t *testJanitor) TestCleanInReverseOrder() {
	var called []int

	j := NewJanitor()
	j.Add(func() { called = append(called, 0) })
	j.Add(
		func() { called = append(called, 1) },
		func() { called = append(called, 2) },
	)

	t.Equal(3, j.Len())

	t.True(j.Clean())
	t.Equal([]int{2, 1, 0}, called)
	t.True(j.IsCleaned())
	t.Equal(0, j.Len())
}

func (t *testJanitor) TestCleanTwice() {
	var count int

	j := NewJanitor()
	j.Add(func() { count++ })

	t.True(j.Clean())
	t.False(j.Clean())
	t.Equal(1, count)
}

func (t *testJanitor) TestAddAfterClean() {
	j := NewJanitor()
	t.True(j.Clean())

	var called bool
	j.Add(func() { called = true })

	t.True(called)
	t.Equal(0, j.Len())
}

func (t *testJanitor) TestAddInClean() {
	j := NewJanitor()

	var called bool

	j.Add(func() {
		j.Add(func() { called = true })
	})

	t.True(j.Clean())
	t.True(called)
}

func TestJanitor(t *testing.T) {
	suite.Run(t, new(testJanitor))
}
