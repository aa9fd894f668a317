package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/enixma/dashboard/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncer_CommitSendsSnapshot(t *testing.T) {
	f := &fakeStore{getBody: `{"method":"GET","data":null}`}
	c := newTestClient(t, f)

	s, err := NewSyncer(context.Background(), c, nil)
	require.NoError(t, err)

	pts := []core.Point{{X: 1, Y: 2}}
	s.Commit("firstPoly", pts, core.MethodCreate)
	pts[0].X = 99 // mutation after Commit must not leak into the body
	s.Wait()

	reqs := f.recorded()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodPost, reqs[1].Method)

	var sent []core.Point
	require.NoError(t, json.Unmarshal([]byte(reqs[1].Body), &sent))
	assert.Equal(t, 1.0, sent[0].X)
}

func TestSyncer_FailuresAreSwallowed(t *testing.T) {
	f := &fakeStore{getCode: http.StatusBadGateway}
	c := newTestClient(t, f)

	s, err := NewSyncer(context.Background(), c, nil)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		s.Commit("firstPoly", []core.Point{}, core.MethodUpdate)
		s.Wait()
	})
	assert.Len(t, f.recorded(), 1)
}

func TestSyncer_UnencodablePayload(t *testing.T) {
	f := &fakeStore{}
	c := newTestClient(t, f)

	s, err := NewSyncer(context.Background(), c, nil)
	require.NoError(t, err)

	s.Commit("firstPoly", make(chan int), core.MethodUpdate)
	s.Wait()
	assert.Empty(t, f.recorded())
}
