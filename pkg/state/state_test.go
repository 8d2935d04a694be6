package state

import (
	"errors"
	"testing"
	"time"

	"github.com/nergy-se/wemportal/pkg/model"
	"github.com/nergy-se/wemportal/pkg/portal"
	"github.com/stretchr/testify/assert"
)

func TestStore(t *testing.T) {
	s := &Store{}
	ok, err := s.Healthy()
	assert.False(t, ok)
	assert.NoError(t, err)
	assert.Nil(t, s.Get())

	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	snapshot := &portal.Snapshot{Devices: []*model.Device{{ID: 1}}, FetchedAt: at}
	s.Set(snapshot)
	ok, err = s.Healthy()
	assert.True(t, ok)
	assert.NoError(t, err)
	assert.Same(t, snapshot, s.Get())
	assert.Equal(t, at, s.LastAttempt())

	failed := at.Add(15 * time.Minute)
	s.SetError(errors.New("login failed"), failed)
	ok, err = s.Healthy()
	assert.False(t, ok)
	assert.EqualError(t, err, "login failed")
	assert.Same(t, snapshot, s.Get())
	assert.Equal(t, failed, s.LastAttempt())
}
