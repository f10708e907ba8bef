package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var payload struct {
		Date Date `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-03-09"}`), &payload))
	assert.Equal(t, NewDate(2024, time.March, 9), payload.Date)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-03-09"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"date":"09.03.2024"}`), &payload))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, time.May, 1, 13, 45, 0, 0, time.UTC)))
	assert.Equal(t, "2024-05-01", d.String())

	require.NoError(t, d.Scan([]byte("2024-06-02T00:00:00Z")))
	assert.Equal(t, "2024-06-02", d.String())

	assert.Error(t, d.Scan(42))

	value, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-06-02", value)
}

func TestOptionalIDDistinguishesNullFromAbsent(t *testing.T) {
	var absent struct {
		RoomID OptionalID `json:"room_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &absent))
	assert.False(t, absent.RoomID.Set)

	var cleared struct {
		RoomID OptionalID `json:"room_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"room_id":null}`), &cleared))
	assert.True(t, cleared.RoomID.Set)
	assert.Nil(t, cleared.RoomID.Value)

	var set struct {
		RoomID OptionalID `json:"room_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"room_id":7}`), &set))
	require.NotNil(t, set.RoomID.Value)
	assert.Equal(t, int64(7), *set.RoomID.Value)
}

func TestScope(t *testing.T) {
	owner := ScopeFor(&Principal{ID: 3})
	assert.True(t, owner.Visible(3))
	assert.False(t, owner.Visible(4))
	assert.Equal(t, "user:3", owner.Key())

	admin := ScopeFor(&Principal{ID: 1, IsSuperuser: true})
	assert.True(t, admin.Visible(4))
	assert.Equal(t, "all", admin.Key())

	assert.True(t, SystemScope().Visible(99))
	assert.Equal(t, Scope{}, ScopeFor(nil))
}

func TestSessionActive(t *testing.T) {
	now := time.Now()
	s := &Session{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, s.Active(now))
	assert.False(t, s.Active(now.Add(2*time.Hour)))

	revoked := now
	s.RevokedAt = &revoked
	assert.False(t, s.Active(now))

	var missing *Session
	assert.False(t, missing.Active(now))
}
