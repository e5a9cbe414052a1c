package chat

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_Lifecycle(t *testing.T) {
	t.Parallel()

	d := NewDirectory()
	assert.Equal(t, 1, d.Connect("c1"))
	assert.Equal(t, 2, d.Connect("c2"))
	assert.Equal(t, 3, d.Connect("c3"))

	assert.Equal(t, UnknownUsername, d.Username("c1"))
	assert.False(t, d.Named("c1"))

	assert.Equal(t, []string{"alice"}, d.SetUsername("c1", "alice"))
	assert.Equal(t, []string{"alice", "bob"}, d.SetUsername("c2", "bob"))
	// the same name from a second connection is listed once
	assert.Equal(t, []string{"alice", "bob"}, d.SetUsername("c3", "alice"))
	assert.Equal(t, "bob", d.Username("c2"))

	dep := d.Disconnect("c2")
	assert.Equal(t, Departure{Username: "bob", Named: true, Users: []string{"alice"}, Count: 2}, dep)

	dep = d.Disconnect("unknown")
	assert.False(t, dep.Named)
	assert.Equal(t, 2, dep.Count)

	assert.Equal(t, []string{"alice"}, d.Users())
	assert.Equal(t, 2, d.Count())
}

func TestDirectory_Typing(t *testing.T) {
	t.Parallel()

	d := NewDirectory()
	d.Connect("c1")

	_, ok := d.StartTyping("c1")
	assert.False(t, ok, "unnamed connections cannot type")
	assert.False(t, d.StopTyping("c1"))

	d.SetUsername("c1", "alice")
	name, ok := d.StartTyping("c1")
	require.True(t, ok)
	assert.Equal(t, "alice", name)
	assert.True(t, d.Typing("alice"))

	assert.True(t, d.StopTyping("c1"))
	assert.False(t, d.Typing("alice"))

	d.StartTyping("c1")
	d.Disconnect("c1")
	assert.False(t, d.Typing("alice"))
}

func TestDirectory_UsersIsACopy(t *testing.T) {
	t.Parallel()

	d := NewDirectory()
	d.SetUsername("c1", "alice")
	users := d.Users()
	users[0] = "mallory"
	assert.Equal(t, []string{"alice"}, d.Users())
}

func TestHistory_KeepsMostRecent(t *testing.T) {
	t.Parallel()

	h := NewHistory(3)
	now := time.Unix(1700000000, 0)
	for i := 0; i < 5; i++ {
		h.Append(NewMessage("alice", fmt.Sprintf("msg %d", i), MessageKindUser, now))
	}

	msgs := h.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "msg 2", msgs[0].Message)
	assert.Equal(t, "msg 4", msgs[2].Message)
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, float64(1700000000), msgs[0].Timestamp)
	assert.Equal(t, MessageKindUser, msgs[0].Type)
}

func TestHistory_DefaultSize(t *testing.T) {
	t.Parallel()

	h := NewHistory(0)
	for i := 0; i < DefaultMaxHistory+10; i++ {
		h.Append(Message{Username: "bob", Message: fmt.Sprint(i)})
	}
	assert.Equal(t, DefaultMaxHistory, h.Len())
	assert.Equal(t, "10", h.Messages()[0].Message)
}
