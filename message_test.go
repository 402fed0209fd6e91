package relay

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMessageIsRequest(t *testing.T) {
	require.True(t, (&Message{ReplyTo: "_INBOX.a"}).IsRequest())
	require.False(t, (&Message{}).IsRequest())
}

func TestMessageReplyRequiresReplyTo(t *testing.T) {
	m := &Message{}
	require.ErrorIs(t, m.Reply([]byte("x")), ErrNotRequest)
}

func TestMessageReplyPublishesToReplyTo(t *testing.T) {
	d := newFakeDialer()
	conn, err := Connect(testOptions(d))
	require.NoError(t, err)
	defer conn.Close()

	tr := d.next()
	tr.sendInfo()

	m := &Message{ReplyTo: "_INBOX.reply", conn: conn}
	require.NoError(t, m.Reply([]byte("pong")))
	require.Contains(t, tr.written(), "PUB _INBOX.reply 4\r\npong\r\n")
}

func TestMessageReplyDelayFiresAfterDelay(t *testing.T) {
	d := newFakeDialer()
	conn, err := Connect(testOptions(d))
	require.NoError(t, err)
	defer conn.Close()

	tr := d.next()
	tr.sendInfo()

	m := &Message{ReplyTo: "_INBOX.reply", conn: conn}
	require.NoError(t, m.ReplyDelay([]byte("later"), 10*time.Millisecond))
	require.NotContains(t, tr.written(), "_INBOX.reply")

	require.Eventually(t, func() bool {
		return strings.Contains(tr.written(), "_INBOX.reply")
	}, time.Second, 5*time.Millisecond)
}
