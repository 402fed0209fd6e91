package codec

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWritePub(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	require.NoError(t, WritePub(bw, "foo", "", []byte("hello")))
	require.NoError(t, bw.Flush())
	require.Equal(t, "PUB foo 5\r\nhello\r\n", buf.String())
}

func TestWritePubWithReply(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	require.NoError(t, WritePub(bw, "foo", "_INBOX.abc", []byte("ping")))
	require.NoError(t, bw.Flush())
	require.Equal(t, "PUB foo _INBOX.abc 4\r\nping\r\n", buf.String())
}

func TestWriteSub(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	require.NoError(t, WriteSub(bw, "foo", "", "1"))
	require.NoError(t, bw.Flush())
	require.Equal(t, "SUB foo 1\r\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteSub(bw, "foo", "workers", "2"))
	require.NoError(t, bw.Flush())
	require.Equal(t, "SUB foo workers 2\r\n", buf.String())
}

func TestWriteUnsub(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	require.NoError(t, WriteUnsub(bw, "1", nil))
	require.NoError(t, bw.Flush())
	require.Equal(t, "UNSUB 1\r\n", buf.String())

	buf.Reset()
	max := uint64(2)
	require.NoError(t, WriteUnsub(bw, "1", &max))
	require.NoError(t, bw.Flush())
	require.Equal(t, "UNSUB 1 2\r\n", buf.String())
}

func TestWriteConnect(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	require.NoError(t, WriteConnect(bw, "alice", "secret", true, false))
	require.NoError(t, bw.Flush())
	require.Equal(t, "CONNECT {\"user\":\"alice\",\"pass\":\"secret\",\"pedantic\":true,\"verbose\":false}\r\n", buf.String())
}

func TestReadFrameInfoOkErrPingPong(t *testing.T) {
	raw := "INFO {\"server_id\":\"x\"}\r\n+OK\r\n-ERR 'Authorization Violation'\r\nPING\r\nPONG\r\n"
	p := NewParser(bufio.NewReader(strings.NewReader(raw)), 0)

	f, err := p.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, OpInfo, f.Op)
	require.Equal(t, `{"server_id":"x"}`, string(f.Info))

	f, err = p.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, OpOK, f.Op)

	f, err = p.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, OpErr, f.Op)
	require.Equal(t, "Authorization Violation", f.Err)

	f, err = p.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, OpPing, f.Op)

	f, err = p.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, OpPong, f.Op)
}

func TestReadFrameMsgWithAndWithoutReply(t *testing.T) {
	raw := "MSG foo 1 5\r\nhello\r\nMSG foo 2 _INBOX.abc 4\r\nping\r\n"
	p := NewParser(bufio.NewReader(strings.NewReader(raw)), 0)

	f, err := p.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, OpMsg, f.Op)
	require.Equal(t, "foo", f.Subject)
	require.Equal(t, "1", f.Sid)
	require.Equal(t, "", f.ReplyTo)
	require.Equal(t, "hello", string(f.Body))

	f, err = p.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, "foo", f.Subject)
	require.Equal(t, "2", f.Sid)
	require.Equal(t, "_INBOX.abc", f.ReplyTo)
	require.Equal(t, "ping", string(f.Body))
}

func TestReadFrameRejectsOversizedMsg(t *testing.T) {
	raw := "MSG foo 1 100\r\n"
	p := NewParser(bufio.NewReader(strings.NewReader(raw)), 10)

	_, err := p.ReadFrame()
	require.Error(t, err)
	require.True(t, IsFrameTooLarge(err))
}
