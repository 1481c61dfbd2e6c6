package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Verb
	}{
		{"info", "INFO {}\r\n", VerbInfo},
		{"connect", "CONNECT {}\r\n", VerbConnect},
		{"pub", "PUB a.b 5\r\n", VerbPub},
		{"sub", "SUB a.b 1\r\n", VerbSub},
		{"unsub", "UNSUB 1\r\n", VerbUnsub},
		{"msg", "MSG a.b 1 5\r\n", VerbMsg},
		{"ping", "PING\r\n", VerbPing},
		{"pong", "PONG\r\n", VerbPong},
		{"ok", "+OK\r\n", VerbOK},
		{"err", "-ERR 'bad'\r\n", VerbErr},
		{"lowercase verb", "ping\r\n", VerbPing},
		{"unknown", "BOGUS foo\r\n", VerbUnknown},
		{"empty", "\r\n", VerbUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify([]byte(tc.line)))
		})
	}
}

func TestPubHeaderRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		reply   string
		size    int
	}{
		{"no reply", "orders.accepted", "", 42},
		{"with reply", "echo", "reply.abc123", 4},
		{"zero size", "a.b", "", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			line := BuildPubHeader(tc.subject, tc.reply, tc.size)
			got, err := ParsePubHeader([]byte(line))
			require.NoError(t, err)
			assert.Equal(t, tc.subject, got.Subject)
			assert.Equal(t, tc.reply, got.Reply)
			assert.Equal(t, tc.size, got.Size)
		})
	}
}

func TestSubHeaderRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		queue   string
		sid     string
	}{
		{"plain", "orders.new", "", "1"},
		{"queue group", "orders.new", "workers", "2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			line := BuildSub(tc.subject, tc.queue, tc.sid)
			got, err := ParseSub([]byte(line))
			require.NoError(t, err)
			assert.Equal(t, tc.subject, got.Subject)
			assert.Equal(t, tc.queue, got.Queue)
			assert.Equal(t, tc.sid, got.Sid)
		})
	}
}

func TestUnsubHeaderRoundTrip(t *testing.T) {
	line := BuildUnsub("7", 0)
	got, err := ParseUnsub([]byte(line))
	require.NoError(t, err)
	assert.Equal(t, "7", got.Sid)
	assert.Equal(t, 0, got.MaxMsgs)

	line = BuildUnsub("7", 10)
	got, err = ParseUnsub([]byte(line))
	require.NoError(t, err)
	assert.Equal(t, 10, got.MaxMsgs)
}

func TestMsgHeaderParse(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    MsgHeader
		wantErr bool
	}{
		{
			name: "no reply",
			line: "MSG a.b 1 5\r\n",
			want: MsgHeader{Subject: "a.b", Sid: "1", Size: 5},
		},
		{
			name: "with reply",
			line: "MSG a.b 1 reply.x 5\r\n",
			want: MsgHeader{Subject: "a.b", Sid: "1", Reply: "reply.x", Size: 5},
		},
		{
			name:    "non-integer size",
			line:    "MSG a.b 1 five\r\n",
			wantErr: true,
		},
		{
			name:    "too few fields",
			line:    "MSG a.b\r\n",
			wantErr: true,
		},
		{
			name:    "wrong verb",
			line:    "PUB a.b 5\r\n",
			wantErr: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseMsgHeader([]byte(tc.line))
			if tc.wantErr {
				require.Error(t, err)
				var perr *ProtocolError
				assert.ErrorAs(t, err, &perr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestInfoRoundTrip(t *testing.T) {
	line := `INFO {"server_id":"s1","version":"2.10","proto":1,"host":"h","port":4222,"max_payload":1048576}` + crlf
	info, err := ParseInfo([]byte(line))
	require.NoError(t, err)
	assert.Equal(t, "s1", info.ServerID)
	assert.Equal(t, int64(1048576), info.MaxPayload)
}

func TestInfoRejectsZeroMaxPayload(t *testing.T) {
	line := `INFO {"server_id":"s1","version":"2.10","proto":1,"host":"h","port":4222,"max_payload":0}` + crlf
	_, err := ParseInfo([]byte(line))
	require.Error(t, err)
}

func TestConnectRoundTrip(t *testing.T) {
	opts := ConnectOptions{
		Verbose:  false,
		Pedantic: false,
		Name:     "test-client",
		Lang:     "go",
		Version:  "1.0.0",
		Protocol: 1,
	}
	line, err := BuildConnect(opts)
	require.NoError(t, err)
	assert.Equal(t, VerbConnect, Classify([]byte(line)))

	got, err := ParseConnect([]byte(line))
	require.NoError(t, err)
	assert.Equal(t, opts, got)
}

func TestPingPongBuilders(t *testing.T) {
	assert.Equal(t, "PING\r\n", BuildPing())
	assert.Equal(t, "PONG\r\n", BuildPong())
	assert.Equal(t, VerbPing, Classify([]byte(BuildPing())))
	assert.Equal(t, VerbPong, Classify([]byte(BuildPong())))
}

func TestErrRoundTrip(t *testing.T) {
	line := BuildErr("Authorization Violation")
	assert.Equal(t, "-ERR 'Authorization Violation'\r\n", line)
	msg, err := ParseErr([]byte(line))
	require.NoError(t, err)
	assert.Equal(t, "Authorization Violation", msg)
}

func TestPubHeaderInvalidSize(t *testing.T) {
	_, err := ParsePubHeader([]byte("PUB a.b -1\r\n"))
	require.Error(t, err)
}

func TestBuildInfoRoundTrip(t *testing.T) {
	line, err := BuildInfo(ServerInfo{ServerID: "s1", Version: "2.10", Proto: 1, Host: "h", Port: 4222, MaxPayload: 1048576})
	require.NoError(t, err)
	info, err := ParseInfo([]byte(line))
	require.NoError(t, err)
	assert.Equal(t, "s1", info.ServerID)
	assert.Equal(t, int64(1048576), info.MaxPayload)
}

func TestBuildMsgHeaderRoundTrip(t *testing.T) {
	noReply := BuildMsgHeader("a.b", "1", "", 5)
	hdr, err := ParseMsgHeader([]byte(noReply))
	require.NoError(t, err)
	assert.Equal(t, MsgHeader{Subject: "a.b", Sid: "1", Size: 5}, hdr)

	withReply := BuildMsgHeader("a.b", "1", "reply.x", 5)
	hdr, err = ParseMsgHeader([]byte(withReply))
	require.NoError(t, err)
	assert.Equal(t, MsgHeader{Subject: "a.b", Sid: "1", Reply: "reply.x", Size: 5}, hdr)
}

// FuzzParsePubHeader checks that ParsePubHeader never panics on arbitrary
// input and that it round-trips everything BuildPubHeader can produce
// (spec.md §8 property 1).
func FuzzParsePubHeader(f *testing.F) {
	f.Add([]byte(BuildPubHeader("a.b", "", 0)))
	f.Add([]byte(BuildPubHeader("orders.new", "reply.1", 128)))
	f.Add([]byte(BuildPubHeader("a.b.c.d", "r", 1048576)))
	f.Add([]byte("PUB\r\n"))
	f.Add([]byte("PUB a.b -1\r\n"))
	f.Add([]byte("PUB a.b x\r\n"))
	f.Add([]byte("PUB a.b c.d e.f 5\r\n"))

	f.Fuzz(func(t *testing.T, data []byte) {
		hdr, err := ParsePubHeader(data)
		if err != nil {
			return
		}
		assert.GreaterOrEqual(t, hdr.Size, 0, "ParsePubHeader accepted a negative size")

		rebuilt := BuildPubHeader(hdr.Subject, hdr.Reply, hdr.Size)
		hdr2, err := ParsePubHeader([]byte(rebuilt))
		require.NoError(t, err, "re-parsing a header built from a parsed header must succeed")
		assert.Equal(t, hdr, hdr2, "PUB header did not round-trip through Build/Parse")
	})
}

// FuzzParseMsgHeader mirrors FuzzParsePubHeader for the server-to-client
// MSG header, the frame transport.Connection uses to know exactly how
// many payload bytes follow on the wire.
func FuzzParseMsgHeader(f *testing.F) {
	f.Add([]byte(BuildMsgHeader("a.b", "1", "", 0)))
	f.Add([]byte(BuildMsgHeader("orders.accepted", "42", "reply.x", 256)))
	f.Add([]byte("MSG\r\n"))
	f.Add([]byte("MSG a.b 1 -1\r\n"))
	f.Add([]byte("MSG a.b 1 x\r\n"))
	f.Add([]byte("MSG a.b 1 r1 r2 5\r\n"))

	f.Fuzz(func(t *testing.T, data []byte) {
		hdr, err := ParseMsgHeader(data)
		if err != nil {
			return
		}
		assert.GreaterOrEqual(t, hdr.Size, 0, "ParseMsgHeader accepted a negative size")

		rebuilt := BuildMsgHeader(hdr.Subject, hdr.Sid, hdr.Reply, hdr.Size)
		hdr2, err := ParseMsgHeader([]byte(rebuilt))
		require.NoError(t, err, "re-parsing a header built from a parsed header must succeed")
		assert.Equal(t, hdr, hdr2, "MSG header did not round-trip through Build/Parse")
	})
}

// FuzzParseSub checks SUB header parsing, including the optional
// queue-group argument.
func FuzzParseSub(f *testing.F) {
	f.Add([]byte(BuildSub("a.b", "", "1")))
	f.Add([]byte(BuildSub("orders.new", "workers", "7")))
	f.Add([]byte("SUB\r\n"))
	f.Add([]byte("SUB a.b\r\n"))
	f.Add([]byte("SUB a.b q1 q2 1\r\n"))

	f.Fuzz(func(t *testing.T, data []byte) {
		hdr, err := ParseSub(data)
		if err != nil {
			return
		}

		rebuilt := BuildSub(hdr.Subject, hdr.Queue, hdr.Sid)
		hdr2, err := ParseSub([]byte(rebuilt))
		require.NoError(t, err, "re-parsing a header built from a parsed header must succeed")
		assert.Equal(t, hdr, hdr2, "SUB header did not round-trip through Build/Parse")
	})
}

// FuzzParseUnsub checks UNSUB header parsing, including the optional
// max-messages argument.
func FuzzParseUnsub(f *testing.F) {
	f.Add([]byte(BuildUnsub("1", 0)))
	f.Add([]byte(BuildUnsub("7", 100)))
	f.Add([]byte("UNSUB\r\n"))
	f.Add([]byte("UNSUB 1 x\r\n"))
	f.Add([]byte("UNSUB 1 2 3\r\n"))

	f.Fuzz(func(t *testing.T, data []byte) {
		hdr, err := ParseUnsub(data)
		if err != nil {
			return
		}
		assert.GreaterOrEqual(t, hdr.MaxMsgs, 0, "ParseUnsub accepted a negative max")

		rebuilt := BuildUnsub(hdr.Sid, hdr.MaxMsgs)
		hdr2, err := ParseUnsub([]byte(rebuilt))
		require.NoError(t, err, "re-parsing a header built from a parsed header must succeed")
		assert.Equal(t, hdr, hdr2, "UNSUB header did not round-trip through Build/Parse")
	})
}
