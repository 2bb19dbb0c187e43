package tx

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgUnmarshalVariants(t *testing.T) {
	addr := base58.Encode(bytes.Repeat([]byte{0x11}, PublicKeySize))

	var args []Arg
	raw := `["hello", 42, 3.5, {"address": "` + addr + `"}, {"b58": "3yZe7d"}, {"hex": "0xdeadbeef"}, {"utf8": "plain"}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &args))
	require.Len(t, args, 7)

	assert.Equal(t, Arg{ArgText, "hello"}, args[0])
	assert.Equal(t, Arg{ArgNumber, "42"}, args[1])
	assert.Equal(t, Arg{ArgNumber, "3.5"}, args[2])
	assert.Equal(t, Arg{ArgAddress, addr}, args[3])
	assert.Equal(t, Arg{ArgBase58, "3yZe7d"}, args[4])
	assert.Equal(t, Arg{ArgHex, "0xdeadbeef"}, args[5])
	assert.Equal(t, Arg{ArgUtf8, "plain"}, args[6])
}

func TestArgUnmarshalRejectsBadShapes(t *testing.T) {
	cases := []string{
		`{"address": "x", "hex": "ff"}`, // two tags
		`{"unknown": "x"}`,
		`true`,
		`["nested"]`,
	}
	for _, raw := range cases {
		var a Arg
		assert.Error(t, json.Unmarshal([]byte(raw), &a), "input %s", raw)
	}
}

func TestArgMarshalRoundTrip(t *testing.T) {
	addr := base58.Encode(bytes.Repeat([]byte{0x22}, PublicKeySize))
	original := []Arg{
		{ArgText, "hello"},
		{ArgNumber, "42"},
		{ArgAddress, addr},
		{ArgBase58, "3yZe7d"},
		{ArgHex, "deadbeef"},
		{ArgUtf8, "plain"},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded []Arg
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestArgBytes(t *testing.T) {
	addrBytes := bytes.Repeat([]byte{0x33}, PublicKeySize)
	args := []Arg{
		{ArgText, "100000000000"},
		{ArgAddress, base58.Encode(addrBytes)},
		{ArgHex, "0xdeadbeef"},
		{ArgUtf8, "memo"},
	}

	out, err := ArgBytes(args)
	require.NoError(t, err)
	require.Len(t, out, 4)

	assert.Equal(t, []byte("100000000000"), out[0])
	assert.Equal(t, addrBytes, out[1])
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, out[2])
	assert.Equal(t, []byte("memo"), out[3])
}

func TestArgBytesReportsPosition(t *testing.T) {
	args := []Arg{
		{ArgText, "fine"},
		{ArgHex, "not-hex"},
	}

	_, err := ArgBytes(args)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "args[1]")
}

func TestArgBytesRejectsShortAddress(t *testing.T) {
	_, err := ArgBytes([]Arg{{ArgAddress, base58.Encode([]byte("short"))}})
	require.Error(t, err)
}
