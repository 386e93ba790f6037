package p2p

import (
	"bvnet/ec"

	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrGenNodeKey(t *testing.T) {
	assert, require := assert.New(t), require.New(t)

	dir, err := ioutil.TempDir("", "bvnet-nodekey-test")
	require.Nil(err)
	defer os.RemoveAll(dir)

	filePath := filepath.Join(dir, "nodekey.json")
	nodeKey, err := LoadOrGenNodeKey(filePath)
	require.Nil(err)
	require.NotNil(nodeKey)
	assert.False(nodeKey.PrivKey.IsZero())

	id := nodeKey.NodeId()
	assert.True(IsValidNodeId(string(id)))
	assert.Equal(52, len(id))

	// a second load must yield the same identity
	again, err := LoadOrGenNodeKey(filePath)
	require.Nil(err)
	assert.Equal(id, again.NodeId())
	assert.True(nodeKey.PrivKey.Equal(again.PrivKey))
}

func TestLoadNodeKeyErrors(t *testing.T) {
	assert, require := assert.New(t), require.New(t)

	dir, err := ioutil.TempDir("", "bvnet-nodekey-test")
	require.Nil(err)
	defer os.RemoveAll(dir)

	_, err = LoadNodeKey(filepath.Join(dir, "absent.json"))
	assert.NotNil(err)

	garbled := filepath.Join(dir, "garbled.json")
	require.Nil(ioutil.WriteFile(garbled, []byte("not json"), 0600))
	_, err = LoadNodeKey(garbled)
	assert.NotNil(err)
}

func TestNodeId(t *testing.T) {
	assert := assert.New(t)

	priv := ec.NewPrivKey()
	key := &NodeKey{PrivKey: priv}
	assert.Equal(PubKeyToNodeId(priv.PubKey()), key.NodeId())

	pub := key.PubKey()
	assert.True(pub.Equal(priv.PubKey()))

	assert.False(IsValidNodeId("deadbeef"))
	assert.False(IsValidNodeId(""))
	assert.True(IsValidNodeId(string(key.NodeId())))
}
