package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeNode_JSONShape(t *testing.T) {
	tree := []TreeNode{
		{Name: "src", Path: "src", Kind: KindDirectory, Children: []TreeNode{
			{Name: "main.go", Path: "src/main.go", Kind: KindFile},
		}},
		{Name: "README.md", Path: "README.md", Kind: KindFile},
	}

	data, err := json.Marshal(tree)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"name":"src","path":"src","type":"directory","children":[
			{"name":"main.go","path":"src/main.go","type":"file"}
		]},
		{"name":"README.md","path":"README.md","type":"file"}
	]`, string(data))

	var decoded []TreeNode
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, tree, decoded)
}

func TestKind_UnmarshalUnknown(t *testing.T) {
	var n TreeNode
	err := json.Unmarshal([]byte(`{"name":"x","path":"x","type":"symlink"}`), &n)
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("directory")
	require.NoError(t, err)
	assert.Equal(t, KindDirectory, k)

	_, err = ParseKind("")
	assert.Error(t, err)
}

func TestCountNodes(t *testing.T) {
	tree := []TreeNode{
		{Name: "a", Path: "a", Kind: KindDirectory, Children: []TreeNode{
			{Name: "b", Path: "a/b", Kind: KindFile},
			{Name: "c", Path: "a/c", Kind: KindDirectory},
		}},
		{Name: "d", Path: "d", Kind: KindFile},
	}
	assert.Equal(t, 4, CountNodes(tree))
	assert.Equal(t, 0, CountNodes(nil))
}

func TestTreeNode_EmptyDirectoryKeepsChildren(t *testing.T) {
	data, err := json.Marshal(TreeNode{Name: "empty", Path: "empty", Kind: KindDirectory})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"empty","path":"empty","type":"directory","children":[]}`, string(data))
}
