package content

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"book": KindBook, "books": KindBook, "movies": KindMovie, "group": KindGroup} {
		k, err := ParseKind(in)
		require.NoError(t, err)
		require.Equal(t, want, k)
	}
	_, err := ParseKind("albums")
	require.Error(t, err)
}

func TestDocumentJSONIncludesCounts(t *testing.T) {
	d := &Document{
		ID:        "b1",
		Kind:      KindBook,
		Body:      "Dune",
		Username:  "alice",
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Comments:  []Comment{{ID: "c1", Title: "t", Body: "great", Username: "bob"}},
	}
	b, err := json.Marshal(d)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &got))
	require.Equal(t, "b1", got["id"])
	require.Equal(t, float64(1), got["commentCount"])
	require.Equal(t, float64(0), got["likeCount"])
	require.Equal(t, []interface{}{}, got["likes"])
	require.NotContains(t, got, "avatar")
}

func TestCloneIsDeep(t *testing.T) {
	d := &Document{ID: "m1", Kind: KindMovie, Likes: []Like{{Username: "a"}}, Comments: []Comment{{ID: "c"}}}
	c := d.Clone()
	c.Likes[0].Username = "z"
	c.Comments = append(c.Comments, Comment{ID: "d"})

	require.Equal(t, "a", d.Likes[0].Username)
	require.Len(t, d.Comments, 1)
	require.True(t, d.LikedBy("a"))
	require.Equal(t, 0, d.CommentIndex("c"))
	require.Equal(t, -1, d.CommentIndex("d"))
}
