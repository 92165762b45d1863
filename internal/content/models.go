package content

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind discriminates the content collections that share the Document shape.
type Kind string

const (
	KindBook  Kind = "book"
	KindMovie Kind = "movie"
	// KindGroup documents carry the group's posts as their entry sequence and
	// use likes as group membership.
	KindGroup Kind = "group"
)

// Kinds lists every content kind in feed channel order.
var Kinds = []Kind{KindBook, KindMovie, KindGroup}

func (k Kind) Valid() bool {
	switch k {
	case KindBook, KindMovie, KindGroup:
		return true
	}
	return false
}

// Plural is the collection name used in routes ("books", "movies", "groups").
func (k Kind) Plural() string { return string(k) + "s" }

// ParseKind accepts both the singular and the plural collection name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if s == string(k) || s == k.Plural() {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown content kind %q", s)
}

// Ref addresses one document.
type Ref struct {
	Kind Kind
	ID   string
}

func (r Ref) String() string { return string(r.Kind) + "/" + r.ID }

// Document is a book review, movie review or group. Comments and likes are
// embedded and owned by the document record; Version is bumped by every save.
type Document struct {
	ID        string    `json:"id" bson:"id"`
	Kind      Kind      `json:"kind" bson:"kind"`
	Body      string    `json:"body" bson:"body"`
	Username  string    `json:"username" bson:"username"`
	Avatar    string    `json:"avatar,omitempty" bson:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	Comments  []Comment `json:"comments" bson:"comments"`
	Likes     []Like    `json:"likes" bson:"likes"`
	Version   int64     `json:"version" bson:"version"`
}

// Comment is a comment on a review, or a post inside a group.
type Comment struct {
	ID        string    `json:"id" bson:"id"`
	Title     string    `json:"title" bson:"title"`
	Body      string    `json:"body" bson:"body"`
	Username  string    `json:"username" bson:"username"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

type Like struct {
	Username  string    `json:"username" bson:"username"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

func (d *Document) Ref() Ref { return Ref{Kind: d.Kind, ID: d.ID} }

func (d *Document) CommentCount() int { return len(d.Comments) }

func (d *Document) LikeCount() int { return len(d.Likes) }

// CommentIndex returns the position of the comment with the given id, or -1.
func (d *Document) CommentIndex(id string) int {
	for i := range d.Comments {
		if d.Comments[i].ID == id {
			return i
		}
	}
	return -1
}

// LikeIndex returns the position of username's like, or -1.
func (d *Document) LikeIndex(username string) int {
	for i := range d.Likes {
		if d.Likes[i].Username == username {
			return i
		}
	}
	return -1
}

func (d *Document) LikedBy(username string) bool { return d.LikeIndex(username) >= 0 }

// Clone returns a deep copy; stores hand out clones so callers never mutate
// persisted state in place.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.Comments = append([]Comment(nil), d.Comments...)
	out.Likes = append([]Like(nil), d.Likes...)
	return &out
}

// MarshalJSON adds the derived counts to the wire form.
func (d *Document) MarshalJSON() ([]byte, error) {
	type wire Document
	w := struct {
		*wire
		Comments     []Comment `json:"comments"`
		Likes        []Like    `json:"likes"`
		CommentCount int       `json:"commentCount"`
		LikeCount    int       `json:"likeCount"`
	}{
		wire:         (*wire)(d),
		Comments:     d.Comments,
		Likes:        d.Likes,
		CommentCount: len(d.Comments),
		LikeCount:    len(d.Likes),
	}
	if w.Comments == nil {
		w.Comments = []Comment{}
	}
	if w.Likes == nil {
		w.Likes = []Like{}
	}
	return json.Marshal(w)
}
