// Package feed aggregates one user's comments and group posts across books,
// movies and groups.
package feed

import (
	"sort"
	"time"

	"github.com/ndsf/awesome-douban/backend/go-services/internal/content"
)

// Item is one comment or post by the feed's user, with enough of its parent
// document to link back to it.
type Item struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Body       string       `json:"body"`
	Username   string       `json:"username"`
	CreatedAt  time.Time    `json:"createdAt"`
	ParentID   string       `json:"parentId"`
	ParentKind content.Kind `json:"parentKind"`
	ParentBody string       `json:"parentBody"`
}

// Feed keeps the three channels separate.
type Feed struct {
	Books  []Item `json:"books"`
	Movies []Item `json:"movies"`
	Groups []Item `json:"groups"`
}

// Channel returns the items for kind, or nil for an unknown kind.
func (f Feed) Channel(kind content.Kind) []Item {
	switch kind {
	case content.KindBook:
		return f.Books
	case content.KindMovie:
		return f.Movies
	case content.KindGroup:
		return f.Groups
	}
	return nil
}

// Build filters every document's entries down to those authored by username.
// Items keep document order, then entry order within each document.
func Build(username string, books, movies, groups []*content.Document) Feed {
	return Feed{
		Books:  collect(username, books),
		Movies: collect(username, movies),
		Groups: collect(username, groups),
	}
}

func collect(username string, docs []*content.Document) []Item {
	items := []Item{}
	for _, d := range docs {
		if d == nil {
			continue
		}
		for _, c := range d.Comments {
			if c.Username != username {
				continue
			}
			items = append(items, Item{
				ID:         c.ID,
				Title:      c.Title,
				Body:       c.Body,
				Username:   c.Username,
				CreatedAt:  c.CreatedAt,
				ParentID:   d.ID,
				ParentKind: d.Kind,
				ParentBody: d.Body,
			})
		}
	}
	return items
}

// JoinedGroups returns the groups whose members include username.
func JoinedGroups(username string, groups []*content.Document) []*content.Document {
	out := []*content.Document{}
	for _, g := range groups {
		if g != nil && g.LikedBy(username) {
			out = append(out, g)
		}
	}
	return out
}

// Timeline merges all channels newest first. Equal timestamps keep channel
// order (books, movies, groups) and then their order within the channel.
func Timeline(f Feed) []Item {
	all := make([]Item, 0, len(f.Books)+len(f.Movies)+len(f.Groups))
	all = append(all, f.Books...)
	all = append(all, f.Movies...)
	all = append(all, f.Groups...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all
}
