package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/ndsf/awesome-douban/backend/go-services/internal/content"
	"github.com/ndsf/awesome-douban/backend/go-services/pkg/logger"
	"github.com/ndsf/awesome-douban/backend/go-services/pkg/metrics"
)

// Reader is the read API the feed is built from.
type Reader interface {
	List(ctx context.Context, kind content.Kind) ([]*content.Document, error)
}

// AvatarResolver turns a stored avatar key into a fetchable URL.
type AvatarResolver interface {
	PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

type JoinedGroup struct {
	ID          string `json:"id"`
	Body        string `json:"body"`
	Username    string `json:"username"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	MemberCount int    `json:"memberCount"`
	PostCount   int    `json:"postCount"`
}

// View is the feed page for one user.
type View struct {
	Username     string        `json:"username"`
	Books        []Item        `json:"books"`
	Movies       []Item        `json:"movies"`
	Groups       []Item        `json:"groups"`
	JoinedGroups []JoinedGroup `json:"joinedGroups"`
	Timeline     []Item        `json:"timeline,omitempty"`
}

type Service struct {
	reader    Reader
	avatars   AvatarResolver
	avatarTTL time.Duration
}

// NewService returns a feed service. avatars may be nil, in which case
// joined groups are returned without avatar URLs.
func NewService(reader Reader, avatars AvatarResolver, avatarTTL time.Duration) *Service {
	if avatarTTL <= 0 {
		avatarTTL = time.Hour
	}
	return &Service{reader: reader, avatars: avatars, avatarTTL: avatarTTL}
}

// Get builds username's feed from every document of every kind.
func (s *Service) Get(ctx context.Context, username string, withTimeline bool) (*View, error) {
	docs := make(map[content.Kind][]*content.Document, len(content.Kinds))
	for _, k := range content.Kinds {
		list, err := s.reader.List(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", k.Plural(), err)
		}
		docs[k] = list
	}

	f := Build(username, docs[content.KindBook], docs[content.KindMovie], docs[content.KindGroup])
	v := &View{
		Username:     username,
		Books:        f.Books,
		Movies:       f.Movies,
		Groups:       f.Groups,
		JoinedGroups: s.joined(ctx, username, docs[content.KindGroup]),
	}
	if withTimeline {
		v.Timeline = Timeline(f)
	}
	metrics.FeedBuilds.Inc()
	return v, nil
}

func (s *Service) joined(ctx context.Context, username string, groups []*content.Document) []JoinedGroup {
	out := []JoinedGroup{}
	for _, g := range JoinedGroups(username, groups) {
		jg := JoinedGroup{
			ID:          g.ID,
			Body:        g.Body,
			Username:    g.Username,
			MemberCount: g.LikeCount(),
			PostCount:   g.CommentCount(),
		}
		if g.Avatar != "" && s.avatars != nil {
			u, err := s.avatars.PresignedURL(ctx, g.Avatar, s.avatarTTL)
			if err != nil {
				logger.Warnf("avatar for group %s: %v", g.ID, err)
			} else {
				jg.AvatarURL = u
			}
		}
		out = append(out, jg)
	}
	return out
}
