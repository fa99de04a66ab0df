package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"VidTube.com/cmd/interaction/dal/db"
	"VidTube.com/cmd/model"
	"VidTube.com/pkg/auth"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const tweetNotFound = "Tweet not found"

type TweetService struct {
	ctx context.Context
}

func NewTweetService(ctx context.Context) *TweetService {
	return &TweetService{ctx: ctx}
}

func tweetContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", errno.ParamErr.WithMessage("Content is required")
	}
	if utf8.RuneCountInString(content) > constants.MaxTweetLength {
		return "", errno.ParamErr.WithMessage("Tweet is too long")
	}
	return content, nil
}

func (s *TweetService) CreateTweet(p *auth.Principal, content string) (*model.Tweet, error) {
	owner, err := auth.Require(p)
	if err != nil {
		return nil, err
	}
	content, err = tweetContent(content)
	if err != nil {
		return nil, err
	}
	tweet := &model.Tweet{Content: content, Owner: owner}
	if err := db.CreateTweet(s.ctx, tweet); err != nil {
		return nil, err
	}
	return tweet, nil
}

// ListUserTweets pages through a user's tweets, newest first. A user without
// tweets gets an empty page.
func (s *TweetService) ListUserTweets(userID primitive.ObjectID, page, limit int64) (*query.Page[model.Tweet], error) {
	pg, err := query.NewPagination(page, limit)
	if err != nil {
		return nil, err
	}
	return query.Run[model.Tweet](s.ctx, db.Engine, query.Spec{
		Collection: constants.TweetCollection,
		Match:      bson.M{"owner": userID},
		Sort:       newestFirst,
	}, pg)
}

func (s *TweetService) owned(p *auth.Principal, id primitive.ObjectID) (*model.Tweet, error) {
	if _, err := auth.Require(p); err != nil {
		return nil, err
	}
	tweet, err := db.GetTweet(s.ctx, id)
	if err != nil {
		return nil, errno.FromStore(err, tweetNotFound)
	}
	if err := auth.Authorize(p, tweet); err != nil {
		return nil, err
	}
	return tweet, nil
}

func (s *TweetService) UpdateTweet(p *auth.Principal, id primitive.ObjectID, content string) (*model.Tweet, error) {
	content, err := tweetContent(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(p, id); err != nil {
		return nil, err
	}
	return db.UpdateTweetContent(s.ctx, id, content)
}

func (s *TweetService) DeleteTweet(p *auth.Principal, id primitive.ObjectID) error {
	if _, err := s.owned(p, id); err != nil {
		return err
	}
	return db.DeleteTweet(s.ctx, id)
}
