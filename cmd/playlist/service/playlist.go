package service

import (
	"context"
	"strings"

	"VidTube.com/cmd/model"
	"VidTube.com/cmd/playlist/dal/db"
	"VidTube.com/pkg/auth"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/query"
	"VidTube.com/pkg/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const playlistNotFound = "Playlist not found"

var playlistFields = []string{"name", "description", "owner", "videos", "videoDocs", "createdAt", "updatedAt"}

// videoJoin expands the playlist's videos that viewer may see under
// videoDocs; the ordered id list stays in videos.
func videoJoin(p *auth.Principal) query.Join {
	viewer := primitive.NilObjectID
	if p != nil {
		viewer = p.UserID
	}
	return query.Join{
		From:         constants.VideoCollection,
		LocalField:   "videos",
		ForeignField: "_id",
		As:           "videoDocs",
		Match:        model.VideoVisibleTo(viewer),
		Project:      []string{"title", "videoFile", "thumbnail", "duration", "views", "owner"},
	}
}

func videoSummaryID(v model.VideoSummary) primitive.ObjectID { return v.ID }

type PlaylistService struct {
	ctx context.Context
}

func NewPlaylistService(ctx context.Context) *PlaylistService {
	return &PlaylistService{ctx: ctx}
}

type UpdatePlaylistRequest struct {
	Name        *string
	Description *string
}

func (s *PlaylistService) CreatePlaylist(p *auth.Principal, name, description string) (*model.Playlist, error) {
	owner, err := auth.Require(p)
	if err != nil {
		return nil, err
	}
	name, description = strings.TrimSpace(name), strings.TrimSpace(description)
	if name == "" || description == "" {
		return nil, errno.ParamErr.WithMessage("Name and description are required")
	}
	playlist := &model.Playlist{Name: name, Description: description, Owner: owner}
	if err := db.CreatePlaylist(s.ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

// UserPlaylists lists every playlist of the user, newest first, with the
// videos p may see expanded in playlist order.
func (s *PlaylistService) UserPlaylists(p *auth.Principal, userID primitive.ObjectID) ([]model.PlaylistWithVideos, error) {
	lists, err := query.All[model.PlaylistWithVideos](s.ctx, db.Engine, query.Spec{
		Collection: constants.PlaylistCollection,
		Match:      bson.M{"owner": userID},
		Joins:      []query.Join{videoJoin(p)},
		Sort:       []store.SortKey{{Field: "createdAt", Desc: true}},
		Project:    playlistFields,
	})
	if err != nil {
		return nil, err
	}
	for i := range lists {
		lists[i].Videos = query.OrderByIDs(lists[i].VideoIDs, lists[i].Videos, videoSummaryID)
	}
	return lists, nil
}

// GetPlaylist returns the playlist with its owner and the videos p may see
// expanded in playlist order.
func (s *PlaylistService) GetPlaylist(p *auth.Principal, id primitive.ObjectID) (*model.PlaylistDetail, error) {
	playlist, err := query.First[model.PlaylistDetail](s.ctx, db.Engine, query.Spec{
		Collection: constants.PlaylistCollection,
		Match:      bson.M{"_id": id},
		Joins: []query.Join{
			videoJoin(p),
			query.JoinOne(constants.UserCollection, "owner", "owner", "username", "fullName", "avatar"),
		},
		Project: playlistFields,
	})
	if err != nil {
		return nil, errno.FromStore(err, playlistNotFound)
	}
	playlist.Videos = query.OrderByIDs(playlist.VideoIDs, playlist.Videos, videoSummaryID)
	return playlist, nil
}

func (s *PlaylistService) owned(p *auth.Principal, id primitive.ObjectID) (*model.Playlist, error) {
	if _, err := auth.Require(p); err != nil {
		return nil, err
	}
	playlist, err := db.GetPlaylist(s.ctx, id)
	if err != nil {
		return nil, errno.FromStore(err, playlistNotFound)
	}
	if err := auth.Authorize(p, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

// AddVideo appends a video once; adding it again is a Conflict. Someone
// else's unpublished video does not exist for the caller.
func (s *PlaylistService) AddVideo(p *auth.Principal, id, video primitive.ObjectID) (*model.Playlist, error) {
	if _, err := s.owned(p, id); err != nil {
		return nil, err
	}
	ok, err := db.VideoVisible(s.ctx, video, p.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errno.NotFoundErr.WithMessage("Video not found")
	}
	added, err := db.AddVideo(s.ctx, id, video)
	if err != nil {
		return nil, err
	}
	if !added {
		return nil, errno.ConflictErr.WithMessage("Video is already in the playlist")
	}
	return db.GetPlaylist(s.ctx, id)
}

func (s *PlaylistService) RemoveVideo(p *auth.Principal, id, video primitive.ObjectID) (*model.Playlist, error) {
	if _, err := s.owned(p, id); err != nil {
		return nil, err
	}
	removed, err := db.RemoveVideo(s.ctx, id, video)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, errno.NotFoundErr.WithMessage("Video is not in the playlist")
	}
	return db.GetPlaylist(s.ctx, id)
}

func (s *PlaylistService) UpdatePlaylist(p *auth.Principal, id primitive.ObjectID, req *UpdatePlaylistRequest) (*model.Playlist, error) {
	set := bson.M{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errno.ParamErr.WithMessage("Name cannot be empty")
		}
		set["name"] = name
	}
	if req.Description != nil {
		set["description"] = strings.TrimSpace(*req.Description)
	}
	if len(set) == 0 {
		return nil, errno.ParamErr.WithMessage("Nothing to update")
	}
	if _, err := s.owned(p, id); err != nil {
		return nil, err
	}
	return db.UpdatePlaylist(s.ctx, id, set)
}

func (s *PlaylistService) DeletePlaylist(p *auth.Principal, id primitive.ObjectID) error {
	if _, err := s.owned(p, id); err != nil {
		return err
	}
	return db.DeletePlaylist(s.ctx, id)
}
