package service

import (
	"context"
	"errors"
	"strings"

	"VidTube.com/cmd/model"
	"VidTube.com/cmd/user/dal/db"
	"VidTube.com/pkg/auth"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/oss"
	"VidTube.com/pkg/store"
	"VidTube.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

const userNotFound = "User not found"

var errUserExists = errno.ConflictErr.WithMessage("User with email or username already exists")

type UserService struct {
	ctx context.Context
}

func NewUserService(ctx context.Context) *UserService {
	return &UserService{ctx: ctx}
}

type RegisterRequest struct {
	Username       string
	Email          string
	FullName       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

type LoginResult struct {
	User        *model.User `json:"user"`
	AccessToken string      `json:"accessToken"`
}

func (r *RegisterRequest) normalize() error {
	r.Username = strings.ToLower(strings.TrimSpace(r.Username))
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FullName = strings.TrimSpace(r.FullName)
	if r.Username == "" || r.Email == "" || r.FullName == "" || strings.TrimSpace(r.Password) == "" {
		return errno.ParamErr.WithMessage("All fields are required")
	}
	if !utils.IsValidUsername(r.Username) {
		return errno.ParamErr.WithMessage("Invalid username")
	}
	if !utils.IsValidEmail(r.Email) {
		return errno.ParamErr.WithMessage("Invalid email")
	}
	return nil
}

// Register creates an account. Avatar and cover image are optional; uploaded
// assets are removed again when the account cannot be created.
func (s *UserService) Register(req *RegisterRequest) (*model.User, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}
	exists, err := db.CheckUserExists(s.ctx, req.Username, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errUserExists
	}
	hashed, err := utils.Crypt(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{Username: req.Username, Email: req.Email, FullName: req.FullName, Password: hashed}
	var uploaded []*oss.Asset
	if req.AvatarPath != "" {
		avatar, err := media.Upload(s.ctx, req.AvatarPath, constants.MediaImage)
		if err != nil {
			return nil, err
		}
		uploaded = append(uploaded, avatar)
		user.Avatar, user.AvatarPublicID = avatar.URL, avatar.PublicID
	}
	if req.CoverImagePath != "" {
		cover, err := media.Upload(s.ctx, req.CoverImagePath, constants.MediaImage)
		if err != nil {
			s.rollback(uploaded)
			return nil, err
		}
		uploaded = append(uploaded, cover)
		user.CoverImage, user.CoverImagePublicID = cover.URL, cover.PublicID
	}

	if err := db.CreateUser(s.ctx, user); err != nil {
		s.rollback(uploaded)
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, errUserExists
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) rollback(assets []*oss.Asset) {
	for _, a := range assets {
		if err := media.Delete(s.ctx, a.PublicID, constants.MediaImage); err != nil {
			hlog.CtxErrorf(s.ctx, "rollback image %s failed: %v", a.PublicID, err)
		}
	}
}

// Login checks the credential against username or email and issues an access token.
func (s *UserService) Login(login, password string) (*LoginResult, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" || password == "" {
		return nil, errno.ParamErr.WithMessage("Username or email and password are required")
	}
	user, err := db.GetUserByLogin(s.ctx, login)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !utils.VerifyPassword(password, user.Password)) {
		return nil, errno.UnauthenticatedErr.WithMessage("Invalid user credentials")
	}
	if err != nil {
		return nil, err
	}
	token, err := tokens.Sign(user.ID, user.Username, accessTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, AccessToken: token}, nil
}

// CurrentUser returns the principal's own account.
func (s *UserService) CurrentUser(p *auth.Principal) (*model.User, error) {
	id, err := auth.Require(p)
	if err != nil {
		return nil, err
	}
	user, err := db.GetUser(s.ctx, id)
	if err != nil {
		return nil, errno.FromStore(err, userNotFound)
	}
	return user, nil
}

// DeleteAccount removes the principal's account with its likes and
// subscriptions. An account that still owns content is a Conflict.
func (s *UserService) DeleteAccount(p *auth.Principal) error {
	user, err := s.CurrentUser(p)
	if err != nil {
		return err
	}
	owns, err := db.OwnsContent(s.ctx, user.ID)
	if err != nil {
		return err
	}
	if owns {
		return errno.ConflictErr.WithMessage("Delete your videos, playlists, tweets and comments first")
	}
	if err := db.DeleteUser(s.ctx, user.ID); err != nil {
		return err
	}
	for _, publicID := range []string{user.AvatarPublicID, user.CoverImagePublicID} {
		if publicID == "" {
			continue
		}
		if err := media.Delete(s.ctx, publicID, constants.MediaImage); err != nil {
			hlog.CtxErrorf(s.ctx, "delete image %s of user %s failed: %v", publicID, user.ID.Hex(), err)
		}
	}
	return nil
}
