package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"VidTube.com/cmd/api/bootstrap"
	"VidTube.com/pkg/auth"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/oss"
	"VidTube.com/pkg/store"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type envelope struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type api struct {
	t *testing.T
	h *server.Hertz
}

func newAPI(t *testing.T) *api {
	t.Helper()
	tokens := auth.NewTokenResolver("router-secret", "vidtube")
	require.NoError(t, bootstrap.Init(context.Background(), bootstrap.Deps{
		Store:     store.NewMemoryStore(),
		Media:     oss.NewMemoryMedia(),
		Tokens:    tokens,
		AccessTTL: time.Hour,
	}))
	h := server.Default()
	Register(h, tokens, nil)
	return &api{t: t, h: h}
}

func (a *api) do(method, url, token string, body interface{}) (int, envelope) {
	a.t.Helper()
	var headers []ut.Header
	if token != "" {
		headers = append(headers, ut.Header{Key: "Authorization", Value: "Bearer " + token})
	}
	var reqBody *ut.Body
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reqBody = &ut.Body{Body: bytes.NewReader(raw), Len: len(raw)}
		headers = append(headers, ut.Header{Key: "Content-Type", Value: "application/json"})
	}
	resp := ut.PerformRequest(a.h.Engine, method, url, reqBody, headers...).Result()
	var env envelope
	require.NoError(a.t, json.Unmarshal(resp.Body(), &env), string(resp.Body()))
	return resp.StatusCode(), env
}

func (a *api) multipart(method, url, token, boundary, body string) (int, envelope) {
	a.t.Helper()
	headers := []ut.Header{{Key: "Content-Type", Value: "multipart/form-data; boundary=" + boundary}}
	if token != "" {
		headers = append(headers, ut.Header{Key: "Authorization", Value: "Bearer " + token})
	}
	resp := ut.PerformRequest(a.h.Engine, method, url, &ut.Body{Body: bytes.NewBufferString(body), Len: len(body)}, headers...).Result()
	var env envelope
	require.NoError(a.t, json.Unmarshal(resp.Body(), &env), string(resp.Body()))
	return resp.StatusCode(), env
}

func (a *api) register(username string) (primitive.ObjectID, string) {
	a.t.Helper()
	status, env := a.do(consts.MethodPost, "/api/v1/users/register", "", map[string]string{
		"username": username, "email": username + "@vidtube.io", "fullName": username, "password": "pw-" + username,
	})
	require.Equal(a.t, consts.StatusOK, status, env.Message)
	var user struct {
		ID primitive.ObjectID `json:"_id"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &user))

	status, env = a.do(consts.MethodPost, "/api/v1/users/login", "", map[string]string{"username": username, "password": "pw-" + username})
	require.Equal(a.t, consts.StatusOK, status, env.Message)
	var login struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(a.t, login.AccessToken)
	return user.ID, login.AccessToken
}

func TestHealthcheck(t *testing.T) {
	a := newAPI(t)
	status, env := a.do(consts.MethodGet, "/api/v1/healthcheck", "", nil)
	assert.Equal(t, consts.StatusOK, status)
	assert.Equal(t, int64(errno.SuccessCode), env.Code)
}

func TestSubscriptionFlow(t *testing.T) {
	a := newAPI(t)
	aliceID, aliceToken := a.register("alice")
	bobID, _ := a.register("bob")

	status, env := a.do(consts.MethodPost, fmt.Sprintf("/api/v1/subscriptions/c/%s", bobID.Hex()), aliceToken, nil)
	require.Equal(t, consts.StatusOK, status, env.Message)
	assert.JSONEq(t, `{"subscribed":true}`, string(env.Data))

	status, env = a.do(consts.MethodGet, "/api/v1/users/c/bob", aliceToken, nil)
	require.Equal(t, consts.StatusOK, status, env.Message)
	var profile struct {
		SubscribersCount int64 `json:"subscribersCount"`
		IsSubscribed     bool  `json:"isSubscribed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, int64(1), profile.SubscribersCount)
	assert.True(t, profile.IsSubscribed)

	_, env = a.do(consts.MethodGet, "/api/v1/users/c/bob", "", nil)
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.False(t, profile.IsSubscribed)

	status, env = a.do(consts.MethodPost, fmt.Sprintf("/api/v1/subscriptions/c/%s", aliceID.Hex()), aliceToken, nil)
	assert.Equal(t, consts.StatusBadRequest, status)
	assert.Equal(t, int64(errno.InvalidOperationCode), env.Code)
}

func TestErrorKindsMapToStatus(t *testing.T) {
	a := newAPI(t)
	_, token := a.register("alice")
	target := primitive.NewObjectID().Hex()

	status, env := a.do(consts.MethodPost, "/api/v1/likes/toggle/v/"+target, "", nil)
	assert.Equal(t, consts.StatusUnauthorized, status)
	assert.Equal(t, int64(errno.UnauthenticatedCode), env.Code)

	status, env = a.do(consts.MethodPost, "/api/v1/likes/toggle/v/"+target, "garbage", nil)
	assert.Equal(t, consts.StatusUnauthorized, status)
	assert.Equal(t, int64(errno.UnauthenticatedCode), env.Code)

	status, env = a.do(consts.MethodPost, "/api/v1/likes/toggle/x/"+target, token, nil)
	assert.Equal(t, consts.StatusBadRequest, status)
	assert.Equal(t, int64(errno.ParamErrCode), env.Code)

	status, _ = a.do(consts.MethodPost, "/api/v1/likes/toggle/v/not-an-id", token, nil)
	assert.Equal(t, consts.StatusBadRequest, status)

	status, env = a.do(consts.MethodPost, "/api/v1/likes/toggle/v/"+target, token, nil)
	assert.Equal(t, consts.StatusNotFound, status)
	assert.Equal(t, int64(errno.NotFoundCode), env.Code)

	status, _ = a.do(consts.MethodGet, "/api/v1/videos?page=0&limit=1000", "", nil)
	assert.Equal(t, consts.StatusBadRequest, status)

	status, _ = a.do(consts.MethodPost, "/api/v1/videos", token, nil)
	assert.Equal(t, consts.StatusBadRequest, status)
}

func TestTweetAndLikeFlow(t *testing.T) {
	a := newAPI(t)
	aliceID, alice := a.register("alice")
	_, bob := a.register("bob")

	status, env := a.do(consts.MethodPost, "/api/v1/tweets", alice, map[string]string{"content": "hello"})
	require.Equal(t, consts.StatusOK, status, env.Message)
	var tweet struct {
		ID primitive.ObjectID `json:"_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tweet))

	for _, token := range []string{alice, bob} {
		status, env = a.do(consts.MethodPost, "/api/v1/likes/toggle/t/"+tweet.ID.Hex(), token, nil)
		require.Equal(t, consts.StatusOK, status, env.Message)
	}
	_, env = a.do(consts.MethodGet, "/api/v1/likes/count/Tweet/"+tweet.ID.Hex(), "", nil)
	assert.JSONEq(t, `{"likeCount":2}`, string(env.Data))

	status, env = a.do(consts.MethodPatch, "/api/v1/tweets/"+tweet.ID.Hex(), bob, map[string]string{"content": "mine now"})
	assert.Equal(t, consts.StatusForbidden, status)
	assert.Equal(t, int64(errno.ForbiddenCode), env.Code)

	_, env = a.do(consts.MethodGet, "/api/v1/tweets/user/"+aliceID.Hex(), "", nil)
	var page struct {
		Docs []struct {
			Content string `json:"content"`
		} `json:"docs"`
		TotalDocs int64 `json:"totalDocs"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Docs, 1)
	assert.Equal(t, "hello", page.Docs[0].Content)
}

func TestMalformedUploadIsRejected(t *testing.T) {
	a := newAPI(t)
	_, token := a.register("alice")

	status, env := a.multipart(consts.MethodPost, "/api/v1/videos", token, "xyz", "this is not a multipart body")
	assert.Equal(t, consts.StatusBadRequest, status)
	assert.Equal(t, int64(errno.ParamErrCode), env.Code)
	assert.Equal(t, "Malformed multipart form", env.Message)

	// a well formed form without the files reaches the service and fails its own check
	form := "--xyz\r\nContent-Disposition: form-data; name=\"title\"\r\n\r\nclip\r\n--xyz--\r\n"
	status, env = a.multipart(consts.MethodPost, "/api/v1/videos", token, "xyz", form)
	assert.Equal(t, consts.StatusBadRequest, status)
	assert.NotEqual(t, "Malformed multipart form", env.Message)
}
