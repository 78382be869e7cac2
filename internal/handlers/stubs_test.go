package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
	"github.com/cliptube/backend/internal/repositories"
	"github.com/cliptube/backend/internal/storage"
)

func withPrincipal(r *http.Request, id, username string) *http.Request {
	ctx := auth.WithPrincipal(r.Context(), auth.Principal{ID: id, Username: username})
	return r.WithContext(ctx)
}

func fixedNow() time.Time {
	return time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
}

type videoStoreStub struct {
	videos    map[string]models.Video
	detail    models.VideoDetail
	detailErr error
	listItems []models.VideoListItem
	listTotal int64
	listErr   error

	created    []models.Video
	updated    []models.Video
	deleted    []string
	views      []string
	viewErr    error
	createErr  error
	updateErr  error
	deleteErr  error
	lastFilter repositories.VideoFilter
	lastParams pagination.Params
}

func newVideoStoreStub(videos ...models.Video) *videoStoreStub {
	s := &videoStoreStub{videos: make(map[string]models.Video)}
	for _, v := range videos {
		s.videos[v.ID] = v
	}
	return s
}

func (s *videoStoreStub) Create(_ context.Context, video models.Video) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, video)
	s.videos[video.ID] = video
	return nil
}

func (s *videoStoreStub) FindByID(_ context.Context, id string) (models.Video, error) {
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *videoStoreStub) Update(_ context.Context, video models.Video) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.videos[video.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.updated = append(s.updated, video)
	s.videos[video.ID] = video
	return nil
}

func (s *videoStoreStub) Delete(_ context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	s.deleted = append(s.deleted, id)
	delete(s.videos, id)
	return nil
}

func (s *videoStoreStub) Detail(_ context.Context, id, viewerID string) (models.VideoDetail, error) {
	if s.detailErr != nil {
		return models.VideoDetail{}, s.detailErr
	}
	if _, ok := s.videos[id]; !ok {
		return models.VideoDetail{}, repositories.ErrNotFound
	}
	return s.detail, nil
}

func (s *videoStoreStub) RecordView(_ context.Context, videoID, viewerID string) error {
	if s.viewErr != nil {
		return s.viewErr
	}
	s.views = append(s.views, videoID+":"+viewerID)
	return nil
}

func (s *videoStoreStub) List(_ context.Context, filter repositories.VideoFilter, p pagination.Params) ([]models.VideoListItem, int64, error) {
	s.lastFilter = filter
	s.lastParams = p
	if s.listErr != nil {
		return nil, 0, s.listErr
	}
	return s.listItems, s.listTotal, nil
}

type commentStoreStub struct {
	comments map[string]models.Comment
	list     []models.CommentView
	total    int64

	created   []models.Comment
	deleted   []string
	updatedID string
	updatedTo string
}

func newCommentStoreStub(comments ...models.Comment) *commentStoreStub {
	s := &commentStoreStub{comments: make(map[string]models.Comment)}
	for _, c := range comments {
		s.comments[c.ID] = c
	}
	return s
}

func (s *commentStoreStub) Create(_ context.Context, comment models.Comment) error {
	s.created = append(s.created, comment)
	s.comments[comment.ID] = comment
	return nil
}

func (s *commentStoreStub) FindByID(_ context.Context, id string) (models.Comment, error) {
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

func (s *commentStoreStub) UpdateContent(_ context.Context, id, content string, _ time.Time) error {
	if _, ok := s.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	s.updatedID = id
	s.updatedTo = content
	return nil
}

func (s *commentStoreStub) Delete(_ context.Context, id string) error {
	if _, ok := s.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	s.deleted = append(s.deleted, id)
	delete(s.comments, id)
	return nil
}

func (s *commentStoreStub) ListForVideo(_ context.Context, videoID, viewerID string, p pagination.Params) ([]models.CommentView, int64, error) {
	return s.list, s.total, nil
}

// likeStoreStub implements the real toggle semantics over a set.
type likeStoreStub struct {
	likes map[string]bool
	liked []models.LikedVideo
}

func newLikeStoreStub() *likeStoreStub {
	return &likeStoreStub{likes: make(map[string]bool)}
}

func (s *likeStoreStub) key(target models.LikeTarget, userID string) string {
	return fmt.Sprintf("%s:%s:%s", target.Type, target.ID, userID)
}

func (s *likeStoreStub) Toggle(_ context.Context, target models.LikeTarget, userID string) (bool, error) {
	key := s.key(target, userID)
	if s.likes[key] {
		delete(s.likes, key)
		return false, nil
	}
	s.likes[key] = true
	return true, nil
}

func (s *likeStoreStub) ListLikedVideos(_ context.Context, userID string, p pagination.Params) ([]models.LikedVideo, int64, error) {
	return s.liked, int64(len(s.liked)), nil
}

type subscriptionStoreStub struct {
	subs        map[string]bool
	subscribers []models.SubscriberView
	channels    []models.SubscribedChannel
}

func newSubscriptionStoreStub() *subscriptionStoreStub {
	return &subscriptionStoreStub{subs: make(map[string]bool)}
}

func (s *subscriptionStoreStub) Toggle(_ context.Context, subscriberID, channelID string) (bool, error) {
	key := subscriberID + ":" + channelID
	if s.subs[key] {
		delete(s.subs, key)
		return false, nil
	}
	s.subs[key] = true
	return true, nil
}

func (s *subscriptionStoreStub) ListSubscribers(_ context.Context, channelID string, p pagination.Params) ([]models.SubscriberView, int64, error) {
	return s.subscribers, int64(len(s.subscribers)), nil
}

func (s *subscriptionStoreStub) ListSubscribedChannels(_ context.Context, subscriberID string, p pagination.Params) ([]models.SubscribedChannel, int64, error) {
	return s.channels, int64(len(s.channels)), nil
}

type playlistStoreStub struct {
	playlists map[string]models.Playlist
	details   map[string]models.PlaylistDetail

	addErr  error
	removed []string
	deleted []string
}

func newPlaylistStoreStub(playlists ...models.Playlist) *playlistStoreStub {
	s := &playlistStoreStub{
		playlists: make(map[string]models.Playlist),
		details:   make(map[string]models.PlaylistDetail),
	}
	for _, p := range playlists {
		s.playlists[p.ID] = p
	}
	return s
}

func (s *playlistStoreStub) Create(_ context.Context, playlist models.Playlist) error {
	s.playlists[playlist.ID] = playlist
	return nil
}

func (s *playlistStoreStub) FindByID(_ context.Context, id string) (models.Playlist, error) {
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	return playlist, nil
}

func (s *playlistStoreStub) Delete(_ context.Context, id string) error {
	if _, ok := s.playlists[id]; !ok {
		return repositories.ErrNotFound
	}
	s.deleted = append(s.deleted, id)
	delete(s.playlists, id)
	return nil
}

func (s *playlistStoreStub) AddVideo(_ context.Context, playlistID, videoID string) error {
	if s.addErr != nil {
		return s.addErr
	}
	playlist, ok := s.playlists[playlistID]
	if !ok {
		return repositories.ErrNotFound
	}
	for _, id := range playlist.VideoIDs {
		if id == videoID {
			return repositories.ErrConflict
		}
	}
	playlist.VideoIDs = append(playlist.VideoIDs, videoID)
	s.playlists[playlistID] = playlist
	return nil
}

func (s *playlistStoreStub) RemoveVideo(_ context.Context, playlistID, videoID string) error {
	playlist, ok := s.playlists[playlistID]
	if !ok {
		return repositories.ErrNotFound
	}
	kept := playlist.VideoIDs[:0]
	for _, id := range playlist.VideoIDs {
		if id != videoID {
			kept = append(kept, id)
		}
	}
	playlist.VideoIDs = kept
	s.playlists[playlistID] = playlist
	s.removed = append(s.removed, playlistID+":"+videoID)
	return nil
}

func (s *playlistStoreStub) Detail(_ context.Context, id string) (models.PlaylistDetail, error) {
	detail, ok := s.details[id]
	if !ok {
		return models.PlaylistDetail{}, repositories.ErrNotFound
	}
	return detail, nil
}

func (s *playlistStoreStub) ListForOwner(_ context.Context, ownerID string) ([]models.PlaylistDetail, error) {
	var out []models.PlaylistDetail
	for _, d := range s.details {
		out = append(out, d)
	}
	return out, nil
}

type userStoreStub struct {
	users map[string]models.User

	history      []models.WatchHistoryItem
	historyTotal int64
	profile      models.ChannelProfile
	profileErr   error

	created        []models.User
	accountUpdated bool
	passwordHash   string
	avatarUpdated  models.Asset
	coverUpdated   models.Asset
}

func newUserStoreStub(users ...models.User) *userStoreStub {
	s := &userStoreStub{users: make(map[string]models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *userStoreStub) Create(_ context.Context, user models.User) error {
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	s.created = append(s.created, user)
	s.users[user.ID] = user
	return nil
}

func (s *userStoreStub) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *userStoreStub) FindByLogin(_ context.Context, login string) (models.User, error) {
	for _, user := range s.users {
		if user.Username == login || user.Email == login {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *userStoreStub) UpdateAccount(_ context.Context, id, fullName, email string, updatedAt time.Time) error {
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.FullName = fullName
	user.Email = email
	user.UpdatedAt = updatedAt
	s.users[id] = user
	s.accountUpdated = true
	return nil
}

func (s *userStoreStub) UpdatePassword(_ context.Context, id, passwordHash string, updatedAt time.Time) error {
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Password = passwordHash
	s.users[id] = user
	s.passwordHash = passwordHash
	return nil
}

func (s *userStoreStub) UpdateAvatar(_ context.Context, id string, avatar models.Asset, updatedAt time.Time) error {
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Avatar = avatar
	s.users[id] = user
	s.avatarUpdated = avatar
	return nil
}

func (s *userStoreStub) UpdateCover(_ context.Context, id string, cover models.Asset, updatedAt time.Time) error {
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.CoverImage = cover
	s.users[id] = user
	s.coverUpdated = cover
	return nil
}

func (s *userStoreStub) ChannelProfile(_ context.Context, username, viewerID string) (models.ChannelProfile, error) {
	if s.profileErr != nil {
		return models.ChannelProfile{}, s.profileErr
	}
	return s.profile, nil
}

func (s *userStoreStub) WatchHistory(_ context.Context, userID string, p pagination.Params) ([]models.WatchHistoryItem, int64, error) {
	return s.history, s.historyTotal, nil
}

type sessionManagerStub struct {
	tokens     models.SessionTokens
	issueErr   error
	refreshed  models.User
	refreshErr error
	revoked    []string
}

func (s *sessionManagerStub) Issue(_ context.Context, user models.User) (models.SessionTokens, error) {
	if s.issueErr != nil {
		return models.SessionTokens{}, s.issueErr
	}
	return s.tokens, nil
}

func (s *sessionManagerStub) Refresh(_ context.Context, token string) (models.User, models.SessionTokens, error) {
	if s.refreshErr != nil {
		return models.User{}, models.SessionTokens{}, s.refreshErr
	}
	return s.refreshed, s.tokens, nil
}

func (s *sessionManagerStub) Revoke(_ context.Context, userID string) error {
	s.revoked = append(s.revoked, userID)
	return nil
}

// assetStoreStub records store/remove calls and hands back deterministic
// assets.
type assetStoreStub struct {
	stored    []storage.Kind
	removed   []string
	storeErr  error
	removeErr error
	counter   int
}

func (s *assetStoreStub) Store(_ context.Context, localPath string, kind storage.Kind) (models.Asset, error) {
	if s.storeErr != nil {
		return models.Asset{}, s.storeErr
	}
	s.counter++
	s.stored = append(s.stored, kind)
	return models.Asset{
		URL:      fmt.Sprintf("https://assets.example/%s/%d", kind, s.counter),
		PublicID: fmt.Sprintf("%s-%d", kind, s.counter),
	}, nil
}

func (s *assetStoreStub) Remove(_ context.Context, publicID string, kind storage.Kind) (bool, error) {
	if s.removeErr != nil {
		return false, s.removeErr
	}
	s.removed = append(s.removed, publicID)
	return true, nil
}
