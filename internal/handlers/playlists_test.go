package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cliptube/backend/internal/models"
)

const playlistID1 = "7c9a70c1-3df2-4f63-8a3b-1f9f5b2f4e6d"

func addVideoRequest(t *testing.T, handler *PlaylistHandler, actorID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/playlists/add-video/"+playlistID1+"/"+videoID1, nil)
	req.SetPathValue("playlistId", playlistID1)
	req.SetPathValue("videoId", videoID1)
	rec := httptest.NewRecorder()
	handler.AddVideo(rec, withPrincipal(req, actorID, "alice"))
	return rec
}

func TestPlaylistHandlerCreate(t *testing.T) {
	store := newPlaylistStoreStub()
	handler := &PlaylistHandler{Playlists: store, NowFunc: fixedNow}

	body, _ := json.Marshal(map[string]string{"name": "Favorites", "description": "The good ones"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Create(rec, withPrincipal(req, ownerID, "alice"))

	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var resp struct {
		Data playlistResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.Name != "Favorites" || resp.Data.OwnerID != ownerID {
		t.Fatalf("unexpected playlist: %+v", resp.Data)
	}
	if resp.Data.VideoIDs == nil || len(resp.Data.VideoIDs) != 0 {
		t.Fatalf("new playlist must serialize an empty video list, got %v", resp.Data.VideoIDs)
	}
}

func TestPlaylistHandlerCreateRequiresFields(t *testing.T) {
	handler := &PlaylistHandler{Playlists: newPlaylistStoreStub()}

	body, _ := json.Marshal(map[string]string{"name": "  "})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Create(rec, withPrincipal(req, ownerID, "alice"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestPlaylistHandlerAddVideoTwiceConflicts(t *testing.T) {
	store := newPlaylistStoreStub(models.Playlist{ID: playlistID1, OwnerID: ownerID})
	handler := &PlaylistHandler{
		Playlists: store,
		Videos:    newVideoStoreStub(models.Video{ID: videoID1, OwnerID: ownerID}),
	}

	if rec := addVideoRequest(t, handler, ownerID); rec.Code != http.StatusOK {
		t.Fatalf("first add failed: %d %s", rec.Code, rec.Body.String())
	}
	if rec := addVideoRequest(t, handler, ownerID); rec.Code != http.StatusConflict {
		t.Fatalf("second add should conflict: got %d", rec.Code)
	}
	if got := store.playlists[playlistID1].VideoIDs; len(got) != 1 {
		t.Fatalf("expected a single membership row, got %v", got)
	}
}

func TestPlaylistHandlerAddVideoRejectsNonOwner(t *testing.T) {
	handler := &PlaylistHandler{
		Playlists: newPlaylistStoreStub(models.Playlist{ID: playlistID1, OwnerID: ownerID}),
		Videos:    newVideoStoreStub(models.Video{ID: videoID1, OwnerID: ownerID}),
	}

	if rec := addVideoRequest(t, handler, otherID); rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusForbidden)
	}
}

func TestPlaylistHandlerRemoveAbsentVideoSucceeds(t *testing.T) {
	store := newPlaylistStoreStub(models.Playlist{ID: playlistID1, OwnerID: ownerID})
	handler := &PlaylistHandler{Playlists: store, Videos: newVideoStoreStub()}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/playlists/remove-video/"+playlistID1+"/"+videoID1, nil)
	req.SetPathValue("playlistId", playlistID1)
	req.SetPathValue("videoId", videoID1)
	rec := httptest.NewRecorder()
	handler.RemoveVideo(rec, withPrincipal(req, ownerID, "alice"))

	if rec.Code != http.StatusOK {
		t.Fatalf("removing an absent video should be a no-op success, got %d", rec.Code)
	}
}

func TestPlaylistHandlerDeleteRejectsNonOwner(t *testing.T) {
	store := newPlaylistStoreStub(models.Playlist{ID: playlistID1, OwnerID: ownerID})
	handler := &PlaylistHandler{Playlists: store}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/playlists/"+playlistID1, nil)
	req.SetPathValue("playlistId", playlistID1)
	rec := httptest.NewRecorder()
	handler.Delete(rec, withPrincipal(req, otherID, "mallory"))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusForbidden)
	}
	if len(store.deleted) != 0 {
		t.Fatal("forbidden delete must not remove the playlist")
	}
}

func TestPlaylistHandlerGetNotFound(t *testing.T) {
	handler := &PlaylistHandler{Playlists: newPlaylistStoreStub()}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/playlists/"+playlistID1, nil)
	req.SetPathValue("playlistId", playlistID1)
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusNotFound)
	}
}
