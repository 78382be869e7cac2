package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cliptube/backend/internal/models"
)

const commentID1 = "5e1b7c2d-9f2a-4cde-8f3b-0a1b2c3d4e5f"

func TestCommentHandlerCreate(t *testing.T) {
	comments := newCommentStoreStub()
	handler := &CommentHandler{
		Comments: comments,
		Videos:   newVideoStoreStub(models.Video{ID: videoID1, OwnerID: ownerID}),
		NowFunc:  fixedNow,
	}

	body, _ := json.Marshal(map[string]string{"content": "nice one"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments/video/"+videoID1, bytes.NewReader(body))
	req.SetPathValue("videoId", videoID1)
	rec := httptest.NewRecorder()
	handler.Create(rec, withPrincipal(req, otherID, "bob"))

	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if len(comments.created) != 1 {
		t.Fatalf("expected one created comment, got %d", len(comments.created))
	}
	created := comments.created[0]
	if created.VideoID != videoID1 || created.OwnerID != otherID || created.Content != "nice one" {
		t.Fatalf("unexpected comment: %+v", created)
	}
}

func TestCommentHandlerCreateMissingVideo(t *testing.T) {
	handler := &CommentHandler{Comments: newCommentStoreStub(), Videos: newVideoStoreStub()}

	body, _ := json.Marshal(map[string]string{"content": "hello"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments/video/"+videoID1, bytes.NewReader(body))
	req.SetPathValue("videoId", videoID1)
	rec := httptest.NewRecorder()
	handler.Create(rec, withPrincipal(req, otherID, "bob"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCommentHandlerCreateRejectsBlankContent(t *testing.T) {
	handler := &CommentHandler{
		Comments: newCommentStoreStub(),
		Videos:   newVideoStoreStub(models.Video{ID: videoID1}),
	}

	body, _ := json.Marshal(map[string]string{"content": "   "})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments/video/"+videoID1, bytes.NewReader(body))
	req.SetPathValue("videoId", videoID1)
	rec := httptest.NewRecorder()
	handler.Create(rec, withPrincipal(req, otherID, "bob"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCommentHandlerUpdateRejectsNonAuthor(t *testing.T) {
	comments := newCommentStoreStub(models.Comment{ID: commentID1, VideoID: videoID1, OwnerID: ownerID, Content: "original"})
	handler := &CommentHandler{Comments: comments, Videos: newVideoStoreStub()}

	body, _ := json.Marshal(map[string]string{"content": "hijacked"})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/comments/comment/"+commentID1, bytes.NewReader(body))
	req.SetPathValue("commentId", commentID1)
	rec := httptest.NewRecorder()
	handler.Update(rec, withPrincipal(req, otherID, "mallory"))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusForbidden)
	}
	if comments.updatedID != "" {
		t.Fatal("forbidden update must not write")
	}
}

func TestCommentHandlerDelete(t *testing.T) {
	comments := newCommentStoreStub(models.Comment{ID: commentID1, VideoID: videoID1, OwnerID: ownerID})
	handler := &CommentHandler{Comments: comments, Videos: newVideoStoreStub()}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/comments/comment/"+commentID1, nil)
	req.SetPathValue("commentId", commentID1)
	rec := httptest.NewRecorder()
	handler.Delete(rec, withPrincipal(req, ownerID, "alice"))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusOK)
	}
	if len(comments.deleted) != 1 || comments.deleted[0] != commentID1 {
		t.Fatalf("unexpected deletions: %v", comments.deleted)
	}
}

func TestCommentHandlerListMissingVideo(t *testing.T) {
	handler := &CommentHandler{Comments: newCommentStoreStub(), Videos: newVideoStoreStub()}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/comments/video/"+videoID1, nil)
	req.SetPathValue("videoId", videoID1)
	rec := httptest.NewRecorder()
	handler.ListForVideo(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusNotFound)
	}
}
