package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/friendbook/internal/answer"
	"github.com/edgard/friendbook/internal/database"
	"github.com/edgard/friendbook/internal/media"
)

// spyProvider records whether Ask was invoked and delegates to the mock.
type spyProvider struct {
	inner  answer.Provider
	called bool
}

func (s *spyProvider) Ask(ctx context.Context, profession, description, question string) (string, error) {
	s.called = true
	return s.inner.Ask(ctx, profession, description, question)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) (*httptest.Server, *spyProvider) {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	processor, err := media.NewProcessor(t.TempDir(), nil)
	require.NoError(t, err)

	spy := &spyProvider{inner: answer.NewMock(discardLogger())}
	handler := NewHandler(discardLogger(), database.NewStore(db, nil), processor, spy)

	srv := httptest.NewServer(handler.Router())
	t.Cleanup(srv.Close)
	return srv, spy
}

func validJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

type createOpts struct {
	name        string
	profession  string
	description string
	photo       []byte
}

func postCreate(t *testing.T, srv *httptest.Server, opts createOpts) *http.Response {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if opts.name != "" {
		require.NoError(t, mw.WriteField("name", opts.name))
	}
	if opts.profession != "" {
		require.NoError(t, mw.WriteField("profession", opts.profession))
	}
	if opts.description != "" {
		require.NoError(t, mw.WriteField("profession_description", opts.description))
	}
	if opts.photo != nil {
		fw, err := mw.CreateFormFile("photo", "photo.jpg")
		require.NoError(t, err)
		_, err = fw.Write(opts.photo)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/friends", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func listFriends(t *testing.T, srv *httptest.Server) []friendJSON {
	t.Helper()
	resp, err := http.Get(srv.URL + "/friends")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decodeBody[[]friendJSON](t, resp)
}

func TestCreateFriendSuccess(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postCreate(t, srv, createOpts{
		name:        "John Doe",
		profession:  "Software Engineer",
		description: "Develops software",
		photo:       validJPEG(t),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	friend := decodeBody[friendJSON](t, resp)
	assert.Equal(t, int64(1), friend.ID)
	assert.Equal(t, "John Doe", friend.Name)
	assert.Equal(t, "Software Engineer", friend.Profession)
	require.NotNil(t, friend.ProfessionDescription)
	assert.Equal(t, "Develops software", *friend.ProfessionDescription)
	assert.Regexp(t, `^/media/[0-9a-f-]{36}\.jpg$`, friend.PhotoURL)
}

func TestCreateFriendWithoutDescription(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postCreate(t, srv, createOpts{
		name:       "Jane Smith",
		profession: "Designer",
		photo:      validJPEG(t),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	friend := decodeBody[friendJSON](t, resp)
	assert.Nil(t, friend.ProfessionDescription, "absent description must serialize as null")
}

func TestCreateFriendValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		opts createOpts
	}{
		{"missing name", createOpts{profession: "Engineer", photo: validJPEG(t)}},
		{"missing profession", createOpts{name: "John", photo: validJPEG(t)}},
		{"missing photo", createOpts{name: "John", profession: "Engineer"}},
		{"name too long", createOpts{name: strings.Repeat("a", 256), profession: "Engineer", photo: validJPEG(t)}},
		{"profession too long", createOpts{name: "John", profession: strings.Repeat("a", 256), photo: validJPEG(t)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postCreate(t, srv, tt.opts)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		})
	}

	assert.Empty(t, listFriends(t, srv), "failed creates must not leave records")
}

func TestCreateFriendInvalidImage(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postCreate(t, srv, createOpts{
		name:       "John",
		profession: "Engineer",
		photo:      []byte("not an image"),
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Empty(t, listFriends(t, srv))
}

func TestListFriendsPreservesOrder(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, name := range []string{"Alice", "Bob"} {
		resp := postCreate(t, srv, createOpts{name: name, profession: "Artist", photo: validJPEG(t)})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	friends := listFriends(t, srv)
	require.Len(t, friends, 2)
	assert.Equal(t, "Alice", friends[0].Name)
	assert.Equal(t, "Bob", friends[1].Name)
	assert.NotEqual(t, friends[0].PhotoURL, friends[1].PhotoURL)
}

func TestGetFriend(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postCreate(t, srv, createOpts{name: "Alice", profession: "Artist", photo: validJPEG(t)})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[friendJSON](t, resp)

	got, err := http.Get(fmt.Sprintf("%s/friends/%d", srv.URL, created.ID))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, got.StatusCode)
	assert.Equal(t, created, decodeBody[friendJSON](t, got))

	for _, path := range []string{"/friends/999", "/friends/abc"} {
		missing, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		missing.Body.Close()
		assert.Equal(t, http.StatusNotFound, missing.StatusCode, path)
	}
}

func TestDeleteFriend(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postCreate(t, srv, createOpts{name: "Alice", profession: "Artist", photo: validJPEG(t)})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[friendJSON](t, resp)

	doDelete := func(id int64) int {
		req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/friends/%d", srv.URL, id), nil)
		require.NoError(t, err)
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		res.Body.Close()
		return res.StatusCode
	}

	assert.Equal(t, http.StatusNoContent, doDelete(created.ID))

	// Record is gone afterwards and repeated deletes keep reporting not found.
	got, err := http.Get(fmt.Sprintf("%s/friends/%d", srv.URL, created.ID))
	require.NoError(t, err)
	got.Body.Close()
	assert.Equal(t, http.StatusNotFound, got.StatusCode)
	assert.Equal(t, http.StatusNotFound, doDelete(created.ID))
	assert.Equal(t, http.StatusNotFound, doDelete(999))
}

func postAsk(t *testing.T, srv *httptest.Server, id string, question string) *http.Response {
	t.Helper()
	body, err := json.Marshal(map[string]string{"question": question})
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/friends/"+id+"/ask", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestAskReturnsAnswerWithProfessionAndQuestion(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postCreate(t, srv, createOpts{name: "John Doe", profession: "Software Engineer", photo: validJPEG(t)})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	askResp := postAsk(t, srv, "1", "What are the main challenges?")
	require.Equal(t, http.StatusOK, askResp.StatusCode)

	body := decodeBody[map[string]string](t, askResp)
	assert.Contains(t, body["answer"], "Software Engineer")
	assert.Contains(t, body["answer"], "What are the main challenges?")
}

func TestAskValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postCreate(t, srv, createOpts{name: "John", profession: "Engineer", photo: validJPEG(t)})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	for name, question := range map[string]string{
		"empty":    "",
		"too long": strings.Repeat("q", 501),
	} {
		t.Run(name, func(t *testing.T) {
			askResp := postAsk(t, srv, "1", question)
			askResp.Body.Close()
			assert.Equal(t, http.StatusUnprocessableEntity, askResp.StatusCode)
		})
	}
}

func TestAskMissingFriendSkipsProvider(t *testing.T) {
	srv, spy := newTestServer(t)

	askResp := postAsk(t, srv, "42", "Anything?")
	askResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, askResp.StatusCode)
	assert.False(t, spy.called, "provider must not run for a missing friend")
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	status := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "healthy", status["status"])
	assert.Equal(t, "ok", status["database"])
	assert.Equal(t, "ok", status["media_dir"])
}

func TestHealthUnhealthyWhenMediaDirMissing(t *testing.T) {
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	mediaDir := filepath.Join(t.TempDir(), "media")
	processor, err := media.NewProcessor(mediaDir, nil)
	require.NoError(t, err)

	handler := NewHandler(discardLogger(), database.NewStore(db, nil), processor, answer.NewMock(discardLogger()))
	srv := httptest.NewServer(handler.Router())
	t.Cleanup(srv.Close)

	require.NoError(t, os.RemoveAll(mediaDir))

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	status := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "unhealthy", status["status"])
	assert.Equal(t, "not found", status["media_dir"])
	assert.Equal(t, "ok", status["database"])
}

func TestServesUploadedPhotos(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postCreate(t, srv, createOpts{name: "Alice", profession: "Artist", photo: validJPEG(t)})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[friendJSON](t, resp)

	photo, err := http.Get(srv.URL + created.PhotoURL)
	require.NoError(t, err)
	defer photo.Body.Close()
	require.Equal(t, http.StatusOK, photo.StatusCode)

	data, err := io.ReadAll(photo.Body)
	require.NoError(t, err)
	_, err = jpeg.Decode(bytes.NewReader(data))
	assert.NoError(t, err, "served file must be a valid JPEG")
}
