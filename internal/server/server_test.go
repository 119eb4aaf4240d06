package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/marksrv/marksrv/internal/events"
	"github.com/marksrv/marksrv/internal/exporter"
	"github.com/marksrv/marksrv/internal/groups"
	"github.com/marksrv/marksrv/internal/importer"
	"github.com/marksrv/marksrv/internal/server"
	"github.com/marksrv/marksrv/internal/service"
	"github.com/marksrv/marksrv/internal/storage"
	"github.com/marksrv/marksrv/internal/tree"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "marksrv.db"))
	assert.NilError(t, err)
	t.Cleanup(func() { s.Close() })

	mapper := tree.New(s)
	dir := groups.StaticDirectory{"team": {"alice", "bob"}}
	im := importer.New(s, mapper, 0)
	svc := service.New(s, mapper, dir, events.LogDispatcher{}, im)

	ts := httptest.NewServer(server.New(svc, exporter.New(s, mapper)))
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path, user string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		assert.NilError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	assert.NilError(t, err)
	if user != "" {
		req.Header.Set("X-User", user)
	}

	resp, err := ts.Client().Do(req)
	assert.NilError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
	}
	return resp, decoded
}

func TestServer_FolderLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp, root := do(t, ts, http.MethodPost, "/api/root", "alice", nil)
	assert.Equal(t, resp.StatusCode, http.StatusCreated)
	rootID := root["id"].(string)

	resp, folder := do(t, ts, http.MethodPost, "/api/folders", "alice", map[string]any{
		"title":          "Projects",
		"parentFolderId": rootID,
	})
	assert.Equal(t, resp.StatusCode, http.StatusCreated)
	assert.Equal(t, folder["title"], "Projects")
	folderID := folder["id"].(string)

	resp, got := do(t, ts, http.MethodGet, "/api/folders/"+folderID, "alice", nil)
	assert.Equal(t, resp.StatusCode, http.StatusOK)
	assert.Equal(t, got["title"], "Projects")
	assert.Equal(t, got["mounted"], false)

	resp, _ = do(t, ts, http.MethodDelete, "/api/folders/"+folderID, "alice", nil)
	assert.Equal(t, resp.StatusCode, http.StatusNoContent)

	resp, _ = do(t, ts, http.MethodGet, "/api/folders/"+folderID, "alice", nil)
	assert.Equal(t, resp.StatusCode, http.StatusNotFound)
}

func TestServer_ShareVisibleToRecipient(t *testing.T) {
	ts := newTestServer(t)

	_, aliceRoot := do(t, ts, http.MethodPost, "/api/root", "alice", nil)
	do(t, ts, http.MethodPost, "/api/root", "bob", nil)

	_, folder := do(t, ts, http.MethodPost, "/api/folders", "alice", map[string]any{
		"title":          "Projects",
		"parentFolderId": aliceRoot["id"],
	})
	folderID := folder["id"].(string)

	resp, created := do(t, ts, http.MethodPost, "/api/folders/"+folderID+"/shares", "alice", map[string]any{
		"participant": "bob",
		"type":        "user",
	})
	assert.Equal(t, resp.StatusCode, http.StatusCreated)
	assert.Assert(t, created["share"] != nil)

	// Bob sees his mount.
	resp, view := do(t, ts, http.MethodGet, "/api/folders/"+folderID, "bob", nil)
	assert.Equal(t, resp.StatusCode, http.StatusOK)
	assert.Equal(t, view["mounted"], true)

	// Self-share is a bad request.
	resp, _ = do(t, ts, http.MethodPost, "/api/folders/"+folderID+"/shares", "alice", map[string]any{
		"participant": "alice",
		"type":        "user",
	})
	assert.Equal(t, resp.StatusCode, http.StatusBadRequest)
}

func TestServer_ReorderChildren(t *testing.T) {
	ts := newTestServer(t)

	_, root := do(t, ts, http.MethodPost, "/api/root", "alice", nil)
	rootID := root["id"].(string)

	var ids []string
	for _, title := range []string{"A", "B", "C"} {
		_, folder := do(t, ts, http.MethodPost, "/api/folders", "alice", map[string]any{
			"title":          title,
			"parentFolderId": rootID,
		})
		ids = append(ids, folder["id"].(string))
	}

	resp, _ := do(t, ts, http.MethodPatch, "/api/folders/"+rootID+"/children", "alice", map[string]any{
		"type":   "folder",
		"itemId": ids[2],
		"index":  0,
	})
	assert.Equal(t, resp.StatusCode, http.StatusNoContent)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/folders/"+rootID+"/children", nil)
	assert.NilError(t, err)
	req.Header.Set("X-User", "alice")
	listResp, err := ts.Client().Do(req)
	assert.NilError(t, err)
	defer listResp.Body.Close()
	var children []map[string]any
	assert.NilError(t, json.NewDecoder(listResp.Body).Decode(&children))
	assert.Equal(t, len(children), 3)
	assert.Equal(t, children[0]["itemId"], ids[2])
	assert.Equal(t, children[1]["itemId"], ids[0])
	assert.Equal(t, children[2]["itemId"], ids[1])

	// Reordering something that is not a child of the folder is a bad
	// request.
	resp, _ = do(t, ts, http.MethodPatch, "/api/folders/"+ids[0]+"/children", "alice", map[string]any{
		"type":   "folder",
		"itemId": ids[1],
		"index":  0,
	})
	assert.Equal(t, resp.StatusCode, http.StatusBadRequest)
}

func TestServer_PublicToken(t *testing.T) {
	ts := newTestServer(t)

	_, root := do(t, ts, http.MethodPost, "/api/root", "alice", nil)
	_, folder := do(t, ts, http.MethodPost, "/api/folders", "alice", map[string]any{
		"title":          "Public stuff",
		"parentFolderId": root["id"],
	})
	folderID := folder["id"].(string)

	resp, token := do(t, ts, http.MethodPost, "/api/folders/"+folderID+"/publictoken", "alice", nil)
	assert.Equal(t, resp.StatusCode, http.StatusOK)
	resp, again := do(t, ts, http.MethodPost, "/api/folders/"+folderID+"/publictoken", "alice", nil)
	assert.Equal(t, resp.StatusCode, http.StatusOK)
	assert.Equal(t, token["token"], again["token"])

	// Anonymous read through the token.
	resp, public := do(t, ts, http.MethodGet, "/api/public/"+token["token"].(string), "", nil)
	assert.Equal(t, resp.StatusCode, http.StatusOK)
	folderBody := public["folder"].(map[string]any)
	assert.Equal(t, folderBody["id"], folderID)

	resp, _ = do(t, ts, http.MethodDelete, "/api/folders/"+folderID+"/publictoken", "alice", nil)
	assert.Equal(t, resp.StatusCode, http.StatusNoContent)
	resp, _ = do(t, ts, http.MethodGet, "/api/public/"+token["token"].(string), "", nil)
	assert.Equal(t, resp.StatusCode, http.StatusNotFound)
}

func TestServer_ImportExport(t *testing.T) {
	ts := newTestServer(t)

	_, root := do(t, ts, http.MethodPost, "/api/root", "alice", nil)
	rootID := root["id"].(string)

	doc := `<DL><p><DT><H3>Dev</H3><DL><p><DT><A HREF="https://go.dev">Go</A></DL><p></DL><p>`
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/folders/"+rootID+"/import", strings.NewReader(doc))
	assert.NilError(t, err)
	req.Header.Set("X-User", "alice")
	resp, err := ts.Client().Do(req)
	assert.NilError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, resp.StatusCode, http.StatusOK)

	var result map[string]any
	assert.NilError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, result["importedFolders"], float64(1))
	assert.Equal(t, result["importedBookmarks"], float64(1))

	req, err = http.NewRequest(http.MethodGet, ts.URL+"/api/export", nil)
	assert.NilError(t, err)
	req.Header.Set("X-User", "alice")
	resp, err = ts.Client().Do(req)
	assert.NilError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, resp.StatusCode, http.StatusOK)

	doc2, err := io.ReadAll(resp.Body)
	assert.NilError(t, err)
	assert.Assert(t, strings.Contains(string(doc2), "<H3>Dev</H3>"))
}

func TestServer_AnonymousCannotImport(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := do(t, ts, http.MethodPost, "/api/folders/whatever/import", "", nil)
	assert.Equal(t, resp.StatusCode, http.StatusForbidden)
}
