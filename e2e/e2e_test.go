package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/RussGuo/Chrismas/internal/capture"
	"github.com/RussGuo/Chrismas/internal/detector"
	"github.com/RussGuo/Chrismas/internal/scene"
	"github.com/RussGuo/Chrismas/internal/server"
	"github.com/RussGuo/Chrismas/internal/session"
	"github.com/RussGuo/Chrismas/internal/store"
)

func TestE2E_CardLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	mediaDir := filepath.Join(tmpDir, "media")
	srv := server.New(server.Config{
		MediaDir: mediaDir,
		Store:    s,
		Layout:   scene.NewLayout(32, 7),
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()
	var cardID string

	t.Run("CreateCard", func(t *testing.T) {
		resp, err := client.Post(
			ts.URL+"/api/cards",
			"application/json",
			strings.NewReader(`{"kind": "photo", "title": "Tree lighting", "author": "Russ"}`),
		)
		if err != nil {
			t.Fatalf("create card error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}

		var created struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
			t.Fatalf("decode error = %v", err)
		}
		if created.ID == "" {
			t.Fatal("expected a card ID")
		}
		cardID = created.ID
	})

	t.Run("UploadAndFetchMedia", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Disposition": {`form-data; name="file"; filename="lighting.jpg"`},
			"Content-Type":        {"image/jpeg"},
		})
		if err != nil {
			t.Fatalf("create part error = %v", err)
		}
		part.Write([]byte("jpeg payload"))
		mw.Close()

		resp, err := client.Post(
			ts.URL+"/api/cards/"+cardID+"/media",
			mw.FormDataContentType(),
			&buf,
		)
		if err != nil {
			t.Fatalf("upload error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var updated struct {
			MediaURL string `json:"media_url"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
			t.Fatalf("decode error = %v", err)
		}
		if updated.MediaURL == "" {
			t.Fatal("expected a media URL")
		}

		fetch, err := client.Get(ts.URL + updated.MediaURL)
		if err != nil {
			t.Fatalf("fetch media error = %v", err)
		}
		defer fetch.Body.Close()

		if fetch.StatusCode != http.StatusOK {
			t.Fatalf("media fetch status = %d", fetch.StatusCode)
		}
		body, _ := io.ReadAll(fetch.Body)
		if string(body) != "jpeg payload" {
			t.Errorf("media content = %q", body)
		}
	})

	t.Run("LayoutIncludesCardAnchor", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/layout")
		if err != nil {
			t.Fatalf("layout error = %v", err)
		}
		defer resp.Body.Close()

		var layout struct {
			Cards []scene.CardAnchor `json:"cards"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&layout); err != nil {
			t.Fatalf("decode error = %v", err)
		}
		if len(layout.Cards) != 1 {
			t.Errorf("card anchors = %d, want 1", len(layout.Cards))
		}
	})

	t.Run("DeleteCard", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/cards/"+cardID, nil)
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("delete error = %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
		}
	})
}

func TestE2E_SceneBroadcast(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	sess := session.New(session.Config{})
	sess.SetDetector(detector.NewMockDetector())
	sess.SetCamera(capture.NewMockCamera(nil, false))

	hub := server.NewSceneHub()
	sess.OnFrame(hub.Publish)

	srv := server.New(server.Config{
		Session: sess,
		Hub:     hub,
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	if err := sess.Start(); err != nil {
		t.Fatalf("session start error = %v", err)
	}
	defer sess.Stop()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/scene"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial scene socket error = %v", err)
	}
	defer conn.Close()

	// With no hand in front of the camera the tree stays formed and the
	// orbit advances autonomously; two frames are enough to see it move.
	readFrame := func() scene.Frame {
		conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read frame error = %v", err)
		}
		var f scene.Frame
		if err := json.Unmarshal(data, &f); err != nil {
			t.Fatalf("decode frame error = %v", err)
		}
		return f
	}

	first := readFrame()
	second := readFrame()

	if first.Mode != "formed" {
		t.Errorf("mode = %q, want formed", first.Mode)
	}
	if first.Tracking {
		t.Error("expected no tracking without a hand")
	}
	if second.Camera.Azimuth == first.Camera.Azimuth {
		t.Error("expected the autonomous orbit to advance between frames")
	}

	resp, err := ts.Client().Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	defer resp.Body.Close()

	var status session.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status error = %v", err)
	}
	if status.Mode != "formed" {
		t.Errorf("status mode = %q, want formed", status.Mode)
	}
	if !status.Enabled {
		t.Error("expected gesture control enabled")
	}
}
