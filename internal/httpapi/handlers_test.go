package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"voice-platform/internal/auth"
	"voice-platform/internal/calls"
	"voice-platform/internal/groupvoice"
	"voice-platform/internal/policy"
	"voice-platform/internal/social"

	"github.com/gin-gonic/gin"
)

type stubFriends struct{ accepted bool }

func (s stubFriends) Accepted(ctx context.Context, a, b string) (bool, error) {
	return s.accepted, nil
}

type stubMembers struct{ member bool }

func (s stubMembers) IsMember(ctx context.Context, userID, channelID string) (bool, error) {
	return s.member, nil
}

type stubSettings struct{}

func (stubSettings) Get(ctx context.Context, userID string) (*policy.Settings, error) {
	return nil, nil
}

type stubProfiles struct{}

func (stubProfiles) Get(ctx context.Context, userID string) (social.Profile, error) {
	return social.Profile{ID: userID, DisplayName: userID}, nil
}

type stubIssuer struct{}

func (stubIssuer) IssueToken(room, identity, displayName string, caps policy.Capabilities, ttl time.Duration) (string, error) {
	return "tok-" + room, nil
}

type noopNotifier struct{}

func (noopNotifier) CallRinging(ctx context.Context, s calls.Session) {}

func testRouter(friends, member bool) *gin.Engine {
	gin.SetMode(gin.TestMode)

	callSvc := calls.NewService(calls.NewMemoryRepo(), stubFriends{accepted: friends}, stubSettings{}, stubIssuer{}, noopNotifier{}, time.Hour)
	voiceSvc := groupvoice.NewService(groupvoice.NewMemoryLog(), stubMembers{member: member}, stubSettings{}, stubProfiles{}, stubIssuer{}, 4*time.Hour, nil)

	h := Handlers{Calls: callSvc, Voice: voiceSvc, WSURL: "wss://media.test"}

	r := gin.New()
	// Test identity injection standing in for the bearer-token middleware.
	r.Use(func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-User"); uid != "" {
			c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), uid, uid))
		}
		c.Next()
	})
	r.POST("/v1/calls/initiate", h.InitiateCall)
	r.POST("/v1/calls/answer", h.AnswerCall)
	r.POST("/v1/calls/end", h.EndCall)
	r.POST("/v1/voice/token", h.VoiceToken)
	r.POST("/v1/voice/leave", h.VoiceLeave)
	r.GET("/v1/voice/history", h.VoiceHistory)
	return r
}

func doGet(t *testing.T, r *gin.Engine, user, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doJSON(t *testing.T, r *gin.Engine, user, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestInitiate_ReturnsCredentialAndRoom(t *testing.T) {
	r := testRouter(true, true)

	w := doJSON(t, r, "alice", "/v1/calls/initiate", gin.H{"callee_id": "bob", "call_type": "voice"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["room_name"] != "dm-alice-bob" || resp["ws_url"] != "wss://media.test" {
		t.Fatalf("unexpected response: %v", resp)
	}
	if resp["credential"] == "" || resp["session_id"] == "" {
		t.Fatalf("expected credential and session id: %v", resp)
	}
}

func TestInitiate_RequiresIdentity(t *testing.T) {
	r := testRouter(true, true)
	w := doJSON(t, r, "", "/v1/calls/initiate", gin.H{"callee_id": "bob"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestInitiate_ConflictOnSecondCall(t *testing.T) {
	r := testRouter(true, true)

	if w := doJSON(t, r, "alice", "/v1/calls/initiate", gin.H{"callee_id": "bob"}); w.Code != http.StatusCreated {
		t.Fatalf("first call failed: %d", w.Code)
	}
	w := doJSON(t, r, "bob", "/v1/calls/initiate", gin.H{"callee_id": "alice"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestInitiate_ForbiddenWithoutFriendship(t *testing.T) {
	r := testRouter(false, true)
	w := doJSON(t, r, "alice", "/v1/calls/initiate", gin.H{"callee_id": "bob"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestAnswer_UnknownSessionIsNotFound(t *testing.T) {
	r := testRouter(true, true)
	w := doJSON(t, r, "bob", "/v1/calls/answer", gin.H{"session_id": "nope"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestEnd_NonParticipantForbidden(t *testing.T) {
	r := testRouter(true, true)

	w := doJSON(t, r, "alice", "/v1/calls/initiate", gin.H{"callee_id": "bob"})
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	sid, _ := resp["session_id"].(string)

	w = doJSON(t, r, "mallory", "/v1/calls/end", gin.H{"session_id": sid})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestVoiceToken_MemberOnly(t *testing.T) {
	r := testRouter(true, true)
	w := doJSON(t, r, "u1", "/v1/voice/token", gin.H{"channel_id": "ch1"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["room_name"] != "vc-ch1" {
		t.Fatalf("unexpected room: %v", resp["room_name"])
	}

	r = testRouter(true, false)
	w = doJSON(t, r, "u1", "/v1/voice/token", gin.H{"channel_id": "ch1"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-member, got %d", w.Code)
	}
}

func TestVoiceLeave_NoContent(t *testing.T) {
	r := testRouter(true, true)
	w := doJSON(t, r, "u1", "/v1/voice/leave", gin.H{"channel_id": "ch1", "had_video": true})
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}

func TestVoiceHistory_ListsChannelEvents(t *testing.T) {
	r := testRouter(true, true)

	if w := doJSON(t, r, "u1", "/v1/voice/token", gin.H{"channel_id": "ch1"}); w.Code != http.StatusOK {
		t.Fatalf("token failed: %d", w.Code)
	}
	if w := doJSON(t, r, "u1", "/v1/voice/leave", gin.H{"channel_id": "ch1"}); w.Code != http.StatusNoContent {
		t.Fatalf("leave failed: %d", w.Code)
	}

	w := doGet(t, r, "u1", "/v1/voice/history?channel_id=ch1")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Events []groupvoice.ParticipantEvent `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(resp.Events))
	}
}

func TestVoiceHistory_RequiresChannelAndMembership(t *testing.T) {
	r := testRouter(true, true)
	if w := doGet(t, r, "u1", "/v1/voice/history"); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without channel_id, got %d", w.Code)
	}

	r = testRouter(true, false)
	if w := doGet(t, r, "u1", "/v1/voice/history?channel_id=ch1"); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-member, got %d", w.Code)
	}
}
