package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"voice-platform/internal/auth"
	"voice-platform/internal/calls"
	"voice-platform/internal/groupvoice"
	"voice-platform/internal/media"
	"voice-platform/internal/notify"
	"voice-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Calls  *calls.Service
	Voice  *groupvoice.Service
	Events *notify.Subscriber

	// WSURL is the media transport endpoint clients connect to with their
	// credential; returned verbatim on every token-bearing response.
	WSURL string
}

// --- Direct calls ---

type initiateRequest struct {
	CalleeID string `json:"callee_id"`
	CallType string `json:"call_type,omitempty"`
}

func (h Handlers) InitiateCall(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user identity required"})
		return
	}

	var req initiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.CalleeID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "callee_id required"})
		return
	}

	out, err := h.Calls.Initiate(c.Request.Context(), userID, auth.DisplayName(c.Request.Context()), req.CalleeID, calls.CallType(req.CallType))
	if err != nil {
		writeCallError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session_id": out.SessionID,
		"room_name":  out.RoomName,
		"call_type":  out.CallType,
		"credential": out.Credential,
		"ws_url":     h.WSURL,
	})
}

type answerRequest struct {
	SessionID string `json:"session_id"`
}

func (h Handlers) AnswerCall(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user identity required"})
		return
	}

	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "session_id required"})
		return
	}

	out, err := h.Calls.Answer(c.Request.Context(), userID, auth.DisplayName(c.Request.Context()), req.SessionID)
	if err != nil {
		writeCallError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"room_name":  out.RoomName,
		"call_type":  out.CallType,
		"credential": out.Credential,
		"ws_url":     h.WSURL,
	})
}

type endRequest struct {
	SessionID string `json:"session_id"`
}

func (h Handlers) EndCall(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user identity required"})
		return
	}

	var req endRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "session_id required"})
		return
	}

	out, err := h.Calls.End(c.Request.Context(), userID, req.SessionID)
	if err != nil {
		writeCallError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": out.Status})
}

// --- Channel voice ---

type voiceTokenRequest struct {
	ChannelID string `json:"channel_id"`
}

func (h Handlers) VoiceToken(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user identity required"})
		return
	}

	var req voiceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ChannelID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "channel_id required"})
		return
	}

	out, err := h.Voice.IssueToken(c.Request.Context(), userID, req.ChannelID)
	if err != nil {
		writeCallError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"credential":   out.Credential,
		"ws_url":       h.WSURL,
		"room_name":    out.RoomName,
		"video":        out.Video,
		"screen_share": out.ScreenShare,
	})
}

type voiceLeaveRequest struct {
	ChannelID      string `json:"channel_id"`
	HadVideo       bool   `json:"had_video,omitempty"`
	HadScreenShare bool   `json:"had_screen_share,omitempty"`
}

func (h Handlers) VoiceLeave(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user identity required"})
		return
	}

	var req voiceLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ChannelID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "channel_id required"})
		return
	}

	if err := h.Voice.Leave(c.Request.Context(), userID, req.ChannelID, req.HadVideo, req.HadScreenShare); err != nil {
		writeCallError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Handlers) VoiceHistory(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user identity required"})
		return
	}

	channelID := c.Query("channel_id")
	if channelID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "channel_id required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	events, err := h.Voice.History(c.Request.Context(), userID, channelID, limit)
	if err != nil {
		writeCallError(c, err)
		return
	}
	if events == nil {
		events = []groupvoice.ParticipantEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// --- Push events ---

// CallEvents streams the caller's incoming-call events as SSE until the
// client disconnects. The underlying subscription resubscribes on bus drops;
// clients dedupe on session_id + status.
func (h Handlers) CallEvents(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user identity required"})
		return
	}
	if h.Events == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "events not configured"})
		return
	}

	ctx := c.Request.Context()
	events := make(chan notify.IncomingCall, 8)
	go func() {
		defer close(events)
		err := h.Events.Run(ctx, userID, func(ev notify.IncomingCall) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		})
		if err != nil && ctx.Err() == nil {
			logger.FromGin(c).Warn("call event stream ended", "user_id", userID, "err", err)
		}
	}()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("incoming_call", ev)
			return true
		}
	})
}

// writeCallError maps service errors onto the HTTP taxonomy. Nothing here is
// retried server-side; retries are always the client's decision.
func writeCallError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, calls.ErrInvalidArgument), errors.Is(err, groupvoice.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	case errors.Is(err, calls.ErrNotFriends):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "users are not friends"})
	case errors.Is(err, calls.ErrNotParticipant):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not a call participant"})
	case errors.Is(err, groupvoice.ErrNotMember):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not a channel member"})
	case errors.Is(err, calls.ErrCallInProgress):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "call already in progress"})
	case errors.Is(err, calls.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "session not found or already ended"})
	case errors.Is(err, media.ErrSigningFailed):
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "credential issuance failed"})
	default:
		logger.FromGin(c).Error("call operation failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
