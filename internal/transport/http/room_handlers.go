package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vovakirdan/roomsignal/internal/core"
	"github.com/vovakirdan/roomsignal/internal/store"
)

const maxPresenceLimit = 500

// RoomHandlers serves read-only views of live rooms and the presence log.
type RoomHandlers struct {
	hub      *core.Hub
	presence store.PresenceLog
	log      *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance. presence may be nil.
func NewRoomHandlers(hub *core.Hub, presence store.PresenceLog, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub:      hub,
		presence: presence,
		log:      logger,
	}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RoomResponse represents a live room in API responses.
type RoomResponse struct {
	ID          string `json:"id"`
	MemberCount int    `json:"memberCount"`
}

// MemberResponse represents a room member in API responses.
type MemberResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// PresenceResponse represents one presence audit record.
type PresenceResponse struct {
	ParticipantID string `json:"participantId"`
	Kind          string `json:"kind"`
	At            string `json:"at"`
}

// ListRooms lists rooms that currently have members.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	rooms := h.hub.Rooms()
	c.JSON(http.StatusOK, lo.Map(rooms, func(r core.RoomInfo, _ int) RoomResponse {
		return RoomResponse{ID: string(r.ID), MemberCount: r.MemberCount}
	}))
}

// RoomMembers lists the members of a room in join order.
// GET /api/rooms/:id/members
func (h *RoomHandlers) RoomMembers(c *gin.Context) {
	roomID := core.RoomID(c.Param("id"))
	members, ok := h.hub.Snapshot(roomID)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}
	c.JSON(http.StatusOK, lo.Map(members, func(m core.Member, _ int) MemberResponse {
		return MemberResponse{ID: string(m.ID), DisplayName: m.DisplayName}
	}))
}

// RoomPresence returns recent arrivals and departures for a room, newest first.
// GET /api/rooms/:id/presence?limit=N
func (h *RoomHandlers) RoomPresence(c *gin.Context) {
	if h.presence == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "presence log disabled"})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = min(n, maxPresenceLimit)
	}

	roomID := c.Param("id")
	records, err := h.presence.ListPresence(c.Request.Context(), roomID, limit)
	if err != nil {
		h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to list presence")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, lo.Map(records, func(r store.PresenceRecord, _ int) PresenceResponse {
		return PresenceResponse{
			ParticipantID: r.ParticipantID,
			Kind:          string(r.Kind),
			At:            r.At.UTC().Format(time.RFC3339),
		}
	}))
}
