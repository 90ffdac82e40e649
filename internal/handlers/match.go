package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"skillbridge-server/internal/config"
	"skillbridge-server/internal/matching"
	"skillbridge-server/internal/models"
	"skillbridge-server/internal/redis"
	"skillbridge-server/internal/services"
	"skillbridge-server/internal/websocket"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MatchHandler struct {
	db    *gorm.DB
	redis *redis.Client
	cfg   *config.Config
	hub   *websocket.Hub
	push  *services.PushService
}

type CreateMatchRequest struct {
	ReceiverID     uint   `json:"receiver_id" binding:"required"`
	SkillOffered   string `json:"skill_offered" binding:"required"`
	SkillRequested string `json:"skill_requested" binding:"required"`
	Message        string `json:"message,omitempty" binding:"max=500"`
}

type RespondMatchRequest struct {
	Status string `json:"status" binding:"required,oneof=accepted rejected"`
}

// MatchResponse pairs a match with the counterpart user so clients don't
// have to work out which side they are on.
type MatchResponse struct {
	ID                 uint        `json:"id"`
	Status             string      `json:"status"`
	SkillOffered       string      `json:"skill_offered"`
	SkillRequested     string      `json:"skill_requested"`
	Message            *string     `json:"message,omitempty"`
	IsRequester        bool        `json:"is_requester"`
	CompletionRequests []uint      `json:"completion_requests"`
	OtherUser          models.User `json:"other_user"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

func NewMatchHandler(db *gorm.DB, redis *redis.Client, cfg *config.Config, hub *websocket.Hub, push *services.PushService) *MatchHandler {
	return &MatchHandler{
		db:    db,
		redis: redis,
		cfg:   cfg,
		hub:   hub,
		push:  push,
	}
}

func (h *MatchHandler) CreateMatch(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	state, err := matching.New(userID.(uint), req.ReceiverID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var receiver models.User
	if err := h.db.Where("id = ? AND is_active = ?", req.ReceiverID, true).First(&receiver).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Receiver not found"})
		return
	}

	// One open request per direction per pair. The partial unique index on
	// matches backs this up when two requests race past the check.
	var existing models.Match
	if err := h.db.Where("requester_id = ? AND receiver_id = ? AND status IN ?",
		userID, req.ReceiverID, []string{models.MatchStatusPending, models.MatchStatusAccepted}).
		First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "An open match with this user already exists"})
		return
	}

	match := models.Match{
		RequesterID:    state.RequesterID,
		ReceiverID:     state.ReceiverID,
		SkillOffered:   req.SkillOffered,
		SkillRequested: req.SkillRequested,
		Status:         state.Status,
	}
	if req.Message != "" {
		match.Message = &req.Message
	}

	if err := h.db.Create(&match).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"message": "An open match with this user already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create match"})
		return
	}

	h.notify(c, match.ReceiverID, "match_request", "New Exchange Request",
		"Someone wants to trade "+match.SkillOffered+" for your "+match.SkillRequested+".", match.ID)

	h.db.Preload("Requester").Preload("Receiver").First(&match, match.ID)
	c.JSON(http.StatusCreated, gin.H{"match": match})
}

func (h *MatchHandler) RespondMatch(c *gin.Context) {
	userID, _ := c.Get("user_id")
	matchID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid match ID"})
		return
	}

	var req RespondMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var match models.Match
	if err := h.db.First(&match, matchID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Match not found"})
		return
	}

	if _, err := stateOf(&match).Respond(userID.(uint), req.Status); err != nil {
		c.JSON(matchErrorStatus(err), gin.H{"message": err.Error()})
		return
	}

	// Conditional update: of two concurrent responses only one can win.
	res := h.db.Model(&models.Match{}).
		Where("id = ? AND status = ?", match.ID, models.MatchStatusPending).
		Update("status", req.Status)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update match"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"message": matching.ErrInvalidState.Error()})
		return
	}

	if req.Status == models.MatchStatusAccepted {
		conversation := models.Conversation{MatchID: match.ID, IsActive: true}
		h.db.Where(models.Conversation{MatchID: match.ID}).FirstOrCreate(&conversation)

		h.notify(c, match.RequesterID, "match_accepted", "Exchange Accepted",
			"Your exchange request was accepted. Start chatting now!", match.ID)
	}

	h.db.Preload("Requester").Preload("Receiver").First(&match, match.ID)
	c.JSON(http.StatusOK, gin.H{"match": match})
}

func (h *MatchHandler) CompleteMatch(c *gin.Context) {
	userID, _ := c.Get("user_id")
	matchID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid match ID"})
		return
	}

	var match models.Match
	if err := h.db.First(&match, matchID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Match not found"})
		return
	}

	actorID := userID.(uint)
	if _, err := stateOf(&match).RequestCompletion(actorID); err != nil {
		c.JSON(matchErrorStatus(err), gin.H{"message": err.Error()})
		return
	}

	column, other := "requester_confirmed", "receiver_confirmed"
	if actorID == match.ReceiverID {
		column, other = "receiver_confirmed", "requester_confirmed"
	}

	// One statement flips this party's confirmation and, when the
	// counterpart already confirmed, promotes the match to completed. A
	// duplicate or racing request matches zero rows, and the row can never
	// be left with both flags set but the status still accepted. RETURNING
	// tells this request whether it was the one that completed the match.
	res := h.db.Model(&match).Clauses(clause.Returning{}).
		Where("status = ? AND "+column+" = ?", models.MatchStatusAccepted, false).
		Updates(map[string]interface{}{
			column:   true,
			"status": gorm.Expr("CASE WHEN "+other+" THEN ? ELSE status END", models.MatchStatusCompleted),
		})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update match"})
		return
	}
	if res.RowsAffected == 0 {
		if err := h.db.First(&match, match.ID).Error; err == nil && match.Status == models.MatchStatusAccepted {
			c.JSON(http.StatusConflict, gin.H{"message": matching.ErrAlreadyRequested.Error()})
		} else {
			c.JSON(http.StatusConflict, gin.H{"message": matching.ErrInvalidState.Error()})
		}
		return
	}

	completedNow := match.Status == models.MatchStatusCompleted

	if err := h.db.Preload("Requester").Preload("Receiver").First(&match, match.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load match"})
		return
	}

	message := "Completion requested. Awaiting confirmation from the other party."
	if completedNow {
		message = "Exchange completed. You can now review each other."
		h.notify(c, match.RequesterID, "match_completed", "Exchange Completed",
			"Your skill exchange is complete. Leave a review!", match.ID)
		h.notify(c, match.ReceiverID, "match_completed", "Exchange Completed",
			"Your skill exchange is complete. Leave a review!", match.ID)
	}

	c.JSON(http.StatusOK, gin.H{"message": message, "match": match})
}

func (h *MatchHandler) GetMatches(c *gin.Context) {
	userID, _ := c.Get("user_id")
	status := c.Query("status")

	query := h.db.Where("requester_id = ? OR receiver_id = ?", userID, userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var matches []models.Match
	if err := query.Preload("Requester").Preload("Receiver").
		Order("created_at DESC").Find(&matches).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch matches"})
		return
	}

	responses := make([]MatchResponse, 0, len(matches))
	for i := range matches {
		responses = append(responses, toMatchResponse(&matches[i], userID.(uint)))
	}

	c.JSON(http.StatusOK, gin.H{"matches": responses})
}

func (h *MatchHandler) GetMatch(c *gin.Context) {
	userID, _ := c.Get("user_id")
	matchID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid match ID"})
		return
	}

	var match models.Match
	if err := h.db.Preload("Requester").Preload("Receiver").First(&match, matchID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Match not found"})
		return
	}

	actorID := userID.(uint)
	if actorID != match.RequesterID && actorID != match.ReceiverID {
		c.JSON(http.StatusForbidden, gin.H{"message": matching.ErrNotParticipant.Error()})
		return
	}

	response := toMatchResponse(&match, actorID)
	c.JSON(http.StatusOK, gin.H{"match": response})
}

// Helper methods

func stateOf(m *models.Match) matching.State {
	return matching.State{
		Status:             m.Status,
		RequesterID:        m.RequesterID,
		ReceiverID:         m.ReceiverID,
		RequesterConfirmed: m.RequesterConfirmed,
		ReceiverConfirmed:  m.ReceiverConfirmed,
	}
}

func matchErrorStatus(err error) int {
	switch {
	case errors.Is(err, matching.ErrSelfMatch), errors.Is(err, matching.ErrInvalidResponse):
		return http.StatusBadRequest
	case errors.Is(err, matching.ErrNotParticipant), errors.Is(err, matching.ErrNotReceiver):
		return http.StatusForbidden
	case errors.Is(err, matching.ErrInvalidState), errors.Is(err, matching.ErrAlreadyRequested):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func toMatchResponse(m *models.Match, viewerID uint) MatchResponse {
	other := m.Receiver
	if viewerID == m.ReceiverID {
		other = m.Requester
	}
	return MatchResponse{
		ID:                 m.ID,
		Status:             m.Status,
		SkillOffered:       m.SkillOffered,
		SkillRequested:     m.SkillRequested,
		Message:            m.Message,
		IsRequester:        viewerID == m.RequesterID,
		CompletionRequests: m.CompletionRequests(),
		OtherUser:          other,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func (h *MatchHandler) notify(c *gin.Context, userID uint, kind, title, body string, matchID uint) {
	notification := models.Notification{
		UserID: userID,
		Type:   kind,
		Title:  title,
		Body:   body,
		Data:   `{"match_id": ` + strconv.FormatUint(uint64(matchID), 10) + `}`,
	}
	h.db.Create(&notification)

	h.push.Send(c.Request.Context(), userID, title, body,
		map[string]string{"match_id": strconv.FormatUint(uint64(matchID), 10)})

	if frame, err := websocket.Marshal("notification", notification); err == nil {
		h.hub.BroadcastToUser(userID, frame)
	}
}
