package handlers

import (
	"net/http"
	"strconv"
	"time"

	"skillbridge-server/internal/config"
	"skillbridge-server/internal/models"
	"skillbridge-server/internal/redis"
	"skillbridge-server/internal/websocket"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MessageHandler struct {
	db    *gorm.DB
	redis *redis.Client
	cfg   *config.Config
	hub   *websocket.Hub
}

type SendMessageRequest struct {
	Content     string `json:"content" binding:"required,max=2000"`
	MessageType string `json:"message_type" binding:"omitempty,oneof=text image emoji"`
}

type ConversationResponse struct {
	ID          uint            `json:"id"`
	MatchID     uint            `json:"match_id"`
	OtherUser   models.User     `json:"other_user"`
	LastMessage *models.Message `json:"last_message,omitempty"`
	UnreadCount int64           `json:"unread_count"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func NewMessageHandler(db *gorm.DB, redis *redis.Client, cfg *config.Config, hub *websocket.Hub) *MessageHandler {
	return &MessageHandler{
		db:    db,
		redis: redis,
		cfg:   cfg,
		hub:   hub,
	}
}

func (h *MessageHandler) GetConversations(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var conversations []models.Conversation
	if err := h.db.
		Joins("JOIN matches ON matches.id = conversations.match_id").
		Where("(matches.requester_id = ? OR matches.receiver_id = ?) AND conversations.is_active = ?",
			userID, userID, true).
		Preload("Match.Requester").Preload("Match.Receiver").
		Order("conversations.updated_at DESC").
		Find(&conversations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch conversations"})
		return
	}

	responses := make([]ConversationResponse, 0, len(conversations))
	for _, conversation := range conversations {
		otherUser := conversation.Match.Receiver
		if conversation.Match.ReceiverID == userID.(uint) {
			otherUser = conversation.Match.Requester
		}

		var lastMessage *models.Message
		var msg models.Message
		if err := h.db.Where("conversation_id = ?", conversation.ID).
			Order("created_at DESC").First(&msg).Error; err == nil {
			lastMessage = &msg
		}

		var unreadCount int64
		h.db.Model(&models.Message{}).
			Where("conversation_id = ? AND sender_id != ? AND is_read = ?",
				conversation.ID, userID, false).Count(&unreadCount)

		responses = append(responses, ConversationResponse{
			ID:          conversation.ID,
			MatchID:     conversation.MatchID,
			OtherUser:   otherUser,
			LastMessage: lastMessage,
			UnreadCount: unreadCount,
			CreatedAt:   conversation.CreatedAt,
			UpdatedAt:   conversation.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"conversations": responses})
}

func (h *MessageHandler) GetMessages(c *gin.Context) {
	userID, _ := c.Get("user_id")
	conversationID, err := strconv.ParseUint(c.Param("conversation_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid conversation ID"})
		return
	}

	if _, ok := h.conversationCounterpart(userID.(uint), uint(conversationID)); !ok {
		c.JSON(http.StatusForbidden, gin.H{"message": "Access denied to this conversation"})
		return
	}

	var messages []models.Message
	if err := h.db.Where("conversation_id = ?", conversationID).
		Preload("Sender").
		Order("created_at ASC").Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch messages"})
		return
	}

	h.markRead(uint(conversationID), userID.(uint))

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID, _ := c.Get("user_id")
	conversationID, err := strconv.ParseUint(c.Param("conversation_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid conversation ID"})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if req.MessageType == "" {
		req.MessageType = "text"
	}

	counterpartID, ok := h.conversationCounterpart(userID.(uint), uint(conversationID))
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"message": "Access denied to this conversation"})
		return
	}

	message := models.Message{
		ConversationID: uint(conversationID),
		SenderID:       userID.(uint),
		Content:        req.Content,
		MessageType:    req.MessageType,
	}

	if err := h.db.Create(&message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to send message"})
		return
	}

	h.db.Preload("Sender").First(&message, message.ID)

	h.db.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("updated_at", time.Now())

	// Best-effort relay; the stored row above is the source of truth.
	payload := websocket.ChatPayload{
		ConversationID: uint(conversationID),
		To:             counterpartID,
		SenderID:       userID.(uint),
		Content:        req.Content,
		MessageType:    req.MessageType,
		Timestamp:      message.CreatedAt.Format(time.RFC3339),
	}
	if frame, err := websocket.Marshal(websocket.EventReceiveMessage, payload); err == nil {
		h.hub.BroadcastToUser(counterpartID, frame)
	}

	h.db.Create(&models.Notification{
		UserID: counterpartID,
		Type:   "message",
		Title:  "New Message",
		Body:   req.Content,
		Data:   `{"conversation_id": ` + strconv.FormatUint(conversationID, 10) + `}`,
	})

	c.JSON(http.StatusCreated, gin.H{"message": message})
}

func (h *MessageHandler) MarkAsRead(c *gin.Context) {
	userID, _ := c.Get("user_id")
	conversationID, err := strconv.ParseUint(c.Param("conversation_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid conversation ID"})
		return
	}

	if _, ok := h.conversationCounterpart(userID.(uint), uint(conversationID)); !ok {
		c.JSON(http.StatusForbidden, gin.H{"message": "Access denied to this conversation"})
		return
	}

	if err := h.markRead(uint(conversationID), userID.(uint)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to mark messages as read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Messages marked as read"})
}

// Helper methods

// conversationCounterpart returns the other party of the conversation's
// match, and whether the given user is a party at all.
func (h *MessageHandler) conversationCounterpart(userID, conversationID uint) (uint, bool) {
	var conversation models.Conversation
	if err := h.db.Preload("Match").
		Where("id = ? AND is_active = ?", conversationID, true).
		First(&conversation).Error; err != nil {
		return 0, false
	}

	switch userID {
	case conversation.Match.RequesterID:
		return conversation.Match.ReceiverID, true
	case conversation.Match.ReceiverID:
		return conversation.Match.RequesterID, true
	default:
		return 0, false
	}
}

func (h *MessageHandler) markRead(conversationID, userID uint) error {
	return h.db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id != ? AND is_read = ?",
			conversationID, userID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now(),
		}).Error
}
