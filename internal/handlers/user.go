package handlers

import (
	"net/http"
	"strconv"

	"skillbridge-server/internal/config"
	"skillbridge-server/internal/models"
	"skillbridge-server/internal/redis"
	"skillbridge-server/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler struct {
	db      *gorm.DB
	redis   *redis.Client
	cfg     *config.Config
	storage *services.StorageService
}

type UpdateProfileRequest struct {
	FirstName string  `json:"first_name,omitempty"`
	LastName  string  `json:"last_name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	Location  *string `json:"location,omitempty"`
}

func NewUserHandler(db *gorm.DB, redis *redis.Client, cfg *config.Config, storage *services.StorageService) *UserHandler {
	return &UserHandler{
		db:      db,
		redis:   redis,
		cfg:     cfg,
		storage: storage,
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var user models.User
	if err := h.db.Preload("Skills.Skill").Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var user models.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.Location != nil {
		user.Location = req.Location
	}

	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID, _ := c.Get("user_id")

	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Avatar file required"})
		return
	}
	defer file.Close()

	if header.Size > h.cfg.MaxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{"message": "File too large"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	allowed := false
	for _, allowedType := range h.cfg.AllowedImageTypes {
		if contentType == allowedType {
			allowed = true
			break
		}
	}
	if !allowed {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid file type"})
		return
	}

	var user models.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	filename := services.GenerateUniqueFilename(header.Filename)
	url, err := h.storage.UploadFile(c.Request.Context(), file, filename, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to upload avatar"})
		return
	}

	if user.AvatarURL != nil {
		h.storage.DeleteFile(c.Request.Context(), *user.AvatarURL)
	}

	user.AvatarURL = &url
	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save avatar"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatar_url": url})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return
	}

	var user models.User
	if err := h.db.Preload("Skills.Skill").
		Where("id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	// The presence set is fresher than the user row, which only gets
	// flipped on connect/disconnect.
	if online, err := h.redis.SIsMember(c.Request.Context(), "online_users", user.ID); err == nil {
		user.IsOnline = online
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetOnlineUsers returns the ids of currently connected users from the
// presence set the websocket hub maintains.
func (h *UserHandler) GetOnlineUsers(c *gin.Context) {
	members, err := h.redis.SMembers(c.Request.Context(), "online_users")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch online users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_ids": parseUintIDs(members)})
}

func parseUintIDs(members []string) []uint {
	ids := make([]uint, 0, len(members))
	for _, member := range members {
		if id, err := strconv.ParseUint(member, 10, 32); err == nil {
			ids = append(ids, uint(id))
		}
	}
	return ids
}

// DiscoverUsers lists other active users, filterable by free-text search,
// skill name and whether they teach or want to learn it.
func (h *UserHandler) DiscoverUsers(c *gin.Context) {
	userID, _ := c.Get("user_id")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	search := c.Query("search")
	skill := c.Query("skill")
	kind := c.Query("kind")

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := h.db.Model(&models.User{}).
		Where("users.id != ? AND users.is_active = ?", userID, true)

	if search != "" {
		query = query.Where("(first_name ILIKE ? OR last_name ILIKE ? OR bio ILIKE ?)",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	if skill != "" {
		sub := h.db.Table("user_skills").
			Select("user_skills.user_id").
			Joins("JOIN skills ON skills.id = user_skills.skill_id").
			Where("skills.name ILIKE ? AND user_skills.deleted_at IS NULL", "%"+skill+"%")
		if kind == models.SkillKindTeach || kind == models.SkillKindLearn {
			sub = sub.Where("user_skills.kind = ?", kind)
		}
		query = query.Where("users.id IN (?)", sub)
	}

	var total int64
	query.Count(&total)

	var users []models.User
	if err := query.Preload("Skills.Skill").
		Order("users.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}
