package handlers

import (
	"net/http"
	"strconv"

	"skillbridge-server/internal/config"
	"skillbridge-server/internal/models"
	"skillbridge-server/internal/redis"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SkillHandler struct {
	db    *gorm.DB
	redis *redis.Client
	cfg   *config.Config
}

type AddUserSkillRequest struct {
	SkillID     uint   `json:"skill_id" binding:"required"`
	Kind        string `json:"kind" binding:"required,oneof=teach learn"`
	Level       string `json:"level" binding:"omitempty,skilllevel"`
	Description string `json:"description,omitempty" binding:"max=500"`
}

func NewSkillHandler(db *gorm.DB, redis *redis.Client, cfg *config.Config) *SkillHandler {
	return &SkillHandler{
		db:    db,
		redis: redis,
		cfg:   cfg,
	}
}

// ListSkills returns the skill catalog, optionally filtered by category.
func (h *SkillHandler) ListSkills(c *gin.Context) {
	category := c.Query("category")

	query := h.db.Model(&models.Skill{})
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var skills []models.Skill
	if err := query.Order("name ASC").Find(&skills).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch skills"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"skills": skills})
}

func (h *SkillHandler) ListUserSkills(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var userSkills []models.UserSkill
	if err := h.db.Where("user_id = ?", userID).
		Preload("Skill").
		Order("created_at ASC").
		Find(&userSkills).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch skills"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"skills": userSkills})
}

func (h *SkillHandler) AddUserSkill(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req AddUserSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var skill models.Skill
	if err := h.db.First(&skill, req.SkillID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Skill not found"})
		return
	}

	var existing models.UserSkill
	if err := h.db.Where("user_id = ? AND skill_id = ? AND kind = ?",
		userID, req.SkillID, req.Kind).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "Skill already added"})
		return
	}

	userSkill := models.UserSkill{
		UserID:  userID.(uint),
		SkillID: req.SkillID,
		Kind:    req.Kind,
		Level:   req.Level,
	}
	if userSkill.Level == "" {
		userSkill.Level = "beginner"
	}
	if req.Description != "" {
		userSkill.Description = &req.Description
	}

	if err := h.db.Create(&userSkill).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to add skill"})
		return
	}

	h.db.Preload("Skill").First(&userSkill, userSkill.ID)
	c.JSON(http.StatusCreated, gin.H{"skill": userSkill})
}

func (h *SkillHandler) RemoveUserSkill(c *gin.Context) {
	userID, _ := c.Get("user_id")
	skillID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid skill ID"})
		return
	}

	var userSkill models.UserSkill
	if err := h.db.Where("id = ? AND user_id = ?", skillID, userID).First(&userSkill).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Skill not found"})
		return
	}

	if err := h.db.Delete(&userSkill).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to remove skill"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Skill removed successfully"})
}
