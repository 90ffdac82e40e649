package handlers

import (
	"net/http"
	"strconv"
	"time"

	"skillbridge-server/internal/config"
	"skillbridge-server/internal/models"
	"skillbridge-server/internal/redis"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AdminHandler struct {
	db    *gorm.DB
	redis *redis.Client
	cfg   *config.Config
}

type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive suspended"`
}

type UserListResponse struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func NewAdminHandler(db *gorm.DB, redis *redis.Client, cfg *config.Config) *AdminHandler {
	return &AdminHandler{
		db:    db,
		redis: redis,
		cfg:   cfg,
	}
}

func (h *AdminHandler) GetUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	status := c.Query("status")
	search := c.Query("search")

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := h.db.Model(&models.User{})

	switch status {
	case "active":
		query = query.Where("is_active = ?", true)
	case "inactive":
		query = query.Where("is_active = ?", false)
	}

	if search != "" {
		query = query.Where("(first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?)",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var users []models.User
	if err := query.Preload("Skills.Skill").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, UserListResponse{
		Users: users,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return
	}

	var user models.User
	if err := h.db.Preload("Skills.Skill").Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	var activities []models.UserActivity
	h.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(10).Find(&activities)

	var reviews []models.Review
	h.db.Preload("Reviewer").Where("reviewee_id = ?", userID).
		Order("created_at DESC").Limit(10).Find(&reviews)

	var matchCount int64
	h.db.Model(&models.Match{}).
		Where("requester_id = ? OR receiver_id = ?", userID, userID).Count(&matchCount)

	c.JSON(http.StatusOK, gin.H{
		"user":        user,
		"activities":  activities,
		"reviews":     reviews,
		"match_count": matchCount,
	})
}

func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return
	}

	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var user models.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	user.IsActive = req.Status == "active"
	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update user status"})
		return
	}

	h.db.Create(&models.UserActivity{
		UserID:    uint(userID),
		Action:    "status_updated",
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	})

	c.JSON(http.StatusOK, gin.H{"message": "User status updated successfully"})
}

// DeleteUser removes a user along with their skills and reviews. Matches are
// retained so the counterpart's history stays intact.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return
	}

	var user models.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserSkill{}).Error; err != nil {
			return err
		}
		if err := tx.Where("reviewer_id = ? OR reviewee_id = ?", userID, userID).
			Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete user"})
		return
	}

	logrus.WithField("user_id", userID).Info("User deleted by admin")
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (h *AdminHandler) GetReviews(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	var total int64
	h.db.Model(&models.Review{}).Count(&total)

	var reviews []models.Review
	if err := h.db.Preload("Reviewer").Preload("Reviewee").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch reviews"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

func (h *AdminHandler) DeleteReview(c *gin.Context) {
	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid review ID"})
		return
	}

	var review models.Review
	if err := h.db.First(&review, reviewID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Review not found"})
		return
	}

	if err := h.db.Delete(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete review"})
		return
	}

	logrus.WithField("review_id", reviewID).Info("Review deleted by admin")
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
}

func (h *AdminHandler) GetAnalytics(c *gin.Context) {
	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	sevenDaysAgo := time.Now().AddDate(0, 0, -7)
	today := time.Now().Truncate(24 * time.Hour)

	var analytics models.Analytics
	analytics.Date = time.Now()

	h.db.Model(&models.User{}).Count(&analytics.TotalUsers)
	h.db.Model(&models.User{}).Where("last_seen > ?", sevenDaysAgo).Count(&analytics.ActiveUsers)
	h.db.Model(&models.User{}).Where("created_at >= ?", today).Count(&analytics.NewUsersToday)
	h.db.Model(&models.Match{}).Count(&analytics.TotalMatches)
	h.db.Model(&models.Match{}).Where("status = ?", models.MatchStatusCompleted).Count(&analytics.CompletedMatches)
	h.db.Model(&models.Match{}).Where("created_at >= ?", today).Count(&analytics.MatchesToday)
	h.db.Model(&models.Message{}).Count(&analytics.TotalMessages)
	h.db.Model(&models.Message{}).Where("created_at >= ?", today).Count(&analytics.MessagesToday)
	h.db.Model(&models.Review{}).Count(&analytics.TotalReviews)

	var avgRating struct{ Avg float64 }
	h.db.Model(&models.Review{}).Select("COALESCE(AVG(rating), 0) as avg").Scan(&avgRating)
	analytics.AverageRating = avgRating.Avg

	var dailyRegistrations []struct {
		Date  string `json:"date"`
		Count int64  `json:"count"`
	}
	h.db.Model(&models.User{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("created_at >= ?", thirtyDaysAgo).
		Group("DATE(created_at)").
		Order("date").
		Scan(&dailyRegistrations)

	var matchesByStatus []struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	h.db.Model(&models.Match{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&matchesByStatus)

	var topSkills []struct {
		Name  string `json:"name"`
		Count int64  `json:"count"`
	}
	h.db.Table("user_skills").
		Select("skills.name, COUNT(*) as count").
		Joins("JOIN skills ON skills.id = user_skills.skill_id").
		Where("user_skills.kind = ? AND user_skills.deleted_at IS NULL", models.SkillKindTeach).
		Group("skills.name").
		Order("count DESC").
		Limit(10).
		Scan(&topSkills)

	c.JSON(http.StatusOK, gin.H{
		"analytics":           analytics,
		"daily_registrations": dailyRegistrations,
		"matches_by_status":   matchesByStatus,
		"top_skills":          topSkills,
	})
}
