package handlers

import (
	"net/http"
	"strconv"

	"skillbridge-server/internal/config"
	"skillbridge-server/internal/matching"
	"skillbridge-server/internal/models"
	"skillbridge-server/internal/redis"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ReviewHandler struct {
	db    *gorm.DB
	redis *redis.Client
	cfg   *config.Config
}

type CreateReviewRequest struct {
	RevieweeID uint   `json:"reviewee_id" binding:"required"`
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
	Comment    string `json:"comment" binding:"required,min=10,max=500"`
	MatchID    *uint  `json:"match_id,omitempty"`
}

type UpdateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required,min=10,max=500"`
}

func NewReviewHandler(db *gorm.DB, redis *redis.Client, cfg *config.Config) *ReviewHandler {
	return &ReviewHandler{
		db:    db,
		redis: redis,
		cfg:   cfg,
	}
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, _ := c.Get("user_id")
	reviewerID := userID.(uint)

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if req.RevieweeID == reviewerID {
		c.JSON(http.StatusBadRequest, gin.H{"message": "You cannot review yourself"})
		return
	}

	var reviewee models.User
	if err := h.db.Where("id = ?", req.RevieweeID).First(&reviewee).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Reviewee not found"})
		return
	}

	if req.MatchID != nil {
		var match models.Match
		if err := h.db.First(&match, *req.MatchID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Match not found"})
			return
		}

		// The client guards on completion too, but the server decides.
		if reviewerID != match.RequesterID && reviewerID != match.ReceiverID {
			c.JSON(http.StatusForbidden, gin.H{"message": matching.ErrNotParticipant.Error()})
			return
		}
		counterpart := match.ReceiverID
		if reviewerID == match.ReceiverID {
			counterpart = match.RequesterID
		}
		if req.RevieweeID != counterpart {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Reviewee is not the other party of this match"})
			return
		}
		if match.Status != models.MatchStatusCompleted {
			c.JSON(http.StatusConflict, gin.H{"message": "Reviews are only allowed after the exchange is completed"})
			return
		}

		var existing models.Review
		if err := h.db.Where("reviewer_id = ? AND reviewee_id = ? AND match_id = ?",
			reviewerID, req.RevieweeID, *req.MatchID).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"message": "You already reviewed this exchange"})
			return
		}
	}

	review := models.Review{
		ReviewerID: reviewerID,
		RevieweeID: req.RevieweeID,
		MatchID:    req.MatchID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}

	if err := h.db.Create(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create review"})
		return
	}

	h.db.Preload("Reviewer").First(&review, review.ID)
	c.JSON(http.StatusCreated, gin.H{"review": review})
}

func (h *ReviewHandler) GetUserReviews(c *gin.Context) {
	revieweeID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return
	}

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
	h.db.Model(&models.Review{}).Where("reviewee_id = ?", revieweeID).Count(&total)

	var reviews []models.Review
	if err := h.db.Where("reviewee_id = ?", revieweeID).
		Preload("Reviewer").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch reviews"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"stats":   h.reviewStats(uint(revieweeID)),
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	userID, _ := c.Get("user_id")
	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid review ID"})
		return
	}

	var req UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var review models.Review
	if err := h.db.First(&review, reviewID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Review not found"})
		return
	}

	if review.ReviewerID != userID.(uint) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Only the author may edit a review"})
		return
	}

	review.Rating = req.Rating
	review.Comment = req.Comment
	review.IsEdited = true
	if err := h.db.Save(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update review"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"review": review})
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, _ := c.Get("user_id")
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

	if review.ReviewerID != userID.(uint) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Only the author may delete a review"})
		return
	}

	if err := h.db.Delete(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete review"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
}

func (h *ReviewHandler) reviewStats(revieweeID uint) models.ReviewStats {
	stats := models.ReviewStats{Distribution: map[int]int64{}}

	var rows []struct {
		Rating int
		Count  int64
	}
	h.db.Model(&models.Review{}).
		Select("rating, COUNT(*) as count").
		Where("reviewee_id = ?", revieweeID).
		Group("rating").
		Scan(&rows)

	var sum int64
	for _, row := range rows {
		stats.Distribution[row.Rating] = row.Count
		stats.Count += row.Count
		sum += int64(row.Rating) * row.Count
	}
	if stats.Count > 0 {
		stats.Average = float64(sum) / float64(stats.Count)
	}
	return stats
}
