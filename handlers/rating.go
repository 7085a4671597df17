package handlers

import (
	"net/http"

	"skillbridge/services/rating"
	"skillbridge/utils"

	"github.com/gin-gonic/gin"
)

type RatingHandler struct {
	Service rating.RatingService
}

// SubmitRatingHandler handles POST /api/providers/:id/ratings.
func (h *RatingHandler) SubmitRatingHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var input struct {
		Score   int    `json:"score" binding:"required"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalidInput", "Invalid input", err.Error())
		return
	}
	rep, err := h.Service.SubmitRating(c.Request.Context(), c.Param("id"), actor, input.Score, input.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// GetReputationHandler handles GET /api/providers/:id/ratings.
func (h *RatingHandler) GetReputationHandler(c *gin.Context) {
	rep, err := h.Service.GetReputation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}
