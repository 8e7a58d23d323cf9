package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/natansdj/electives"
	"github.com/natansdj/electives/repository"
)

type reviewSubmission struct {
	ElectiveCode string `json:"Elective_Code" binding:"required"`
	Rating       int    `json:"rating" binding:"required,min=1,max=5"`
	Review       string `json:"review" binding:"required"`
}

func (ctl *Controller) ModuleReviews(c *gin.Context) {
	reviews, err := ctl.Store.ModuleReviews(c.Request.Context(), c.Param("module_code"))
	if err != nil {
		fail(c, err, "Failed to fetch reviews")
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// SubmitReview handles POST /review/submission and answers with the stored row
func (ctl *Controller) SubmitReview(c *gin.Context) {
	var body reviewSubmission
	if err := c.ShouldBindJSON(&body); err != nil {
		electives.LogIRL("review-rejected", "Rejected review submission: %s", err.Error())
		abort(c, http.StatusBadRequest, "Elective_Code, rating (1-5) and review are required")
		return
	}

	review := &repository.Review{
		ElectiveCode: strings.TrimSpace(body.ElectiveCode),
		Rating:       body.Rating,
		Review:       body.Review,
	}

	if err := ctl.Store.SubmitReview(c.Request.Context(), review); err != nil {
		fail(c, err, "Failed to submit review")
		return
	}

	c.JSON(http.StatusCreated, review)
}
