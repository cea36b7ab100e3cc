package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RecommendationsController sends book recommendations between friends.
type RecommendationsController struct {
	recommendations RecommendationService
}

func NewRecommendationsController(recommendations RecommendationService) *RecommendationsController {
	return &RecommendationsController{recommendations: recommendations}
}

type recommendRequest struct {
	FromUser string  `json:"from_user"`
	ToUser   string  `json:"to_user" binding:"required"`
	BookID   int     `json:"book_id" binding:"required"`
	Message  *string `json:"message"`
}

// Recommend handles POST /api/recommend.
func (rc *RecommendationsController) Recommend(c *gin.Context) {
	var req recommendRequest
	if !bindJSON(c, &req) {
		return
	}
	actor, ok := resolveActor(c, req.FromUser)
	if !ok {
		return
	}

	rec, err := rc.recommendations.Recommend(actor, req.ToUser, req.BookID, req.Message)
	if err != nil {
		respondTrackerError(c, err, "recommend")
		return
	}
	respondCreated(c, rec)
}

// ListRecommendations handles GET /api/users/:username/recommendations,
// the recommendations the user received.
func (rc *RecommendationsController) ListRecommendations(c *gin.Context) {
	recs, err := rc.recommendations.Recommendations(c.Param("username"))
	if err != nil {
		respondTrackerError(c, err, "list recommendations")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recommendations": recs,
		"count":           len(recs),
	})
}
