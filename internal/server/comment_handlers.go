package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// createCommentRequest also accepts the legacy form field "comment".
type createCommentRequest struct {
	Text    string `json:"text" form:"text"`
	Comment string `json:"comment" form:"comment"`
}

// CreateComment handles POST /api/posts/:id/comments
// @Summary Add comment
// @Tags comments
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param id path int true "Post ID"
// @Param request body object{text=string} true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req createCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.AddComment(c.UserContext(), service.AddCommentInput{
		Session: s.sessionFrom(c),
		PostID:  postID,
		Text:    firstNonEmpty(req.Text, req.Comment),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}
