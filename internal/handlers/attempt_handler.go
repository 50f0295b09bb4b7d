package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mocktest-service/internal/service"
)

type AttemptHandler struct {
	registry *service.Registry
}

func NewAttemptHandler(registry *service.Registry) *AttemptHandler {
	return &AttemptHandler{registry: registry}
}

type selectExamRequest struct {
	ExamID string `json:"exam_id" binding:"required"`
}

type selectSubjectRequest struct {
	SubjectID string `json:"subject_id" binding:"required"`
}

type answerRequest struct {
	Option *int `json:"option" binding:"required"`
}

type navigateRequest struct {
	Index *int `json:"index" binding:"required"`
}

type confirmRequest struct {
	Confirm *bool `json:"confirm" binding:"required"`
}

func (h *AttemptHandler) attempt(c *gin.Context) (*service.Orchestrator, bool) {
	o, err := h.registry.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return o, true
}

// act runs one orchestrator action and replies with the refreshed view.
func (h *AttemptHandler) act(c *gin.Context, message string, fn func(o *service.Orchestrator) error) {
	o, ok := h.attempt(c)
	if !ok {
		return
	}
	if err := fn(o); err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, message, o.View())
}

func (h *AttemptHandler) CreateAttempt(c *gin.Context) {
	o := h.registry.Create()
	SuccessResponse(c, http.StatusCreated, "Attempt created", o.View())
}

func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	o, ok := h.attempt(c)
	if !ok {
		return
	}
	SuccessResponse(c, http.StatusOK, "Attempt retrieved", o.View())
}

func (h *AttemptHandler) DeleteAttempt(c *gin.Context) {
	if err := h.registry.Discard(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Attempt discarded", nil)
}

func (h *AttemptHandler) SelectExam(c *gin.Context) {
	var req selectExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequestResponse(c, "exam_id is required", err)
		return
	}
	h.act(c, "Exam selected", func(o *service.Orchestrator) error { return o.SelectExam(req.ExamID) })
}

func (h *AttemptHandler) Back(c *gin.Context) {
	h.act(c, "Back to exam selection", func(o *service.Orchestrator) error { return o.Back() })
}

// SelectSubject accepts the request and generates in the background; clients
// poll the attempt until the screen leaves "generating".
func (h *AttemptHandler) SelectSubject(c *gin.Context) {
	var req selectSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequestResponse(c, "subject_id is required", err)
		return
	}
	o, ok := h.attempt(c)
	if !ok {
		return
	}
	if err := o.SelectSubject(c.Request.Context(), req.SubjectID); err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusAccepted, "Generating test", o.View())
}

func (h *AttemptHandler) SelectOption(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequestResponse(c, "option is required", err)
		return
	}
	h.act(c, "Answer saved", func(o *service.Orchestrator) error { return o.SelectOption(*req.Option) })
}

func (h *AttemptHandler) ClearAnswer(c *gin.Context) {
	h.act(c, "Answer cleared", func(o *service.Orchestrator) error { return o.ClearAnswer() })
}

func (h *AttemptHandler) Navigate(c *gin.Context) {
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequestResponse(c, "index is required", err)
		return
	}
	h.act(c, "Question changed", func(o *service.Orchestrator) error { return o.Navigate(*req.Index) })
}

func (h *AttemptHandler) Next(c *gin.Context) {
	h.act(c, "Question changed", func(o *service.Orchestrator) error { return o.Next() })
}

func (h *AttemptHandler) Previous(c *gin.Context) {
	h.act(c, "Question changed", func(o *service.Orchestrator) error { return o.Previous() })
}

func (h *AttemptHandler) ToggleBookmark(c *gin.Context) {
	h.act(c, "Bookmark toggled", func(o *service.Orchestrator) error {
		_, err := o.ToggleBookmark()
		return err
	})
}

func (h *AttemptHandler) Submit(c *gin.Context) {
	h.act(c, "Confirm submission", func(o *service.Orchestrator) error { return o.RequestSubmit() })
}

func (h *AttemptHandler) Confirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequestResponse(c, "confirm is required", err)
		return
	}
	message := "Submission cancelled"
	if *req.Confirm {
		message = "Test submitted"
	}
	h.act(c, message, func(o *service.Orchestrator) error { return o.Confirm(*req.Confirm) })
}

func (h *AttemptHandler) Restart(c *gin.Context) {
	h.act(c, "Attempt restarted", func(o *service.Orchestrator) error { return o.Restart() })
}
