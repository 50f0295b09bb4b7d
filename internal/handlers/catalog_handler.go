package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mocktest-service/internal/catalog"
)

type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

func (h *CatalogHandler) ListExams(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "Exams retrieved successfully", catalog.Exams())
}

func (h *CatalogHandler) ListSubjects(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "Subjects retrieved successfully", catalog.Subjects())
}
