package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"skillbridge/models"
	"skillbridge/services/engagement"
	"skillbridge/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxDocumentBytes = 20 << 20

// EngagementHandler serves the engagement endpoints.
type EngagementHandler struct {
	Service engagement.EngagementService
}

// ProposeHandler handles POST /api/engagements.
func (h *EngagementHandler) ProposeHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var terms models.EngagementTerms
	if err := c.ShouldBindJSON(&terms); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalidInput", "Invalid input", err.Error())
		return
	}
	e, err := h.Service.ProposeEngagement(c.Request.Context(), actor, terms)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// GetHandler handles GET /api/engagements/:id.
func (h *EngagementHandler) GetHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	view, err := h.Service.GetEngagement(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("ETag", strconv.FormatInt(view.Version, 10))
	c.JSON(http.StatusOK, view)
}

// ListHandler handles GET /api/engagements.
func (h *EngagementHandler) ListHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	views, err := h.Service.ListEngagements(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"engagements": views})
}

// ifMatch reads the caller's last seen version from If-Match, if present.
func ifMatch(c *gin.Context) (int64, error) {
	raw := strings.Trim(strings.TrimSpace(c.GetHeader("If-Match")), `"`)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

// TransitionHandler handles POST /api/engagements/:id/events/:event.
func (h *EngagementHandler) TransitionHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var payload engagement.Payload
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&payload); err != nil && err != io.EOF {
			utils.JSONError(c, http.StatusBadRequest, "invalidInput", "Invalid input", err.Error())
			return
		}
	}
	version, err := ifMatch(c)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalidInput", "If-Match must be a version number", err.Error())
		return
	}
	if version != 0 {
		payload.IfVersion = version
	}

	event := engagement.Event(c.Param("event"))
	result, err := h.Service.Transition(c.Request.Context(), c.Param("id"), event, actor, payload)
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Debug("transition applied", zap.String("event", string(event)), zap.String("actorId", actor.ID))
	c.Header("ETag", strconv.FormatInt(result.Engagement.Version, 10))
	c.JSON(http.StatusOK, result)
}

// AddMilestoneHandler handles POST /api/engagements/:id/milestones.
func (h *EngagementHandler) AddMilestoneHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var def models.MilestoneDef
	if err := c.ShouldBindJSON(&def); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalidInput", "Invalid input", err.Error())
		return
	}
	e, err := h.Service.AddMilestone(c.Request.Context(), c.Param("id"), actor, def)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// AdvanceMilestoneHandler handles PATCH /api/engagements/:id/milestones/:milestoneId.
func (h *EngagementHandler) AdvanceMilestoneHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var input struct {
		Status models.MilestoneStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalidInput", "Invalid input", err.Error())
		return
	}
	e, err := h.Service.AdvanceMilestone(c.Request.Context(), c.Param("id"), c.Param("milestoneId"), input.Status, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// AttachDocumentHandler handles multipart POST /api/engagements/:id/documents.
func (h *EngagementHandler) AttachDocumentHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxDocumentBytes+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "fileRequired", "A file is required", err.Error())
		return
	}
	if fh.Size > maxDocumentBytes {
		utils.JSONError(c, http.StatusBadRequest, "fileTooLarge", "File exceeds the upload limit", "")
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		respondError(c, err)
		return
	}

	name := c.PostForm("name")
	if name == "" {
		name = fh.Filename
	}
	requiresSignature, _ := strconv.ParseBool(c.DefaultPostForm("requiresSignature", "false"))
	file := models.FileMeta{
		Name:        name,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}
	doc, err := h.Service.AttachDocument(c.Request.Context(), c.Param("id"), actor, file, requiresSignature, c.PostForm("milestoneId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// SignDocumentHandler handles POST /api/engagements/:id/documents/:documentId/sign.
func (h *EngagementHandler) SignDocumentHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	doc, err := h.Service.SignDocument(c.Request.Context(), c.Param("id"), c.Param("documentId"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// DocumentURLHandler handles GET /api/engagements/:id/documents/:documentId/url.
func (h *EngagementHandler) DocumentURLHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	url, err := h.Service.DocumentURL(c.Request.Context(), c.Param("id"), c.Param("documentId"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// ConfirmPaymentHandler handles POST /api/admin/engagements/:id/payment.
func (h *EngagementHandler) ConfirmPaymentHandler(c *gin.Context) {
	admin, ok := mustActor(c)
	if !ok {
		return
	}
	var input struct {
		Reference string `json:"reference"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalidInput", "Invalid input", err.Error())
		return
	}
	e, err := h.Service.ConfirmPayment(c.Request.Context(), c.Param("id"), admin, input.Reference)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}
