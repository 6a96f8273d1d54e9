package v1

import (
	"net/http"

	"go-resume-backend/internal/delivery/http/response"
	"go-resume-backend/internal/domain"
	"go-resume-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ResumeHandler struct {
	resumeUC  domain.ResumeUsecase
	sectionUC domain.SectionUsecase
	sharingUC domain.SharingUsecase
	syncUC    domain.SyncUsecase
}

func NewResumeHandler(public, protected *gin.RouterGroup, resumeUC domain.ResumeUsecase, sectionUC domain.SectionUsecase, sharingUC domain.SharingUsecase, syncUC domain.SyncUsecase) {
	handler := &ResumeHandler{
		resumeUC:  resumeUC,
		sectionUC: sectionUC,
		sharingUC: sharingUC,
		syncUC:    syncUC,
	}

	// Public share-token resolution (no auth)
	public.GET("/resumes/public/:token", handler.GetPublic)

	resumes := protected.Group("/resumes")
	{
		resumes.POST("/initialize", handler.Initialize)
		resumes.GET("/my-resume", handler.GetMyResume)
		resumes.PUT("/section/:section", handler.UpdateSection)
		resumes.POST("/share/generate", handler.GenerateShareLink)
		resumes.POST("/share/revoke", handler.RevokeShareLink)
		resumes.POST("/sync/platforms", handler.SyncPlatforms)
		resumes.POST("/verify", handler.VerifyItem)
		resumes.GET("/stats", handler.GetStats)
		resumes.GET("/export", handler.Export)
		resumes.DELETE("", handler.Delete)
	}
}

// ShareRequest is the body for share link generation.
type ShareRequest struct {
	Visibility string `json:"visibility"`
	Notify     bool   `json:"notify"`
}

// SyncRequest is the body for platform sync.
type SyncRequest struct {
	Platforms    []string          `json:"platforms"`
	AccessTokens map[string]string `json:"accessTokens"`
}

// Initialize godoc
// @Summary      Initialize resume
// @Description  Get the caller's resume, creating it from the profile on first use
// @Tags         resumes
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.Resume}
// @Success      201  {object}  response.Response{data=domain.Resume}
// @Failure      401  {object}  response.Response
// @Router       /resumes/initialize [post]
// @Security     BearerAuth
func (h *ResumeHandler) Initialize(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	resume, created, err := h.resumeUC.GetOrCreate(c, userID)
	if err != nil {
		c.Error(err)
		return
	}

	if created {
		response.Success(c, http.StatusCreated, "Resume created", resume)
		return
	}
	response.Success(c, http.StatusOK, "Resume retrieved", resume)
}

// GetMyResume godoc
// @Summary      Get my resume
// @Description  Get the full resume of the currently logged-in user
// @Tags         resumes
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.Resume}
// @Failure      404  {object}  response.Response
// @Router       /resumes/my-resume [get]
// @Security     BearerAuth
func (h *ResumeHandler) GetMyResume(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	resume, err := h.resumeUC.Get(c, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Resume retrieved", resume)
}

// UpdateSection godoc
// @Summary      Mutate a resume section
// @Description  Replace a section, or add/remove one item of an array section
// @Tags         resumes
// @Accept       json
// @Produce      json
// @Param        section  path      string                  true  "Section name"
// @Param        body     body      domain.SectionMutation  true  "Mutation"
// @Success      200      {object}  response.Response{data=domain.Resume}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /resumes/section/{section} [put]
// @Security     BearerAuth
func (h *ResumeHandler) UpdateSection(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))
	section := c.Param("section")

	var m domain.SectionMutation
	if err := c.ShouldBindJSON(&m); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	resume, err := h.sectionUC.UpdateSection(c, userID, section, m)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Section updated", resume)
}

// GenerateShareLink godoc
// @Summary      Generate share link
// @Description  Mint a fresh share token, invalidating any previous one
// @Tags         sharing
// @Accept       json
// @Produce      json
// @Param        body  body      ShareRequest  false  "Visibility and notification flags"
// @Success      200   {object}  response.Response{data=domain.ShareGrant}
// @Failure      404   {object}  response.Response
// @Router       /resumes/share/generate [post]
// @Security     BearerAuth
func (h *ResumeHandler) GenerateShareLink(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req ShareRequest
	// ContentLength is -1 for chunked requests, which still carry a body.
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperror.BadRequest("Invalid request body"))
			return
		}
	}

	grant, err := h.sharingUC.Issue(c, userID, req.Visibility, req.Notify)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Share link generated", grant)
}

// RevokeShareLink godoc
// @Summary      Revoke share link
// @Description  Clear the share token and return the resume to private
// @Tags         sharing
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /resumes/share/revoke [post]
// @Security     BearerAuth
func (h *ResumeHandler) RevokeShareLink(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	if err := h.sharingUC.Revoke(c, userID); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Share link revoked", nil)
}

// GetPublic godoc
// @Summary      Resolve a shared resume
// @Description  Get the public projection of a resume through its share token
// @Tags         sharing
// @Produce      json
// @Param        token  path      string  true  "Share token"
// @Success      200    {object}  response.Response{data=domain.PublicResume}
// @Failure      404    {object}  response.Response
// @Router       /resumes/public/{token} [get]
func (h *ResumeHandler) GetPublic(c *gin.Context) {
	view, err := h.sharingUC.Resolve(c, c.Param("token"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Shared resume", view)
}

// SyncPlatforms godoc
// @Summary      Sync external platforms
// @Description  Pull records from the requested platforms into the resume. Failures are isolated per platform.
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        body  body      SyncRequest  true  "Platforms and access tokens"
// @Success      200   {object}  response.Response{data=domain.SyncOutcome}
// @Failure      400   {object}  response.Response
// @Router       /resumes/sync/platforms [post]
// @Security     BearerAuth
func (h *ResumeHandler) SyncPlatforms(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	outcome, resume, err := h.syncUC.SyncPlatforms(c, userID, req.Platforms, req.AccessTokens)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Platform sync completed", gin.H{
		"outcome": outcome,
		"resume":  resume,
	})
}

// VerifyItem godoc
// @Summary      Verify a resume item
// @Description  Mark one item of an array section as verified, stamping provenance
// @Tags         resumes
// @Accept       json
// @Produce      json
// @Param        body  body      domain.VerifyItemRequest  true  "Item locator and source"
// @Success      200   {object}  response.Response{data=domain.Resume}
// @Failure      400   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /resumes/verify [post]
// @Security     BearerAuth
func (h *ResumeHandler) VerifyItem(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req domain.VerifyItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	resume, err := h.resumeUC.VerifyItem(c, userID, req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Item verified", resume)
}

// GetStats godoc
// @Summary      Resume statistics
// @Description  Get the verification score and per-section breakdown
// @Tags         resumes
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.StatsReport}
// @Failure      404  {object}  response.Response
// @Router       /resumes/stats [get]
// @Security     BearerAuth
func (h *ResumeHandler) GetStats(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	report, err := h.resumeUC.Stats(c, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Resume statistics", report)
}

// Export godoc
// @Summary      Export resume
// @Description  Download the resume as json or text
// @Tags         resumes
// @Produce      json
// @Param        format  query  string  false  "Export format (json, text)"  default(json)
// @Success      200
// @Failure      400  {object}  response.Response
// @Router       /resumes/export [get]
// @Security     BearerAuth
func (h *ResumeHandler) Export(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))
	format := c.DefaultQuery("format", "json")

	result, err := h.resumeUC.Export(c, userID, format)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Body)
}

// Delete godoc
// @Summary      Delete resume
// @Description  Delete the caller's resume and revoke any share link
// @Tags         resumes
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /resumes [delete]
// @Security     BearerAuth
func (h *ResumeHandler) Delete(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	if err := h.resumeUC.Delete(c, userID); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Resume deleted", nil)
}
