package v1

import (
	"net/http"
	"strconv"

	"go-resume-backend/internal/delivery/http/response"
	"go-resume-backend/internal/domain"
	"go-resume-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminUC domain.AdminUsecase
}

func NewAdminHandler(r *gin.RouterGroup, adminUC domain.AdminUsecase) {
	handler := &AdminHandler{adminUC: adminUC}

	admin := r.Group("/admin")
	{
		admin.GET("/users", handler.ListUsers)
		admin.GET("/users/:id/activity", handler.UserActivity)
		admin.DELETE("/users/:id", handler.DeleteUser)
	}
}

// ListUsers godoc
// @Summary      List users
// @Description  List accounts with activity digests. Admin only.
// @Tags         admin
// @Produce      json
// @Param        page   query     int  false  "Page"   default(1)
// @Param        limit  query     int  false  "Limit"  default(20)
// @Success      200    {object}  response.Response{data=[]domain.UserOverview}
// @Failure      403    {object}  response.Response
// @Router       /admin/users [get]
// @Security     BearerAuth
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	users, total, err := h.adminUC.ListUsers(c, page, limit)
	if err != nil {
		c.Error(err)
		return
	}

	response.Paginated(c, http.StatusOK, "Users", users, page, limit, total)
}

// UserActivity godoc
// @Summary      User activity log
// @Description  Get one account's audit trail. Admin only.
// @Tags         admin
// @Produce      json
// @Param        id     path      string  true   "User ID"
// @Param        page   query     int     false  "Page"   default(1)
// @Param        limit  query     int     false  "Limit"  default(20)
// @Success      200    {object}  response.Response{data=[]domain.ActivityEntry}
// @Failure      403    {object}  response.Response
// @Router       /admin/users/{id}/activity [get]
// @Security     BearerAuth
func (h *AdminHandler) UserActivity(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		c.Error(apperror.BadRequest("User ID is required"))
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	entries, total, err := h.adminUC.UserActivity(c, userID, page, limit)
	if err != nil {
		c.Error(err)
		return
	}

	response.Paginated(c, http.StatusOK, "User activity", entries, page, limit, total)
}

// DeleteUser godoc
// @Summary      Delete user
// @Description  Delete an account, its resume and its activity log. Admin only.
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /admin/users/{id} [delete]
// @Security     BearerAuth
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		c.Error(apperror.BadRequest("User ID is required"))
		return
	}

	if err := h.adminUC.DeleteUser(c, userID); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "User deleted", nil)
}
