package v1

import (
	"io"
	"net/http"
	"strconv"

	"go-resume-backend/internal/delivery/http/response"
	"go-resume-backend/internal/domain"
	"go-resume-backend/pkg/apperror"
	"go-resume-backend/pkg/storage"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userUC domain.UserUsecase
}

func NewUserHandler(r *gin.RouterGroup, userUC domain.UserUsecase) {
	handler := &UserHandler{userUC: userUC}

	users := r.Group("/users")
	{
		users.GET("/me", handler.GetMe)
		users.POST("/me/avatar", handler.UploadAvatar)
		users.GET("/me/activity", handler.GetActivity)
	}
}

// GetMe godoc
// @Summary      Get current user
// @Description  Get the profile of the currently logged-in user
// @Tags         users
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Router       /users/me [get]
// @Security     BearerAuth
func (h *UserHandler) GetMe(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	user, err := h.userUC.Get(c, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "User profile", user)
}

// UploadAvatar godoc
// @Summary      Upload avatar
// @Description  Upload a profile picture. Images are resized and re-encoded automatically.
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Avatar image (jpeg, png, gif, webp)"
// @Success      200   {object}  response.Response{data=map[string]string}
// @Failure      400   {object}  response.Response
// @Failure      422   {object}  response.Response
// @Router       /users/me/avatar [post]
// @Security     BearerAuth
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	file, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.BadRequest("No file uploaded"))
		return
	}
	if file.Size > storage.MaxAvatarBytes {
		c.Error(apperror.BadRequest("File too large (max 5MB)"))
		return
	}

	src, err := file.Open()
	if err != nil {
		c.Error(err)
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.Error(err)
		return
	}

	url, err := h.userUC.UpdateAvatar(c, userID, file.Filename, data)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Avatar updated", gin.H{"avatarUrl": url})
}

// GetActivity godoc
// @Summary      My activity log
// @Description  Get the caller's recent activity entries, newest first
// @Tags         users
// @Produce      json
// @Param        page   query     int  false  "Page"   default(1)
// @Param        limit  query     int  false  "Limit"  default(20)
// @Success      200    {object}  response.Response{data=[]domain.ActivityEntry}
// @Router       /users/me/activity [get]
// @Security     BearerAuth
func (h *UserHandler) GetActivity(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	entries, total, err := h.userUC.Activity(c, userID, page, limit)
	if err != nil {
		c.Error(err)
		return
	}

	response.Paginated(c, http.StatusOK, "Activity log", entries, page, limit, total)
}
