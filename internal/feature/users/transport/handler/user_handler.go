// Package handler はusersフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"user_service/internal/feature/users/domain"
	"user_service/internal/feature/users/domain/entity"
	"user_service/internal/feature/users/transport/http/dto"
	"user_service/internal/feature/users/usecase"
)

// UserUsecase はユーザー操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type UserUsecase interface {
	CreateUser(ctx context.Context, in *usecase.CreateUserInput) (*entity.User, error)
	GetUser(ctx context.Context, id int64) (*entity.User, error)
	GetAllUsers(ctx context.Context) ([]entity.User, error)
	UpdateUser(ctx context.Context, id int64, in *usecase.UpdateUserInput) (*entity.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// UserHandler はユーザーのCRUD操作のHTTPリクエストを処理します。
type UserHandler struct {
	users UserUsecase
}

// NewUserHandler はUserHandlerの新しいインスタンスを生成します。
func NewUserHandler(users UserUsecase) *UserHandler {
	return &UserHandler{users: users}
}

// Create はユーザー登録APIエンドポイントを処理します。
// - リクエストJSONをCreateUserReqにバインド
// - バリデーションエラー時は400を返却
// - メール重複時は409を返却
// - 成功時は作成したユーザーと200を返却
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create user validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: bindingMessage(err)})
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), &usecase.CreateUserInput{
		Name:  req.Name,
		Email: req.Email,
		Age:   req.Age,
	})
	if err != nil {
		h.writeError(c, "create user", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// Get は指定IDのユーザーを返します。
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, "get user", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// List は全ユーザーをID昇順で返します。ユーザーがいない場合は空配列です。
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.GetAllUsers(c.Request.Context())
	if err != nil {
		h.writeError(c, "list users", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserListResponse(users))
}

// Update は部分更新を行います。省略されたフィールドは変更されません。
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update user validation failed", "error", err, "id", id, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: bindingMessage(err)})
		return
	}

	user, err := h.users.UpdateUser(c.Request.Context(), id, &usecase.UpdateUserInput{
		Name:  req.Name,
		Email: req.Email,
		Age:   req.Age,
	})
	if err != nil {
		h.writeError(c, "update user", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// Delete は指定IDのユーザーを削除し、204を返します。
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.users.DeleteUser(c.Request.Context(), id); err != nil {
		h.writeError(c, "delete user", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// pathID はパスパラメータ id を正の整数として読み取ります。
// 不正な場合は400を書き込み false を返します。
func pathID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "invalid user id: " + raw})
		return 0, false
	}
	return id, true
}

// writeError はエラー分類をHTTPステータスに変換します。
// インフラ障害の詳細はログにのみ出力し、レスポンスには含めません。
func (h *UserHandler) writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Message: err.Error()})
	default:
		slog.Error(op+" failed", "error", err, "path", c.FullPath(), "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "internal server error"})
	}
}

// bindingMessage は gin のバリデーションエラーの複数行メッセージを先頭行に切り詰めます。
func bindingMessage(err error) string {
	msg, _, _ := strings.Cut(err.Error(), "\n")
	return "invalid request: " + msg
}
