package auth

import "github.com/echoverse/core/internal/models"

type RegisterDTO struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
}

type LoginDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	Token string               `json:"token"`
	User  models.PublicProfile `json:"user"`
}
