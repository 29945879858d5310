package controllers

import (
	"github.com/gin-gonic/gin"

	"adboard/config"
	"adboard/utils"
)

// ConfigController serves environment-driven UI configuration.
type ConfigController struct{}

func NewConfigController() *ConfigController { return &ConfigController{} }

// GetContact returns the site owner's contact line shown in the front end.
func (c *ConfigController) GetContact(ctx *gin.Context) {
	cfg := config.Get()
	utils.Success(ctx, gin.H{"contact": cfg.AdminContact})
}
