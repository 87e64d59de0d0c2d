package register

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crmbridge/crm/config"
	_ "crmbridge/crm/pkg/handler"
	"crmbridge/tools/ioc"
)

type RegisterHandler struct{}

func init() {
	ioc.Api.RegisterContainer("CRMRegister", &RegisterHandler{})
}

func (h *RegisterHandler) Init() error {
	c, err := config.LoadConfig()
	if err != nil {
		return err
	}
	Health(c.Application.GinRootRouter())
	return nil
}

// Health GET /health
func Health(r gin.IRouter) {
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "ok",
		})
	})
}
