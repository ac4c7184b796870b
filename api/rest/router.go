package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Mount registers the game, talent and admin routes on r. adminMW guards
// the admin group and runs in order.
func Mount(r gin.IRouter, gh *GameHandler, ah *AdminHandler, adminMW ...gin.HandlerFunc) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	game := r.Group("/api/game")
	game.GET("", gh.Snapshot)
	game.GET("/log", gh.Log)
	game.POST("/zone", gh.ChangeZone)
	game.POST("/equip", gh.Equip)
	game.POST("/unequip", gh.Unequip)
	game.POST("/sell", gh.Sell)
	game.POST("/sell-junk", gh.SellJunk)
	game.PUT("/autosell", gh.SetAutoSell)
	game.POST("/save", gh.Save)
	game.POST("/load", gh.Load)
	game.POST("/end-run", gh.EndRun)
	game.POST("/ascend", gh.Ascend)

	talents := r.Group("/api/talents")
	talents.GET("", gh.Talents)
	talents.POST("/allocate", gh.Allocate)

	admin := r.Group("/api/admin", adminMW...)
	admin.POST("/gold", ah.GiveGold)
	admin.POST("/levels", ah.GiveLevels)
	admin.POST("/guaranteed-drops", ah.SetGuaranteedDrops)
	admin.GET("/scheduler", ah.ListSchedulerTasks)
	admin.GET("/runs", ah.Runs)
}
