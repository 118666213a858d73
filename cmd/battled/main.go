package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"battlesim/internal/api"
	"battlesim/internal/logging"
)

func main() {
	addr := os.Getenv("BATTLESIM_ADDR")
	if addr == "" {
		addr = ":8000"
	}
	log, err := logging.New(os.Getenv("BATTLESIM_LOG_LEVEL"), os.Getenv("BATTLESIM_LOG_FORMAT"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer log.Sync()

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := api.SetupRouter(log)
	log.Info("battle service starting", zap.String("addr", addr))
	if err := r.Run(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server failed", zap.Error(err))
	}
}
