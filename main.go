package main

import (
	"time"

	"adboard/config"
	"adboard/models"
	"adboard/routes"
	"adboard/service"
	"adboard/storage"
	"adboard/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	config.InitDatabase(&models.Post{})

	images, err := storage.NewImageStore(cfg.UploadDir, int64(cfg.MaxUploadMB)*1024*1024)
	if err != nil {
		utils.Sugar.Fatalf("init image store: %v", err)
	}
	repo := storage.NewPostRepository(config.DB())
	posts := service.NewPostService(repo, images)

	r := routes.SetupRouter(posts, images)

	// Best-effort background reclamation of unreferenced image files
	service.StartOrphanSweeper(repo, images,
		time.Duration(cfg.SweepIntervalMin)*time.Minute,
		time.Duration(cfg.SweepGraceMin)*time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
