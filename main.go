package main

import (
	"fmt"
	"time"

	"littertrack/config"
	"littertrack/database"
	"littertrack/handlers"
	"littertrack/metrics"
	"littertrack/services"
	"littertrack/utils"
	"littertrack/version"

	"github.com/apex/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	EndPointHealth          = "/health"
	EndPointVersion         = "/version"
	EndPointMetrics         = "/metrics"
	EndPointSubmitComplaint = "/submit_complaint"
	EndPointGetComplaints   = "/get_complaints"
	EndPointComplaintCounts = "/get_complaint_counts"
	EndPointUpdateStatus    = "/update_complaint_status"
	EndPointDeleteComplaint = "/delete_complaint"
	EndPointGetMap          = "/get_map"
	EndPointGeoJSON         = "/complaints.geojson"
	EndPointWS              = "/ws"
)

func main() {
	cfg := config.Load()

	log.Info("Starting the littertrack service...")

	db, err := utils.DBConnect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.InitSchema(db); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}

	complaintsService := database.NewComplaintsService(db)

	hub := services.NewHub()
	go hub.Start()
	defer hub.Stop()

	metrics.Register()

	complaintsHandler := handlers.NewComplaintsHandler(complaintsService, hub)
	wsHandler := handlers.NewWebSocketHandler(hub)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowOrigins:     []string{"*"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET(EndPointHealth, complaintsHandler.HealthCheck)
	router.GET(EndPointVersion, func(c *gin.Context) {
		c.JSON(200, version.Get("littertrack"))
	})
	router.GET(EndPointMetrics, gin.WrapH(promhttp.Handler()))

	router.POST(EndPointSubmitComplaint, complaintsHandler.SubmitComplaint)
	router.GET(EndPointGetComplaints, complaintsHandler.GetComplaints)
	router.GET(EndPointComplaintCounts, complaintsHandler.GetComplaintCounts)
	router.POST(EndPointUpdateStatus, complaintsHandler.UpdateComplaintStatus)
	router.POST(EndPointDeleteComplaint, complaintsHandler.DeleteComplaint)
	router.POST(EndPointGetMap, complaintsHandler.GetMap)
	router.GET(EndPointGeoJSON, complaintsHandler.GetComplaintsGeoJSON)
	router.GET(EndPointWS, wsHandler.Listen)

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	log.Infof("Littertrack service starting on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
